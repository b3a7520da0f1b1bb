package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/middleware"
	"catalog_service/internal/usecase"
)

type AuthHandler struct {
	useCase usecase.UserUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc usecase.UserUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *AuthHandler) RegisterPublicRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a caller
// identity.
func (h *AuthHandler) RegisterProtectedRoutes(router gin.IRouter) {
	router.GET("/auth/me", h.Me)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.log.Warnf("registration failed for %s: %v", req.Email, err)
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	token, user, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.useCase.Profile(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		FailFromError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}
