package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
)

// UserStore is the slice of the generic collection the user usecases
// need. *repository.Collection[domain.User] satisfies it.
type UserStore interface {
	FindByID(ctx context.Context, id string, expand ...string) (*domain.User, error)
	FindOne(ctx context.Context, filter repository.Filter, expand ...string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
}

type UserUseCase interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

type userUseCase struct {
	users    UserStore
	log      *logrus.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewUserUseCase(users UserStore, logger *logrus.Logger, secret []byte, tokenTTL time.Duration) UserUseCase {
	return &userUseCase{
		users:    users,
		log:      logger,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (uc *userUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validatePassword(password); err != nil {
		uc.log.Warnf("registration rejected for %s: weak password", email)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := uc.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			uc.log.Warnf("registration rejected: email %s already taken", email)
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	uc.log.Infof("user %s registered", created.ID)
	return created, nil
}

// Login deliberately reports unknown emails and wrong passwords with
// the same error.
func (uc *userUseCase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrBadCredentials
	}

	user, err := uc.users.FindOne(ctx, repository.Filter{repository.Eq("email", email)})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrBadCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("failed login attempt for user %s", user.ID)
			return "", nil, domain.ErrBadCredentials
		}
		return "", nil, err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(uc.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", nil, err
	}

	uc.log.Infof("user %s logged in", user.ID)
	return signed, user, nil
}

func (uc *userUseCase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.FindByID(ctx, userID)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return &domain.ValidationError{Fields: map[string]string{
			"password": "must be at least 8 characters long",
		}}
	}
	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return &domain.ValidationError{Fields: map[string]string{
			"password": "must contain an uppercase letter, a lowercase letter and a digit",
		}}
	}
	return nil
}
