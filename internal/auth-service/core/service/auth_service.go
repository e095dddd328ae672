package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"ride-dispatch/internal/auth-service/core/domain/dto"
	"ride-dispatch/internal/auth-service/core/domain/models"
	"ride-dispatch/internal/auth-service/core/ports"
	"ride-dispatch/internal/config"
	"ride-dispatch/internal/mylogger"
)

const (
	DefaultDriverPriority   = 4.0
	DefaultCustomerPriority = 2.0
	DefaultStar             = 5.0
)

type AuthService struct {
	cfg      *config.Config
	authRepo ports.IAuthRepo
	mylog    mylogger.Logger
}

func NewAuthService(cfg *config.Config, authRepo ports.IAuthRepo, mylog mylogger.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		authRepo: authRepo,
		mylog:    mylog,
	}
}

// Register creates the account with its wallet. Drivers start with a higher
// priority than customers and get a status row for dispatch.
func (as *AuthService) Register(ctx context.Context, regReq dto.UserRegistrationRequest) (string, string, error) {
	mylog := as.mylog.Action("Register")

	if err := validateRegistration(regReq.Name, regReq.Email, regReq.Password, regReq.Role); err != nil {
		return "", "", err
	}

	hashedPassword, err := hashPassword(regReq.Password)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %v", err)
	}

	priority := DefaultCustomerPriority
	if regReq.Role == "Driver" {
		priority = DefaultDriverPriority
	}

	user := models.User{
		Name:         regReq.Name,
		Email:        regReq.Email,
		Phone:        regReq.Phone,
		PasswordHash: hashedPassword,
		Role:         regReq.Role,
		Star:         DefaultStar,
		Priority:     priority,
		IsActive:     true,
	}

	id, err := as.authRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailRegistered) {
			mylog.Warn("Failed to register, email already registered")
			return "", "", err
		}
		mylog.Error("Failed to save user in db", err)
		return "", "", fmt.Errorf("cannot save user in db: %w", err)
	}

	accessToken, err := as.issueToken(id, regReq.Role)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", "", err
	}

	mylog.Info("User registered successfully")
	return id.String(), accessToken, nil
}

func (as *AuthService) Login(ctx context.Context, authReq dto.UserAuthRequest) (string, error) {
	mylog := as.mylog.Action("Login")

	if err := validateLogin(authReq.Email, authReq.Password); err != nil {
		return "", err
	}

	user, err := as.authRepo.GetByEmail(ctx, authReq.Email)
	if err != nil {
		if errors.Is(err, ErrUnknownEmail) {
			mylog.Warn("Failed to login, unknown email")
			return "", err
		}
		mylog.Error("Failed to load user from db", err)
		return "", fmt.Errorf("cannot load user from db: %w", err)
	}

	if !checkPassword(user.PasswordHash, authReq.Password) {
		mylog.Debug("Failed to login, wrong password")
		return "", ErrPasswordUnknown
	}

	accessToken, err := as.issueToken(user.ID, user.Role)
	if err != nil {
		mylog.Error("error to create jwt token", err)
		return "", err
	}

	mylog.Info("User login successfully")
	return accessToken, nil
}

func (as *AuthService) Profile(ctx context.Context, id uuid.UUID) (dto.ProfileResponse, error) {
	user, err := as.authRepo.GetByID(ctx, id)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.ProfileResponse{
		ID:          user.ID.String(),
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		Star:        user.Star,
		Priority:    user.Priority,
		IsActive:    user.IsActive,
		DateCreated: user.DateCreated,
	}, nil
}

func (as *AuthService) issueToken(id uuid.UUID, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour * time.Duration(as.cfg.App.TokenTTL)).Unix(),
	})
	return token.SignedString([]byte(as.cfg.App.JwtSecret))
}
