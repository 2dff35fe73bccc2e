package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDisabled indicates the account exists but is deactivated.
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrUsernameTaken indicates the requested username already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken indicates the requested email already exists.
	ErrEmailTaken = errors.New("email already exists")
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, sourceIP string) (dto.UserLite, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		validator: validate,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, sourceIP string) (dto.UserLite, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserLite{}, err
	}

	username := strings.TrimSpace(req.Username)

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return dto.UserLite{}, err
	}
	if taken {
		return dto.UserLite{}, ErrUsernameTaken
	}

	taken, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return dto.UserLite{}, err
	}
	if taken {
		return dto.UserLite{}, ErrEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return dto.UserLite{}, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        req.Email,
		Role:         req.Role,
		FullName:     req.FullName,
		IsActive:     true,
		CreatedAt:    s.now(),
	}

	// Self-registration has no authenticated actor yet; the audit entry is
	// attributed to the system account.
	audit := newAuditEntry(models.AuditActionCreated, models.AuditTableUser, models.UserCreated(user), Actor{IPAddress: sourceIP}, user.CreatedAt)
	if err := s.users.Create(ctx, &user, audit); err != nil {
		return dto.UserLite{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user registered")

	return dto.NewUserLite(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	ok, err := verifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return dto.LoginResponse{}, ErrAccountDisabled
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user logged in")

	return dto.LoginResponse{
		Token: token,
		User:  dto.NewUserLite(user),
	}, nil
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"name": user.FullName,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
