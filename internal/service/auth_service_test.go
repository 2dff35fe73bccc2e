package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T, name string) (*gorm.DB, AuthService) {
	t.Helper()
	db := openServiceDB(t, name)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(repository.NewUserRepository(db), validate, testJWTSecret, time.Hour, zerolog.Nop())
	return db, svc
}

func registerRequest() dto.RegisterRequest {
	return dto.RegisterRequest{
		Username: "jsmith",
		Password: "correct horse battery",
		Email:    "jsmith@example.ac.za",
		Role:     models.RoleLecturer,
		FullName: "John Smith",
	}
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	db, svc := newAuthFixture(t, "auth_register")

	user, err := svc.Register(context.Background(), registerRequest(), "10.0.0.5")
	require.NoError(t, err)
	require.Equal(t, "jsmith", user.Username)
	require.Equal(t, models.RoleLecturer, user.Role)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "jsmith").First(&stored).Error)
	require.NotEqual(t, "correct horse battery", stored.PasswordHash)
	require.Contains(t, stored.PasswordHash, "$argon2id$")

	var audit models.AuditLog
	require.NoError(t, db.Where("table_name = ?", models.AuditTableUser).First(&audit).Error)
	require.Equal(t, models.AuditActionCreated, audit.Action)
	require.Equal(t, models.SystemActorID, audit.ChangedBy)
	require.Equal(t, "10.0.0.5", audit.IPAddress)
	require.NotContains(t, audit.NewValues, stored.PasswordHash)

	session, err := svc.Login(context.Background(), dto.LoginRequest{Username: "jsmith", Password: "correct horse battery"})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, stored.ID, session.User.ID)

	token, err := jwt.Parse(session.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleLecturer, claims["role"])
	require.Equal(t, float64(stored.ID), claims["sub"])
}

func TestAuthServiceRejectsBadCredentials(t *testing.T) {
	db, svc := newAuthFixture(t, "auth_badcreds")

	_, err := svc.Register(context.Background(), registerRequest(), "")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "jsmith", Password: "wrong password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "jsmith").
		Update("is_active", false).Error)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "jsmith", Password: "correct horse battery"})
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthServiceRejectsDuplicates(t *testing.T) {
	_, svc := newAuthFixture(t, "auth_duplicates")

	_, err := svc.Register(context.Background(), registerRequest(), "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerRequest(), "")
	require.ErrorIs(t, err, ErrUsernameTaken)

	other := registerRequest()
	other.Username = "jsmith2"
	_, err = svc.Register(context.Background(), other, "")
	require.ErrorIs(t, err, ErrEmailTaken)

	invalid := registerRequest()
	invalid.Role = "admin"
	_, err = svc.Register(context.Background(), invalid, "")
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
