package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/infrastructure/repository"
	"github.com/finguard/treasury-api/pkg/apperror"
	"github.com/finguard/treasury-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *service.AuthService {
	db := newTestDB(t)
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	return service.NewAuthService(repository.NewUserRepository(db), jwtManager)
}

func TestRegister_NewEmail_CreatesUserWithDefaultRole(t *testing.T) {
	auth := newTestAuthService(t)

	user, err := auth.Register(context.Background(), &service.RegisterInput{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "s3cret",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret", user.Password)
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.Register(context.Background(), &service.RegisterInput{Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = auth.Register(context.Background(), &service.RegisterInput{Email: "ada@example.com", Password: "other"})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestLogin_ValidCredentials_IssuesToken(t *testing.T) {
	auth := newTestAuthService(t)
	_, err := auth.Register(context.Background(), &service.RegisterInput{Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)

	result, err := auth.Login(context.Background(), "ada@example.com", "s3cret")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ada@example.com", result.User.Email)
}

func TestLogin_WrongPassword_InvalidCredentials(t *testing.T) {
	auth := newTestAuthService(t)
	_, err := auth.Register(context.Background(), &service.RegisterInput{Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), "ada@example.com", "wrong")

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail_InvalidCredentials(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.Login(context.Background(), "ghost@example.com", "whatever")

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}
