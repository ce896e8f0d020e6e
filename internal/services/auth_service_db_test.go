package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contentapi/internal/config"
	"contentapi/internal/database"
	"contentapi/internal/models"
	"contentapi/internal/repositories"
	"contentapi/internal/services"
	"contentapi/internal/validation"
	"contentapi/pkg/logger"
)

// openUserRepo returns a user repository on an in-memory sqlite database
// private to the calling test.
func openUserRepo(t *testing.T) repositories.Repository[models.User] {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.Config{
		DatabaseDriver: "sqlite",
		DatabaseDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns:   1,
	}, logger.Discard())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return repositories.NewGORMRepository[models.User](db)
}

func TestAuthService_StaleSessionKeepsNewerToken(t *testing.T) {
	repo := openUserRepo(t)
	svc, err := services.NewAuthService(repo, validation.New(), logger.Discard(), nil, services.AuthConfig{
		JWTSecret:    testJWTSecret,
		TokenTTL:     time.Hour,
		PasswordCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Register(ctx, models.RegisterUserRequest{Email: "ana@example.com", Password: "secret", Name: "A"})
	require.NoError(t, err)
	login := models.LoginUserRequest{Email: "ana@example.com", Password: "secret"}

	first, err := svc.Login(ctx, login)
	require.NoError(t, err)
	acting, err := svc.ResolveToken(ctx, *first.Token)
	require.NoError(t, err)

	second, err := svc.Login(ctx, login)
	require.NoError(t, err)

	// A request authenticated before the second login finishes afterwards.
	name := "B"
	_, err = svc.Update(ctx, acting, models.UpdateUserRequest{Name: &name})
	require.NoError(t, err)

	_, err = svc.ResolveToken(ctx, *first.Token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	current, err := svc.ResolveToken(ctx, *second.Token)
	require.NoError(t, err)
	assert.Equal(t, "B", current.Name)

	// A rename through an older copy of the account survives the next login.
	stale, err := svc.ResolveToken(ctx, *second.Token)
	require.NoError(t, err)
	renamed := "C"
	_, err = svc.Update(ctx, stale, models.UpdateUserRequest{Name: &renamed})
	require.NoError(t, err)
	third, err := svc.Login(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, "C", third.Name)

	// Logout clears only the token.
	_, err = svc.Logout(ctx, acting)
	require.NoError(t, err)
	_, err = svc.ResolveToken(ctx, *third.Token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	stored, err := repo.FindOne(ctx, repositories.Where(repositories.Eq("email", "ana@example.com")))
	require.NoError(t, err)
	assert.Equal(t, "C", stored.Name)
	assert.Nil(t, stored.Token)
}
