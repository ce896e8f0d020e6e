package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contentapi/internal/models"
	"contentapi/internal/repositories"
	"contentapi/internal/services"
	"contentapi/internal/validation"
	"contentapi/pkg/logger"
)

const testJWTSecret = "test_jwt_secret"

var tokenColumn = []string{"token"}

func newAuthService(t *testing.T, repo *MockRepository[models.User], pub services.Publisher) *services.AuthService {
	t.Helper()
	svc, err := services.NewAuthService(repo, validation.New(), logger.Discard(), pub, services.AuthConfig{
		JWTSecret:    testJWTSecret,
		TokenTTL:     time.Hour,
		PasswordCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func byEmail(email string) repositories.Query {
	return repositories.Where(repositories.Eq("email", email))
}

func TestAuthService_Register(t *testing.T) {
	repo := new(MockRepository[models.User])
	pub := new(MockPublisher)
	svc := newAuthService(t, repo, pub)
	ctx := context.Background()

	req := models.RegisterUserRequest{Email: "ana@example.com", Password: "secret", Name: "Ana"}

	var stored *models.User
	repo.On("Count", mock.Anything, byEmail(req.Email)).Return(int64(0), nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.User)
		stored.ID = 1
	}).Return(nil).Once()
	pub.On("Publish", services.EventUserRegistered, mock.Anything).Return(nil).Once()

	resp, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, "Ana", resp.Name)
	assert.Nil(t, resp.Token)

	require.NotNil(t, stored)
	assert.NotEqual(t, "secret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret")))

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)
	ctx := context.Background()
	req := models.RegisterUserRequest{Email: "ana@example.com", Password: "secret", Name: "Ana"}

	repo.On("Count", mock.Anything, byEmail(req.Email)).Return(int64(1), nil).Once()
	_, err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	// A concurrent registration wins the unique index.
	repo.On("Count", mock.Anything, byEmail(req.Email)).Return(int64(0), nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate).Once()
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Register_Invalid(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)

	_, err := svc.Register(context.Background(), models.RegisterUserRequest{Email: "not-an-email", Name: "Ana"})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)
	ctx := context.Background()

	user := &models.User{Email: "ana@example.com", Name: "Ana", Password: hashed(t, "secret")}
	user.ID = 7

	repo.On("FindOne", mock.Anything, byEmail(user.Email)).Return(user, nil)
	repo.On("Update", mock.Anything, user, tokenColumn).Return(nil)

	first, err := svc.Login(ctx, models.LoginUserRequest{Email: user.Email, Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, first.Token)
	firstToken := *first.Token

	second, err := svc.Login(ctx, models.LoginUserRequest{Email: user.Email, Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, second.Token)
	assert.NotEqual(t, firstToken, *second.Token)
	assert.Equal(t, *second.Token, *user.Token)

	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)
	ctx := context.Background()

	user := &models.User{Email: "ana@example.com", Password: hashed(t, "secret")}
	user.ID = 7
	repo.On("FindOne", mock.Anything, byEmail(user.Email)).Return(user, nil)
	repo.On("FindOne", mock.Anything, byEmail("nobody@example.com")).Return(nil, repositories.ErrNotFound)

	_, wrongPassword := svc.Login(ctx, models.LoginUserRequest{Email: user.Email, Password: "nope"})
	_, unknownEmail := svc.Login(ctx, models.LoginUserRequest{Email: "nobody@example.com", Password: "secret"})

	assert.ErrorIs(t, wrongPassword, services.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, services.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ResolveToken(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)
	ctx := context.Background()

	user := &models.User{Email: "ana@example.com", Password: hashed(t, "secret")}
	user.ID = 7
	repo.On("FindOne", mock.Anything, byEmail(user.Email)).Return(user, nil)
	repo.On("Update", mock.Anything, user, tokenColumn).Return(nil)

	resp, err := svc.Login(ctx, models.LoginUserRequest{Email: user.Email, Password: "secret"})
	require.NoError(t, err)
	token := *resp.Token

	repo.On("FindOne", mock.Anything, repositories.Where(repositories.Eq("token", token))).Return(user, nil).Once()
	got, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// After logout the token is no longer held by any account.
	repo.On("FindOne", mock.Anything, repositories.Where(repositories.Eq("token", token))).Return(nil, repositories.ErrNotFound).Once()
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_ResolveToken_Rejected(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)
	ctx := context.Background()

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": sign("other_secret", jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()}),
		"expired":      sign(testJWTSecret, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(-time.Minute).Unix()}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ResolveToken(ctx, token)
			assert.ErrorIs(t, err, services.ErrInvalidToken)
		})
	}
	repo.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestAuthService_ResolveToken_ForeignClaim(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 8,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	holder := &models.User{Token: &token}
	holder.ID = 7
	repo.On("FindOne", mock.Anything, repositories.Where(repositories.Eq("token", token))).Return(holder, nil)

	_, err = svc.ResolveToken(context.Background(), token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_Update(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)
	ctx := context.Background()

	avatar := "https://example.com/ana.png"
	user := &models.User{Email: "ana@example.com", Name: "Ana", Password: hashed(t, "secret"), Avatar: &avatar}
	user.ID = 7
	oldHash := user.Password
	repo.On("Update", mock.Anything, user, []string{"name", "password", "avatar", "updated_at"}).Return(nil)

	name := "Ana Maria"
	resp, err := svc.Update(ctx, user, models.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", resp.Name)
	assert.Equal(t, &avatar, resp.Avatar)
	assert.Equal(t, oldHash, user.Password)

	password := "newsecret"
	_, err = svc.Update(ctx, user, models.UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("newsecret")))
	assert.Equal(t, "Ana Maria", user.Name)

	empty := ""
	_, err = svc.Update(ctx, user, models.UpdateUserRequest{Name: &empty})
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))
	repo.AssertNumberOfCalls(t, "Update", 2)
}

func TestAuthService_Logout(t *testing.T) {
	repo := new(MockRepository[models.User])
	svc := newAuthService(t, repo, nil)

	token := "some-token"
	user := &models.User{Email: "ana@example.com", Token: &token}
	user.ID = 7
	repo.On("Update", mock.Anything, user, tokenColumn).Return(nil).Once()

	resp, err := svc.Logout(context.Background(), user)
	require.NoError(t, err)
	assert.Nil(t, resp.Token)
	assert.Nil(t, user.Token)
	repo.AssertExpectations(t)
}

func TestAuthService_Current(t *testing.T) {
	svc := newAuthService(t, new(MockRepository[models.User]), nil)
	user := &models.User{Email: "ana@example.com", Name: "Ana", Password: "hash"}
	user.ID = 3

	resp := svc.Current(user)
	assert.Equal(t, uint(3), resp.ID)
	assert.Equal(t, "ana@example.com", resp.Email)
}
