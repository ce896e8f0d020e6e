package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"contentapi/internal/models"
	"contentapi/internal/repositories"
	"contentapi/internal/validation"
)

// AuthConfig tunes token issuing and password hashing.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	PasswordCost int
}

// AuthService registers accounts and manages their session token.
type AuthService struct {
	userRepo     repositories.Repository[models.User]
	validate     *validation.Validator
	log          *logrus.Logger
	events       Publisher
	jwtSecret    []byte
	tokenTTL     time.Duration
	passwordCost int
	dummyHash    []byte // compared against when the email is unknown
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.Repository[models.User], validate *validation.Validator, log *logrus.Logger, events Publisher, cfg AuthConfig) (*AuthService, error) {
	cost := cfg.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hashing: %w", err)
	}

	return &AuthService{
		userRepo:     userRepo,
		validate:     validate,
		log:          log,
		events:       events,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenTTL:     ttl,
		passwordCost: cost,
		dummyHash:    dummy,
	}, nil
}

// Register creates an account with a unique email and a hashed password.
func (s *AuthService) Register(ctx context.Context, req models.RegisterUserRequest) (*models.UserResponse, error) {
	s.log.WithFields(logrus.Fields{"email": req.Email, "name": req.Name}).Debug("AuthService.Register")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.Count(ctx, repositories.Where(repositories.Eq("email", req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashed),
		Avatar:   req.Avatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	publish(s.log, s.events, Event{Event: EventUserRegistered, ID: user.ID, At: user.CreatedAt})

	resp := user.ToResponse()
	return &resp, nil
}

// Login checks the credentials and stores a fresh session token on the
// account, replacing any previous one.
func (s *AuthService) Login(ctx context.Context, req models.LoginUserRequest) (*models.UserResponse, error) {
	s.log.WithField("email", req.Email).Debug("AuthService.Login")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindOne(ctx, repositories.Where(repositories.Eq("email", req.Email)))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		// Spend the same effort as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	user.Token = &token
	if err := s.userRepo.Update(ctx, user, "token"); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ResolveToken returns the account currently holding token.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		s.log.WithError(err).Debug("token validation failed")
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindOne(ctx, repositories.Where(repositories.Eq("token", token)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	claims, _ := parsed.Claims.(jwt.MapClaims)
	if id, ok := claims["user_id"].(float64); !ok || uint(id) != user.ID {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Current returns the projection of the acting account.
func (s *AuthService) Current(user *models.User) *models.UserResponse {
	resp := user.ToResponse()
	return &resp
}

// Update applies the provided profile fields and leaves the others untouched.
func (s *AuthService) Update(ctx context.Context, user *models.User, req models.UpdateUserRequest) (*models.UserResponse, error) {
	s.log.WithField("user_id", user.ID).Debug("AuthService.Update")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.passwordCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	user.UpdatedAt = time.Now()

	// The token column is left alone so a newer login is never undone.
	if err := s.userRepo.Update(ctx, user, "name", "password", "avatar", "updated_at"); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}

// Logout clears the session token of the account.
func (s *AuthService) Logout(ctx context.Context, user *models.User) (*models.UserResponse, error) {
	s.log.WithField("user_id", user.ID).Debug("AuthService.Logout")
	user.Token = nil
	if err := s.userRepo.Update(ctx, user, "token"); err != nil {
		return nil, fmt.Errorf("failed to clear token: %w", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}
