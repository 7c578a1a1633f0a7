package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// TokenTTL is how long an issued access token stays valid.
const TokenTTL = 24 * time.Hour

// Claims carried by issued access tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthUsecase issues and validates admin access tokens. Login checks
// the configured admin identity first, then the legacy registered-user
// collection; both failure modes share one error so callers cannot
// distinguish an unknown user from a wrong password.
type AuthUsecase struct {
	users         domain.UserRepository
	jwtSecret     []byte
	adminUsername string
	adminPassword string
	logger        *zap.Logger
	now           func() time.Time
}

func NewAuthUsecase(users domain.UserRepository, jwtSecret, adminUsername, adminPassword string, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		jwtSecret:     []byte(jwtSecret),
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		logger:        logger,
		now:           time.Now,
	}
}

func (uc *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	if uc.adminPassword != "" &&
		subtle.ConstantTimeCompare([]byte(username), []byte(uc.adminUsername)) == 1 &&
		subtle.ConstantTimeCompare([]byte(password), []byte(uc.adminPassword)) == 1 {
		return uc.issueToken(username)
	}

	if uc.users != nil {
		user, err := uc.users.FindByUsername(ctx, username)
		if err == nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
			return uc.issueToken(username)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
	}

	uc.logger.Warn("login rejected", zap.String("username", username))
	return "", domain.ErrInvalidCredentials
}

// Register creates a legacy credential holder. Usernames are unique.
func (uc *AuthUsecase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, PasswordHash: string(hash)}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("username", username))
	return user, nil
}

// Authenticate validates a token and returns its claims.
func (uc *AuthUsecase) Authenticate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

func (uc *AuthUsecase) issueToken(username string) (string, error) {
	now := uc.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.jwtSecret)
}
