package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// AuthService validates portal credentials and issues session tokens.
// Users live in memory and are seeded from configuration; registration
// and refresh flows are out of scope since nothing survives a restart.
type AuthService struct {
	users     map[string][]byte // username -> bcrypt hash
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService seeds the user table from a comma-separated list of
// "user:password" pairs. Malformed pairs are skipped with a warning.
func NewAuthService(userList, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	users := make(map[string][]byte)
	for _, pair := range strings.Split(userList, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			logger.Warn("auth: skipping malformed user entry")
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(parts[1]), bcrypt.DefaultCost)
		if err != nil {
			logger.Warn("auth: failed to hash seed password", zap.String("username", parts[0]), zap.Error(err))
			continue
		}
		users[parts[0]] = hash
	}

	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// Login checks the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	_ = ctx

	if req.Username == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "username and password are required"}
	}

	hash, ok := s.users[req.Username]
	if !ok {
		// Burn a bcrypt comparison anyway so a missing user costs the
		// same as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, &domain.ErrUnauthorized{Message: "invalid username or password"}
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
		s.logger.Warn("auth: failed login attempt", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: "invalid username or password"}
	}

	token, err := s.signAccessToken(req.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("citizen logged in", zap.String("identity", req.Username))

	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.accessTTL.Seconds()),
		Identity:    req.Username,
	}, nil
}

// ValidateAccessToken parses and verifies a token, returning its claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &domain.ErrUnauthorized{Message: "unexpected signing method"}
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Sub == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token claims"}
	}
	return claims, nil
}

func (s *AuthService) signAccessToken(identity string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  identity,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "citizen-ai-portal",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize
// timing between unknown-user and wrong-password failures.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("citizen-ai-portal-dummy"), bcrypt.MinCost)
	return h
}()
