package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/printshop-backend/internal/platform/ctxutil"
	"github.com/yungbote/printshop-backend/internal/platform/logger"
)

// IdentityService verifies access tokens minted by the account service.
// It never issues tokens.
type IdentityService interface {
	UserIDFromToken(tokenString string) (uuid.UUID, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type identityService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewIdentityService(log *logger.Logger, jwtSecretKey string) IdentityService {
	serviceLog := log.With("service", "IdentityService")
	return &identityService{log: serviceLog, jwtSecretKey: jwtSecretKey}
}

func (s *identityService) UserIDFromToken(tokenString string) (uuid.UUID, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return uuid.Nil, fmt.Errorf("missing token")
	}
	if s.jwtSecretKey == "" {
		return uuid.Nil, fmt.Errorf("token verification not configured")
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

func (s *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	userID, err := s.UserIDFromToken(tokenString)
	if err != nil {
		return ctx, err
	}
	ctx, rd := ctxutil.EnsureRequestData(ctx)
	rd.TokenString = tokenString
	rd.UserID = userID
	return ctx, nil
}
