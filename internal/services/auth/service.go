package auth

import (
	"context"
	"fmt"
	"strings"
)

// Service validates bearer tokens minted by the identity provider that shares
// the signing secret. Sign-in itself happens outside this backend.
type Service struct {
	jwt *JWTManager
}

func NewService(jwtManager *JWTManager) *Service {
	return &Service{jwt: jwtManager}
}

func (s *Service) ValidateAccessToken(_ context.Context, accessToken string) (AccessClaims, error) {
	if s.jwt == nil {
		return AccessClaims{}, fmt.Errorf("jwt manager is nil")
	}
	return s.jwt.ParseAccessToken(strings.TrimSpace(accessToken))
}

func (s *Service) IssueAccessToken(_ context.Context, userID string) (string, error) {
	if s.jwt == nil {
		return "", fmt.Errorf("jwt manager is nil")
	}
	token, _, err := s.jwt.GenerateAccessToken(strings.TrimSpace(userID))
	if err != nil {
		return "", err
	}
	return token, nil
}
