package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docconv/internal/domain"
	"docconv/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// allowedAlgorithms prevents algorithm confusion attacks
var allowedAlgorithms = []string{"RS256", "ES256"}

// KeysetVerifier implements JWTVerifier against a set of public keys.
type KeysetVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from a JWKS endpoint.
// The keys are cached and refreshed in the background until Close is called.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	v := NewKeyfuncVerifier(jwks.Keyfunc, logger)
	v.cancel = cancel
	return v, nil
}

// NewKeyfuncVerifier creates a verifier that resolves signing keys with kf.
func NewKeyfuncVerifier(kf jwt.Keyfunc, logger *slog.Logger) *KeysetVerifier {
	return &KeysetVerifier{
		keyfunc: kf,
		parser:  jwt.NewParser(jwt.WithValidMethods(allowedAlgorithms), jwt.WithExpirationRequired()),
		logger:  logger,
	}
}

// VerifyToken validates a JWT token and extracts its claims.
// Every failure is reported as domain.ErrUnauthorized.
func (v *KeysetVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := v.parser.ParseWithClaims(tokenString, &models.Claims{}, v.keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err.Error())
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if !token.Valid {
		v.logger.Debug("token is invalid after parsing")
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, &domain.UnauthorizedError{Message: "token missing subject"}
	}

	return claims, nil
}

// Close stops the background JWKS refresh.
func (v *KeysetVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	v.logger.Info("JWT verifier closed")
	return nil
}
