package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService issues and validates HS256-signed JWTs.
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTService(secret []byte, issuer string) *JWTService {
	return &JWTService{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *JWTService) Issue(subject string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSigningKey
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s *JWTService) Validate(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrSignatureMismatch
		default:
			return "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
		}
	}

	if claims.Subject == "" {
		return "", ErrMalformedToken
	}

	return claims.Subject, nil
}
