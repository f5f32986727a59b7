package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const (
	pasetoV4LocalHeader = "v4.local."
	// nonce (32) + authentication tag (32)
	pasetoV4LocalMinPayload = 64
)

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	issuer       string
	now          func() time.Time
}

func NewPasetoService(symmetricKey []byte, issuer string) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		issuer:       issuer,
		now:          time.Now,
	}, nil
}

func (s *PasetoService) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(ttl))
	token.SetSubject(subject)
	token.SetJti(uuid.NewString())
	if s.issuer != "" {
		token.SetIssuer(s.issuer)
	}

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

func (s *PasetoService) Validate(tokenStr string) (string, error) {
	if !wellFormedV4Local(tokenStr) {
		return "", ErrMalformedToken
	}

	// Expiry is checked below against the injected clock.
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// The payload decodes, so a failure here is an authentication failure.
		return "", fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return "", ErrMalformedToken
	}
	if !s.now().Before(expiresAt) {
		return "", ErrExpiredToken
	}

	if s.issuer != "" {
		if iss, err := token.GetIssuer(); err != nil || iss != s.issuer {
			return "", ErrMalformedToken
		}
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return "", ErrMalformedToken
	}

	return subject, nil
}

// wellFormedV4Local checks the header and payload encoding without decrypting.
func wellFormedV4Local(tokenStr string) bool {
	body, ok := strings.CutPrefix(tokenStr, pasetoV4LocalHeader)
	if !ok {
		return false
	}

	payload, _, _ := strings.Cut(body, ".")
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return false
	}

	return len(raw) > pasetoV4LocalMinPayload
}
