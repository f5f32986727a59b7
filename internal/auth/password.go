package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/redmonkez12/go-auth-service/internal/config"
)

const (
	argon2KeyLen = 32
	saltLen      = 16

	argon2Prefix = "$argon2id$"

	// bcrypt ignores input past this many bytes.
	bcryptMaxInput = 72
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Hasher implements PasswordHasher. New hashes use the configured scheme;
// verification accepts both argon2id PHC strings and bcrypt hashes.
type Hasher struct {
	scheme     string
	bcryptCost int
	argonTime  uint32
	argonMem   uint32 // KiB
	argonPar   uint8
}

func NewPasswordHasher(cfg *config.AuthConfig) *Hasher {
	return &Hasher{
		scheme:     cfg.PasswordHasher,
		bcryptCost: cfg.BcryptCost,
		argonTime:  cfg.Argon2Time,
		argonMem:   cfg.Argon2MemoryKiB,
		argonPar:   cfg.Argon2Threads,
	}
}

// Hash returns an encoded hash of plaintext with a fresh random salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.scheme == config.HasherBcrypt {
		hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(hash), nil
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.argonTime, h.argonMem, h.argonPar, argon2KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argonMem,
		h.argonTime,
		h.argonPar,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches encoded.
// A hash that cannot be parsed yields ErrInvalidHashFormat.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		p, err := parseArgon2(encoded)
		if err != nil {
			return false, err
		}
		key := argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
		return subtle.ConstantTimeCompare(p.key, key) == 1, nil

	case isBcrypt(encoded):
		if len(plaintext) > bcryptMaxInput {
			return false, nil
		}
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrInvalidHashFormat, err)

	default:
		return false, ErrInvalidHashFormat
	}
}

// NeedsRehash reports whether encoded was produced with a scheme or cost
// other than the configured one.
func (h *Hasher) NeedsRehash(encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		if h.scheme != config.HasherArgon2id {
			return true
		}
		p, err := parseArgon2(encoded)
		if err != nil {
			return false
		}
		return p.time != h.argonTime || p.memory != h.argonMem || p.threads != h.argonPar

	case isBcrypt(encoded):
		if h.scheme != config.HasherBcrypt {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		if err != nil {
			return false
		}
		return cost != h.bcryptCost

	default:
		return false
	}
}

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrInvalidHashFormat
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, ErrInvalidHashFormat
	}
	// argon2.IDKey panics on zero parameters
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return nil, ErrInvalidHashFormat
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, ErrInvalidHashFormat
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, ErrInvalidHashFormat
	}

	return p, nil
}

func isBcrypt(encoded string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}
