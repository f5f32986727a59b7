package config

import (
	"errors"
	"fmt"
	"slices"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"

	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

// pasetoKeyLen is the symmetric key size required by PASETO v4.local.
const pasetoKeyLen = 32

// bcrypt cost bounds, mirroring golang.org/x/crypto/bcrypt.
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

var (
	validDrivers      = []string{DriverPostgres, DriverSQLite, DriverMemory}
	validTokenFormats = []string{TokenFormatJWT, TokenFormatPaseto}
	validHashers      = []string{HasherArgon2id, HasherBcrypt}
)

var ErrMissingSecret = errors.New("TOKEN_SECRET is required")

// Validate checks that the selected backends are supported and that the
// signing secret and hashing parameters are usable.
func (c *Config) Validate() error {
	if !slices.Contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required for the sqlite driver")
	}

	if err := c.Auth.Validate(); err != nil {
		return err
	}

	if c.Redis.UserCacheTTL < 0 {
		return fmt.Errorf("USER_CACHE_TTL must not be negative")
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("SERVER_REQUEST_TIMEOUT must not be negative")
	}

	return nil
}

func (c *AuthConfig) Validate() error {
	if !slices.Contains(validTokenFormats, c.TokenFormat) {
		return fmt.Errorf("unsupported token format: %s", c.TokenFormat)
	}

	if c.TokenSecret == "" {
		return ErrMissingSecret
	}

	// Validate PASETO key length (must be 32 bytes for v4.local)
	if c.TokenFormat == TokenFormatPaseto && len(c.TokenSecret) != pasetoKeyLen {
		return fmt.Errorf("TOKEN_SECRET must be exactly %d bytes for paseto, got %d", pasetoKeyLen, len(c.TokenSecret))
	}

	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}

	if !slices.Contains(validHashers, c.PasswordHasher) {
		return fmt.Errorf("unsupported password hasher: %s", c.PasswordHasher)
	}

	switch c.PasswordHasher {
	case HasherBcrypt:
		if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
			return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, c.BcryptCost)
		}
	case HasherArgon2id:
		if c.Argon2Time == 0 || c.Argon2MemoryKiB == 0 || c.Argon2Threads == 0 {
			return fmt.Errorf("argon2 time, memory and threads must all be positive")
		}
	}

	return nil
}
