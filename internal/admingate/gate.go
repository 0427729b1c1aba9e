// Package admingate verifies the bearer grants that authenticate admin
// callers. A grant is an EdDSA-signed JWT whose subject names the calling
// principal; whether that principal actually holds the owner role is decided
// by the leasing service, not here.
package admingate

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

// gateEnv holds raw env values before post-parse validation.
type gateEnv struct {
	Issuer    string `env:"LANDGIVER_ADMIN_ISSUER"`
	Audience  string `env:"LANDGIVER_ADMIN_AUDIENCE"`
	PublicKey string `env:"LANDGIVER_ADMIN_PUBLIC_KEY"`
}

// Config defines how admin grants are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Claims captures validated admin grant claims.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
}

// gateClaims is the internal claims type used for JWT parsing.
type gateClaims struct {
	jwt.RegisteredClaims
}

// LoadConfigFromEnv reads admin grant verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw gateEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse admin gate env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("LANDGIVER_ADMIN_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("LANDGIVER_ADMIN_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("LANDGIVER_ADMIN_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode admin grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("admin grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// Verify checks an admin grant token and returns its validated claims.
func Verify(grant string, cfg Config) (Claims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return Claims{}, apperrors.New(apperrors.CodeInvalidCaller, "admin grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Claims{}, errors.New("admin gate is not configured")
	}

	var parsed gateClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeInvalidCaller,
			"admin grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeInvalidCaller,
			"admin grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, apperrors.New(apperrors.CodeInvalidCaller, "admin grant subject is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeInvalidCaller, "admin grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeInvalidCaller, "admin grant is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return Claims{}, apperrors.New(apperrors.CodeInvalidCaller, "admin grant not active yet")
		}
	}

	claims := Claims{
		Subject:   parsed.Subject,
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeInvalidCaller, "admin grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeInvalidCaller, "admin grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeInvalidCaller, "admin grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
