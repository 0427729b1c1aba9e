// Package admintoken generates admin gate keypairs and mints admin grants.
package admintoken

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultGrantTTL = time.Hour

// GenerateKeys creates an admin gate key pair and writes exports.
func GenerateKeys(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate admin gate key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export LANDGIVER_ADMIN_PRIVATE_KEY=%s\n", base64.RawStdEncoding.EncodeToString(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export LANDGIVER_ADMIN_PUBLIC_KEY=%s\n", base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}

// MintParams describes the grant to mint.
type MintParams struct {
	PrivateKey string // base64-encoded ed25519 private key
	Issuer     string
	Audience   string
	Subject    string
	TTL        time.Duration
	Now        func() time.Time
}

// Mint signs an admin grant and writes the compact token.
func Mint(out io.Writer, params MintParams) error {
	if out == nil {
		return errors.New("output is required")
	}
	issuer := strings.TrimSpace(params.Issuer)
	audience := strings.TrimSpace(params.Audience)
	subject := strings.TrimSpace(params.Subject)
	if issuer == "" || audience == "" {
		return errors.New("issuer and audience are required")
	}
	if subject == "" {
		return errors.New("subject is required")
	}
	keyBytes, err := decodeBase64(strings.TrimSpace(params.PrivateKey))
	if err != nil {
		return fmt.Errorf("decode admin gate private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return fmt.Errorf("admin gate private key must be %d bytes", ed25519.PrivateKeySize)
	}

	now := time.Now
	if params.Now != nil {
		now = params.Now
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultGrantTTL
	}
	issuedAt := now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	})
	signed, err := token.SignedString(ed25519.PrivateKey(keyBytes))
	if err != nil {
		return fmt.Errorf("sign admin grant: %w", err)
	}
	if _, err := fmt.Fprintln(out, signed); err != nil {
		return err
	}
	return nil
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
