package admintoken

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/cazala/landgiver/internal/admingate"
)

func TestGenerateKeysRequiresOutput(t *testing.T) {
	if err := GenerateKeys(nil, bytes.NewReader([]byte{1})); err == nil {
		t.Fatal("expected error when output is nil")
	}
}

func TestGenerateKeysWritesExports(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{1}, 64))
	if err := GenerateKeys(buf, reader); err != nil {
		t.Fatalf("generate keys: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	private := strings.TrimPrefix(lines[0], "export LANDGIVER_ADMIN_PRIVATE_KEY=")
	public := strings.TrimPrefix(lines[1], "export LANDGIVER_ADMIN_PUBLIC_KEY=")
	if private == lines[0] || public == lines[1] {
		t.Fatalf("unexpected output format: %q", buf.String())
	}

	privateBytes, err := base64.RawStdEncoding.DecodeString(private)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	publicBytes, err := base64.RawStdEncoding.DecodeString(public)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(privateBytes) != ed25519.PrivateKeySize {
		t.Fatalf("expected private key length %d, got %d", ed25519.PrivateKeySize, len(privateBytes))
	}
	if len(publicBytes) != ed25519.PublicKeySize {
		t.Fatalf("expected public key length %d, got %d", ed25519.PublicKeySize, len(publicBytes))
	}
}

func TestMintValidatesParams(t *testing.T) {
	_, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	encoded := base64.RawStdEncoding.EncodeToString(private)

	cases := []struct {
		name   string
		params MintParams
	}{
		{"missing issuer", MintParams{PrivateKey: encoded, Audience: "landgiver", Subject: "admin"}},
		{"missing audience", MintParams{PrivateKey: encoded, Issuer: "ops", Subject: "admin"}},
		{"missing subject", MintParams{PrivateKey: encoded, Issuer: "ops", Audience: "landgiver"}},
		{"missing key", MintParams{Issuer: "ops", Audience: "landgiver", Subject: "admin"}},
		{"short key", MintParams{PrivateKey: base64.RawStdEncoding.EncodeToString([]byte("short")), Issuer: "ops", Audience: "landgiver", Subject: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Mint(&bytes.Buffer{}, tc.params); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMintProducesVerifiableGrant(t *testing.T) {
	public, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	buf := &bytes.Buffer{}
	err = Mint(buf, MintParams{
		PrivateKey: base64.RawStdEncoding.EncodeToString(private),
		Issuer:     "ops",
		Audience:   "landgiver",
		Subject:    "0xadmin",
		TTL:        30 * time.Minute,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	gate := admingate.Config{
		Issuer:   "ops",
		Audience: "landgiver",
		Key:      public,
		Now:      func() time.Time { return now.Add(29 * time.Minute) },
	}
	claims, err := admingate.Verify(strings.TrimSpace(buf.String()), gate)
	if err != nil {
		t.Fatalf("verify minted grant: %v", err)
	}
	if claims.Subject != "0xadmin" {
		t.Fatalf("expected subject 0xadmin, got %q", claims.Subject)
	}

	expired := gate
	expired.Now = func() time.Time { return now.Add(31 * time.Minute) }
	if _, err := admingate.Verify(strings.TrimSpace(buf.String()), expired); err == nil {
		t.Fatal("expected expired grant to be rejected")
	}
}
