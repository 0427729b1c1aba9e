package admingate

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

var testNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pub, priv
}

func testConfig(pub ed25519.PublicKey) Config {
	return Config{
		Issuer:   "landgiver-admin",
		Audience: "landgiver",
		Key:      pub,
		Now:      func() time.Time { return testNow },
	}
}

func signGrant(t *testing.T, priv ed25519.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("sign grant: %v", err)
	}
	return signed
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    "landgiver-admin",
		Audience:  jwt.ClaimStrings{"landgiver"},
		Subject:   "admin",
		ID:        "grant-1",
		IssuedAt:  jwt.NewNumericDate(testNow.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}
}

func TestVerifyAcceptsValidGrant(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	grant := signGrant(t, priv, validClaims())

	claims, err := Verify(grant, testConfig(pub))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("subject = %q, want admin", claims.Subject)
	}
	if claims.JWTID != "grant-1" {
		t.Fatalf("jti = %q, want grant-1", claims.JWTID)
	}
}

func TestVerifyRejectsBadGrants(t *testing.T) {
	t.Parallel()

	pub, priv := testKeys(t)
	otherPub, _ := testKeys(t)

	cases := []struct {
		name  string
		grant func(t *testing.T) string
		cfg   Config
	}{
		{
			name:  "empty grant",
			grant: func(t *testing.T) string { return "  " },
			cfg:   testConfig(pub),
		},
		{
			name:  "wrong key",
			grant: func(t *testing.T) string { return signGrant(t, priv, validClaims()) },
			cfg:   testConfig(otherPub),
		},
		{
			name: "issuer mismatch",
			grant: func(t *testing.T) string {
				claims := validClaims()
				claims.Issuer = "someone-else"
				return signGrant(t, priv, claims)
			},
			cfg: testConfig(pub),
		},
		{
			name: "audience mismatch",
			grant: func(t *testing.T) string {
				claims := validClaims()
				claims.Audience = jwt.ClaimStrings{"other-service"}
				return signGrant(t, priv, claims)
			},
			cfg: testConfig(pub),
		},
		{
			name: "missing subject",
			grant: func(t *testing.T) string {
				claims := validClaims()
				claims.Subject = ""
				return signGrant(t, priv, claims)
			},
			cfg: testConfig(pub),
		},
		{
			name: "expired",
			grant: func(t *testing.T) string {
				claims := validClaims()
				claims.ExpiresAt = jwt.NewNumericDate(testNow.Add(-time.Second))
				return signGrant(t, priv, claims)
			},
			cfg: testConfig(pub),
		},
		{
			name: "not active yet",
			grant: func(t *testing.T) string {
				claims := validClaims()
				claims.NotBefore = jwt.NewNumericDate(testNow.Add(time.Minute))
				return signGrant(t, priv, claims)
			},
			cfg: testConfig(pub),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Verify(tc.grant(t), tc.cfg)
			if apperrors.CodeOf(err) != apperrors.CodeInvalidCaller {
				t.Fatalf("error = %v, want code %s", err, apperrors.CodeInvalidCaller)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	pub, _ := testKeys(t)
	t.Setenv("LANDGIVER_ADMIN_ISSUER", "landgiver-admin")
	t.Setenv("LANDGIVER_ADMIN_AUDIENCE", "landgiver")
	t.Setenv("LANDGIVER_ADMIN_PUBLIC_KEY", base64.RawStdEncoding.EncodeToString(pub))

	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Issuer != "landgiver-admin" || cfg.Audience != "landgiver" {
		t.Fatalf("config = %+v", cfg)
	}
	if len(cfg.Key) != ed25519.PublicKeySize {
		t.Fatalf("key size = %d", len(cfg.Key))
	}
}

func TestLoadConfigFromEnvRequiresValues(t *testing.T) {
	t.Setenv("LANDGIVER_ADMIN_ISSUER", "")
	t.Setenv("LANDGIVER_ADMIN_AUDIENCE", "")
	t.Setenv("LANDGIVER_ADMIN_PUBLIC_KEY", "")

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected missing env error")
	}
}
