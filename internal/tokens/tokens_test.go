package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bryanlu3000/sign-in-demo/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "access-test-secret-32-bytes-xxxx"
	cfg.JWT.RefreshSecret = "refresh-test-secret-32-bytes-xxx"
	cfg.JWT.AccessTokenTTL = 300 * time.Second
	cfg.JWT.RefreshTokenTTL = 24 * time.Hour
	return cfg
}

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := testConfig()
	tokenStr, err := GenerateAccessToken(cfg, "test@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	email, err := VerifyToken(tokenStr, cfg.JWT.AccessSecret)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if email != "test@example.com" {
		t.Fatalf("unexpected email claim: got=%v", email)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenTTL = -time.Minute
	tokenStr, err := GenerateAccessToken(cfg, "x@x")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := VerifyToken(tokenStr, cfg.JWT.AccessSecret); err == nil {
		t.Fatalf("expected verification to fail for expired token")
	}
}

func TestVerifyToken_WrongSecretFails(t *testing.T) {
	cfg := testConfig()
	tokenStr, err := GenerateAccessToken(cfg, "bob@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	if _, err := VerifyToken(tokenStr, "different-secret-xxxxxxxxxxxxxxxx"); err == nil {
		t.Fatalf("expected verification to fail with wrong secret")
	}
}

// Access and refresh secrets are distinct on purpose: a token of one class
// must never verify under the other class's secret.
func TestVerifyToken_SecretsAreIsolated(t *testing.T) {
	cfg := testConfig()
	access, err := GenerateAccessToken(cfg, "iso@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	refresh, err := GenerateRefreshToken(cfg, "iso@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if _, err := VerifyToken(access, cfg.JWT.RefreshSecret); err == nil {
		t.Fatalf("access token must not verify under refresh secret")
	}
	if _, err := VerifyToken(refresh, cfg.JWT.AccessSecret); err == nil {
		t.Fatalf("refresh token must not verify under access secret")
	}
}

func TestVerifyToken_Malformed(t *testing.T) {
	if _, err := VerifyToken("not.a.jwt", "x"); err == nil {
		t.Fatalf("expected verification to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestVerifyToken_AlgNoneRejected(t *testing.T) {
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"email":"u@none","exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	if _, err := VerifyToken(tok, "x"); err == nil {
		t.Fatalf("expected verification to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestVerifyToken_TamperedPayload(t *testing.T) {
	cfg := testConfig()
	tokenStr, err := GenerateAccessToken(cfg, "victim@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	payloadBytes, _ := base64.RawURLEncoding.DecodeString(parts[1])
	payloadStr := strings.Replace(string(payloadBytes), "victim", "attacker", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(payloadStr))
	tampered := strings.Join(parts, ".")
	if _, err := VerifyToken(tampered, cfg.JWT.AccessSecret); err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}

func TestVerifyToken_MissingEmailClaim(t *testing.T) {
	secret := "no-email-claim-secret-xxxxxxxxxx"
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "someone",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	tokenStr, err := jt.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyToken(tokenStr, secret); err == nil {
		t.Fatalf("expected verification to fail when email claim is absent")
	}
}
