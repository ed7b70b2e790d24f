package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-must-be-at-least-32-characters-long"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("Failed to create JWT manager: %v", err)
	}
	return m
}

func TestJWTManager_GenerateToken(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name    string
		subject string
		role    string
		wantErr error
	}{
		{"admin token", "ops", RoleAdmin, nil},
		{"viewer token", "dashboard", RoleViewer, nil},
		{"empty subject", "", RoleEditor, ErrEmptySubject},
		{"empty role", "ops", "", ErrInvalidRole},
		{"unknown role", "ops", "superuser", ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := m.GenerateToken(tt.subject, tt.role)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GenerateToken() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if strings.Count(token, ".") != 2 {
				t.Errorf("token %q is not a compact JWS", token)
			}
		})
	}
}

func TestJWTManager_ValidateToken(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	token, err := m.GenerateToken("ops", RoleEditor)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Subject != "ops" || claims.Role != RoleEditor {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt.Sub(claims.IssuedAt) != 15*time.Minute {
		t.Errorf("lifetime = %v, want 15m", claims.ExpiresAt.Sub(claims.IssuedAt))
	}

	for _, bad := range []string{"", "not-a-token", token + "x"} {
		if _, err := m.ValidateToken(ctx, bad); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken(%q) error = %v, want ErrInvalidToken", bad, err)
		}
	}
}

func TestJWTManager_TokenExpiration(t *testing.T) {
	m := newTestManager(t)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateTokenTTL("ops", RoleViewer, time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenTTL() error = %v", err)
	}

	m.now = time.Now
	if _, err := m.ValidateToken(context.Background(), token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTManager_DifferentSecrets(t *testing.T) {
	m1 := newTestManager(t)
	m2, err := NewJWTManager(strings.Repeat("z", 40), time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	token, _ := m1.GenerateToken("ops", RoleAdmin)
	if _, err := m2.ValidateToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret validated: %v", err)
	}
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, key any, c tokenClaims) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	wrongIssuer := sign(jwt.SigningMethodHS256, []byte(testSecret), tokenClaims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", Subject: "x", ExpiresAt: exp},
	})
	if _, err := m.ValidateToken(ctx, wrongIssuer); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: error = %v", err)
	}

	noExpiry := sign(jwt.SigningMethodHS256, []byte(testSecret), tokenClaims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "x"},
	})
	if _, err := m.ValidateToken(ctx, noExpiry); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("missing exp: error = %v", err)
	}

	hs512 := sign(jwt.SigningMethodHS512, []byte(testSecret), tokenClaims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "x", ExpiresAt: exp},
	})
	if _, err := m.ValidateToken(ctx, hs512); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("HS512: error = %v", err)
	}

	badRole := sign(jwt.SigningMethodHS256, []byte(testSecret), tokenClaims{
		Role:             "root",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "x", ExpiresAt: exp},
	})
	if _, err := m.ValidateToken(ctx, badRole); !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("bad role: error = %v", err)
	}
}

func TestJWTManager_ShortSecret(t *testing.T) {
	if _, err := NewJWTManager("short", time.Minute); !errors.Is(err, ErrShortSecret) {
		t.Errorf("NewJWTManager() error = %v, want ErrShortSecret", err)
	}
}

func TestCanWrite(t *testing.T) {
	cases := map[string]bool{RoleAdmin: true, RoleEditor: true, RoleViewer: false, "": false}
	for role, want := range cases {
		if got := CanWrite(role); got != want {
			t.Errorf("CanWrite(%q) = %v, want %v", role, got, want)
		}
	}
}

func TestClaimsContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should carry no claims")
	}
	ctx := NewContext(context.Background(), &Claims{Subject: "ops", Role: RoleViewer})
	c, ok := FromContext(ctx)
	if !ok || c.Subject != "ops" {
		t.Errorf("FromContext() = %+v, %v", c, ok)
	}
}
