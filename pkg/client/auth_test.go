package client

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/naveenspark/eventview/pkg/domain"
)

func testKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	return ed25519.NewKeyFromSeed(seed)
}

func TestSignIn(t *testing.T) {
	key := testKey(t)
	pub := key.Public().(ed25519.PublicKey)
	challenge := []byte("random-challenge-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch r.URL.Path {
		case "/auth/challenge":
			var req domain.ChallengeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Principal != "admin" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(domain.Challenge{Challenge: challenge}) //nolint:errcheck
		case "/auth/challenge-response":
			var req domain.ChallengeResponse
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if !ed25519.Verify(pub, req.Challenge, req.Response) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid private key"}) //nolint:errcheck
				return
			}
			json.NewEncoder(w).Encode(domain.TokenResponse{Token: "signed.jwt.token"}) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	tok, err := c.SignIn(context.Background(), "admin", key)
	if err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if tok != "signed.jwt.token" {
		t.Errorf("token = %q, want %q", tok, "signed.jwt.token")
	}

	// A different key fails verification.
	other := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))
	_, err = c.SignIn(context.Background(), "admin", other)
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("SignIn(wrong key) err = %v, want HTTP 401", err)
	}
}

func TestSignInValidatesInput(t *testing.T) {
	c := New("http://localhost:4000", "")
	if _, err := c.SignIn(context.Background(), "", testKey(t)); err == nil {
		t.Error("expected error for empty principal")
	}
	if _, err := c.SignIn(context.Background(), "admin", ed25519.PrivateKey{1, 2, 3}); err == nil {
		t.Error("expected error for short key")
	}
}

func TestCheckToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/check-token" || r.Header.Get("Authorization") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(domain.TokenCheck{Principal: "admin"}) //nolint:errcheck
	}))
	defer srv.Close()

	p, err := New(srv.URL, "tok").CheckToken(context.Background())
	if err != nil {
		t.Fatalf("CheckToken() error: %v", err)
	}
	if p != "admin" {
		t.Errorf("principal = %q, want %q", p, "admin")
	}
}

func TestParsePrivateKey(t *testing.T) {
	key := testKey(t)
	seed := key.Seed()

	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"hex seed", hex.EncodeToString(seed), ""},
		{"hex seed with newline", hex.EncodeToString(seed) + "\n", ""},
		{"hex private key", hex.EncodeToString(key), ""},
		{"base64 seed", base64.StdEncoding.EncodeToString(seed), ""},
		{"base64 private key", base64.StdEncoding.EncodeToString(key), ""},
		{"empty", "  ", "empty key"},
		{"garbage", "not a key!", "neither hex nor base64"},
		{"wrong length", hex.EncodeToString([]byte{1, 2, 3}), "3 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrivateKey([]byte(tt.in))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParsePrivateKey() err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrivateKey() error: %v", err)
			}
			if !got.Equal(key) {
				t.Error("parsed key does not match")
			}
		})
	}
}
