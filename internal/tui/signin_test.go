package tui

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naveenspark/eventview/pkg/client"
)

func writeKeyFile(t *testing.T, key ed25519.PrivateKey) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.key")
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key.Seed())), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func dialPlain(serverURL string) *client.Client {
	return client.New(serverURL, "")
}

func TestSignInFocusStartsOnPrincipalWhenServerKnown(t *testing.T) {
	m := newSignInModel(dialPlain, newMemCreds(), "http://localhost:4000")
	if m.focus != fieldPrincipal {
		t.Errorf("focus = %d, want principal", m.focus)
	}
	m = newSignInModel(dialPlain, newMemCreds(), "")
	if m.focus != fieldServer {
		t.Errorf("focus = %d, want server", m.focus)
	}
}

func TestSignInTyping(t *testing.T) {
	m := newSignInModel(dialPlain, newMemCreds(), "http://localhost:4000")
	for _, r := range "admin" {
		m, _ = m.Update(key(string(r)))
	}
	m, _ = m.Update(key("tab"))
	for _, r := range "~/k" {
		m, _ = m.Update(key(string(r)))
	}
	if m.fields[fieldPrincipal] != "admin" {
		t.Errorf("principal = %q, want admin", m.fields[fieldPrincipal])
	}
	if m.fields[fieldKey] != "~/k" {
		t.Errorf("key = %q, want ~/k", m.fields[fieldKey])
	}
	m, _ = m.Update(key("tab"))
	if m.focus != fieldServer {
		t.Errorf("focus = %d, want wrap to server", m.focus)
	}
}

func TestSignInValidation(t *testing.T) {
	tests := []struct {
		name      string
		fields    [numSignInFields]string
		wantMsg   string
		wantFocus signInField
	}{
		{"bad server", [numSignInFields]string{"localhost", "admin", "k"}, "server must be", fieldServer},
		{"ftp server", [numSignInFields]string{"ftp://host", "admin", "k"}, "server must be", fieldServer},
		{"no principal", [numSignInFields]string{"http://host", " ", "k"}, "principal is required", fieldPrincipal},
		{"no key", [numSignInFields]string{"http://host", "admin", ""}, "key file is required", fieldKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newSignInModel(dialPlain, newMemCreds(), "")
			m.fields = tt.fields
			m, cmd := m.Update(key("ctrl+s"))
			if cmd != nil {
				t.Error("invalid form should not submit")
			}
			if !strings.Contains(m.statusMsg, tt.wantMsg) {
				t.Errorf("statusMsg = %q, want %q", m.statusMsg, tt.wantMsg)
			}
			if m.focus != tt.wantFocus {
				t.Errorf("focus = %d, want %d", m.focus, tt.wantFocus)
			}
		})
	}
}

func TestSignInSubmitStoresSession(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	api := newFakeAPI(t, pub)
	creds := newMemCreds()

	m := newSignInModel(dialPlain, creds, api.URL()+"/")
	m.fields[fieldPrincipal] = "admin"
	m.fields[fieldKey] = writeKeyFile(t, priv)
	m.focus = fieldKey

	m, cmd := m.Update(key("enter"))
	if !m.submitting || cmd == nil {
		t.Fatal("enter on the key field should submit")
	}
	if _, again := m.Update(key("enter")); again != nil {
		t.Error("keys are ignored while submitting")
	}

	raw := cmd()
	msg, ok := raw.(signedInMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want signedInMsg", raw)
	}
	if msg.err != nil {
		t.Fatalf("sign in error: %v", msg.err)
	}
	if msg.server != api.URL() {
		t.Errorf("server = %q, want %q", msg.server, api.URL())
	}
	if got, _ := creds.Get(client.StorageKeyToken); got != fakeToken {
		t.Errorf("token = %q, want %q", got, fakeToken)
	}

	m, _ = m.Update(msg)
	if m.submitting || m.fields[fieldKey] != "" {
		t.Error("successful sign in should clear the key field")
	}
}

func TestSignInRejectedShowsStatus(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	_, wrong, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	api := newFakeAPI(t, pub)
	creds := newMemCreds()

	m := newSignInModel(dialPlain, creds, api.URL())
	m.fields[fieldPrincipal] = "admin"
	m.fields[fieldKey] = writeKeyFile(t, wrong)

	m, cmd := m.Update(key("ctrl+s"))
	msg := cmd().(signedInMsg)
	if !client.IsStatus(msg.err, 401) {
		t.Errorf("err = %v, want 401", msg.err)
	}
	m, _ = m.Update(msg)
	if m.statusMsg != "sign in failed" {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	if got, _ := creds.Get(client.StorageKeyToken); got != "" {
		t.Errorf("token stored after rejection: %q", got)
	}
}

func TestSignInView(t *testing.T) {
	m := newSignInModel(dialPlain, newMemCreds(), "http://localhost:4000")
	v := m.View()
	for _, want := range []string{"Sign in", "server", "principal", "key file", "http://localhost:4000"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}
