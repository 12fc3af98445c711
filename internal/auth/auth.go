// Package auth signs a principal in against a viewer server and keeps the
// resulting session in durable storage.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/domain"
)

// Store is the durable storage a session is written to.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Login reads the ed25519 key at keyPath, answers the server's challenge as
// principal and stores the server URL and token. gw must point at the
// server being signed in to and should carry no session handler.
func Login(ctx context.Context, gw *client.Client, store Store, principal domain.Principal, keyPath string) (string, error) {
	if strings.TrimSpace(string(principal)) == "" {
		return "", errors.New("principal is required")
	}
	path, err := ExpandHome(keyPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	key, err := client.ParsePrivateKey(data)
	if err != nil {
		return "", err
	}

	token, err := gw.SignIn(ctx, principal, key)
	if err != nil {
		return "", err
	}
	if err := store.Set(client.StorageKeyServerURL, gw.BaseURL()); err != nil {
		return "", fmt.Errorf("save server url: %w", err)
	}
	if err := store.Set(client.StorageKeyToken, token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// Logout forgets the stored token. It reports whether a token was present.
func Logout(store Store) (bool, error) {
	tok, err := store.Get(client.StorageKeyToken)
	if err != nil {
		return false, err
	}
	if tok == "" {
		return false, nil
	}
	if err := store.Remove(client.StorageKeyToken); err != nil {
		return false, fmt.Errorf("remove token: %w", err)
	}
	return true, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("key path is required")
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
