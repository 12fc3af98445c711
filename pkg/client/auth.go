package client

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/naveenspark/eventview/pkg/domain"
)

// CheckToken returns the principal the current token belongs to.
func (c *Client) CheckToken(ctx context.Context) (domain.Principal, error) {
	var check domain.TokenCheck
	if err := c.get(ctx, "/auth/check-token", &check); err != nil {
		return "", fmt.Errorf("client.CheckToken: %w", err)
	}
	return check.Principal, nil
}

// RequestChallenge asks the server for a challenge to sign as principal.
func (c *Client) RequestChallenge(ctx context.Context, principal domain.Principal) ([]byte, error) {
	var ch domain.Challenge
	if err := c.post(ctx, "/auth/challenge", domain.ChallengeRequest{Principal: principal}, &ch); err != nil {
		return nil, fmt.Errorf("client.RequestChallenge: %w", err)
	}
	if len(ch.Challenge) == 0 {
		return nil, errors.New("client.RequestChallenge: empty challenge")
	}
	return ch.Challenge, nil
}

// AnswerChallenge sends the signed challenge and returns the issued token.
func (c *Client) AnswerChallenge(ctx context.Context, principal domain.Principal, challenge, response []byte) (string, error) {
	body := domain.ChallengeResponse{
		Principal: principal,
		Challenge: challenge,
		Response:  response,
	}
	var tok domain.TokenResponse
	if err := c.post(ctx, "/auth/challenge-response", body, &tok); err != nil {
		return "", fmt.Errorf("client.AnswerChallenge: %w", err)
	}
	if tok.Token == "" {
		return "", errors.New("client.AnswerChallenge: empty token")
	}
	return tok.Token, nil
}

// SignIn runs the challenge/response exchange for principal and returns
// the session token. Storing the token is up to the caller.
func (c *Client) SignIn(ctx context.Context, principal domain.Principal, key ed25519.PrivateKey) (string, error) {
	if principal == "" {
		return "", errors.New("client.SignIn: principal is required")
	}
	if len(key) != ed25519.PrivateKeySize {
		return "", errors.New("client.SignIn: invalid private key")
	}
	challenge, err := c.RequestChallenge(ctx, principal)
	if err != nil {
		return "", err
	}
	return c.AnswerChallenge(ctx, principal, challenge, ed25519.Sign(key, challenge))
}

// ParsePrivateKey decodes an ed25519 key stored as hex or base64. Both the
// 32-byte seed and the 64-byte private key forms are accepted.
func ParsePrivateKey(data []byte) (ed25519.PrivateKey, error) {
	text := string(bytes.TrimSpace(data))
	if text == "" {
		return nil, errors.New("client.ParsePrivateKey: empty key")
	}

	raw, err := hex.DecodeString(text)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, errors.New("client.ParsePrivateKey: key is neither hex nor base64")
		}
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("client.ParsePrivateKey: key is %d bytes, want %d or %d",
			len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}
