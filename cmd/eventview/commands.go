package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/naveenspark/eventview/internal/auth"
	"github.com/naveenspark/eventview/internal/browser"
	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/domain"
)

// skipSetup marks commands that run without configuration.
const skipSetup = "skip-setup"

func (c *cli) loginCmd() *cobra.Command {
	var principal, keyPath, server string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in by answering the server's challenge with an ed25519 key",
		Example: `  eventview login --principal admin --key ~/.eventview/admin.key
  eventview login --principal agent-7 --key ./agent.key --server https://viewer.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if server == "" {
				s, err := c.serverURL()
				if err != nil {
					return err
				}
				server = s
			}
			target, err := normalizeServer(server)
			if err != nil {
				return err
			}

			gw := client.New(target, "", c.clientOptions()...)
			if _, err := auth.Login(cmd.Context(), gw, c.creds, domain.Principal(principal), keyPath); err != nil {
				c.logger.Warn("login failed",
					slog.String("principal", principal),
					slog.String("server", target),
					slog.String("err", err.Error()),
				)
				if client.IsStatus(err, http.StatusUnauthorized) {
					return fmt.Errorf("sign in rejected for %s: check the key file", principal)
				}
				return fmt.Errorf("sign in: %w", err)
			}
			c.logger.Info("signed in", slog.String("principal", principal), slog.String("server", target))
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s on %s\n", principal, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&principal, "principal", "p", "", "principal to sign in as")
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "file holding the hex or base64 ed25519 private key")
	cmd.Flags().StringVarP(&server, "server", "s", "", "server URL (default: the stored server)")
	cmd.MarkFlagRequired("principal") //nolint:errcheck
	cmd.MarkFlagRequired("key")       //nolint:errcheck
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			had, err := auth.Logout(c.creds)
			if err != nil {
				return err
			}
			if !had {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server and the signed-in principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := c.serverURL()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:    %s\n", server)

			s, err := auth.Current(c.creds)
			switch {
			case errors.Is(err, auth.ErrNotSignedIn):
				fmt.Fprintln(out, "Principal: not signed in")
				return nil
			case err != nil:
				c.logger.Debug("inspect token", slog.String("err", err.Error()))
				fmt.Fprintln(out, "Principal: unknown (token is not a JWT)")
				return nil
			}
			fmt.Fprintf(out, "Principal: %s\n", s.Principal)
			if !s.IssuedAt.IsZero() {
				fmt.Fprintf(out, "Issued:    %s\n", s.IssuedAt.Local().Format(time.DateTime))
			}
			if s.Expired(time.Now()) {
				fmt.Fprintf(out, "Expired:   %s\n", s.ExpiresAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func (c *cli) serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [url]",
		Short: "Show or set the server URL",
		Long: `Without an argument, print the server requests are sent to.

With a URL, store it as the server. Switching to a different server
forgets the session token, since tokens are only valid where they were
issued.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := c.serverURL()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), current)
				return nil
			}

			next, err := normalizeServer(args[0])
			if err != nil {
				return err
			}
			if next != current {
				if err := c.creds.Remove(client.StorageKeyToken); err != nil {
					return err
				}
			}
			if err := c.creds.Set(client.StorageKeyServerURL, next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server set to %s\n", next)
			return nil
		},
	}
}

func (c *cli) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the server's web viewer in a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := c.serverURL()
			if err != nil {
				return err
			}
			if err := browser.Open(server); err != nil {
				c.logger.Debug("open browser", slog.String("err", err.Error()))
				fmt.Fprintf(cmd.OutOrStdout(), "Could not open a browser. Visit:\n  %s\n", server)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "eventview %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	return cmd
}

// normalizeServer checks that raw is an http(s) URL and drops trailing slashes.
func normalizeServer(raw string) (string, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("server %q is not an http(s) URL", raw)
	}
	return s, nil
}
