package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/naveenspark/eventview/internal/browser"
	"github.com/naveenspark/eventview/internal/tui"
	"github.com/naveenspark/eventview/pkg/client"
	"github.com/naveenspark/eventview/pkg/toast"
)

func (c *cli) runTUI() error {
	if c.cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", c.cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		defer serveMetrics(ln, c.registry, c.logger)()
	}

	store := toast.NewStore(toast.WithTimeout(c.cfg.ToastTimeout), toast.WithLogger(c.logger))
	defer store.Close()

	nav := tui.NewNavigator(c.logger)
	opts := c.clientOptions()
	app := tui.NewApp(tui.Deps{
		Store:       store,
		Credentials: c.creds,
		Connect: func() (*client.Client, error) {
			return client.FromStorage(c.creds, c.cfg.DefaultAPIURL, store, nav, opts...)
		},
		Dial: func(serverURL string) *client.Client {
			return client.New(serverURL, "", opts...)
		},
		DefaultServer: c.cfg.DefaultAPIURL,
		OpenURL:       browser.Open,
		Logger:        c.logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	nav.Attach(p)
	stopWatching := tui.WatchToasts(store, p)
	defer stopWatching()

	final, err := p.Run()
	if m, ok := final.(tui.App); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// serveMetrics exposes the gateway metrics on ln until the returned func
// is called.
func serveMetrics(ln net.Listener, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", slog.String("err", err.Error()))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx) //nolint:errcheck
	}
}
