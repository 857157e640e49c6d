package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/lumina/internal/api"
	"github.com/Tiliavir/lumina/internal/connectivity"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trip store as a local JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	defer watchConnectivity(out, a.monitor)()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Serve.Addr
	}

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(
			api.NewServer(a.store, a.searcher, a.monitor, a.log),
			api.RouterOptions{AllowedOrigins: a.cfg.Serve.AllowedOrigins},
		),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	a.log.Info("serving", zap.String("addr", addr), zap.Bool("online", a.monitor.Online()))
	fmt.Fprintf(out, "Listening on http://%s\n", addr)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShutdown)
}

// watchConnectivity prints every connectivity transition reported through the
// API to w. The returned func stops watching.
func watchConnectivity(w io.Writer, m *connectivity.Monitor) (cancel func()) {
	return m.Subscribe(func(online bool) {
		state := connectivity.Offline
		if online {
			state = connectivity.Online
		}
		fmt.Fprintf(w, "Connectivity: %s\n", state)
	})
}
