package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/partstack/partstack/pkg/buildinfo"
	"github.com/partstack/partstack/pkg/config"
	"github.com/partstack/partstack/pkg/toolserver"
)

const shutdownGrace = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		configPath string
		transport  string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tool-call server",
		Long: `Start the MCP tool-call server.

With --transport stdio the server speaks newline-delimited JSON-RPC on
stdin/stdout, which is what MCP clients spawn. With --transport http it
listens on the configured address and serves POST /mcp plus GET /health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			backends, httpClient, err := buildBackends(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackends(backends, httpClient)

			// Warm the JLCPCB category tree so the first search does not
			// pay for it. A failure here is not fatal, tools fetch lazily.
			if cats, err := backends.JLCPCB.FetchCategories(ctx); err != nil {
				logger.Warn("category preload failed", "error", err)
			} else {
				backends.JLCPCB.SetCategories(cats)
				logger.Info("categories loaded", "count", len(cats))
			}

			srv := toolserver.New(backends, logger, buildinfo.Version)

			switch transport {
			case "stdio":
				logger.Info("serving on stdio", "version", buildinfo.Version)
				return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
			case "http":
				if addr == "" {
					addr = net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
				}
				return serveHTTP(ctx, logger, srv, addr, cfg.Server.RatePerMinute)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "transport to serve on (stdio or http)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport (overrides config)")
	return cmd
}

func serveHTTP(ctx context.Context, logger *log.Logger, srv *toolserver.Server, addr string, ratePerMinute int) error {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Router(ratePerMinute),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving http", "addr", addr, "version", buildinfo.Version)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
