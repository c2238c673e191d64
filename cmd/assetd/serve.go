package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"assetd/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	var flags commonFlags
	var updateEveryMs int64
	var corsEnabled bool
	var corsOrigins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assetd HTTP daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if updateEveryMs > 0 {
				cfg.UpdateEveryMs = updateEveryMs
			}

			lvl, lerr := zerolog.ParseLevel(cfg.LogLevel)
			if lerr != nil {
				lvl = zerolog.InfoLevel
			}
			logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
			httpapi.SetLogger(logger)
			if corsEnabled {
				httpapi.SetCORSOptions(true, corsOrigins,
					[]string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
			}

			mgr, cleanup, err := buildManager(cfg, true)
			if err != nil {
				return err
			}
			defer cleanup()

			// Base context cancels handler work on shutdown.
			baseCtx, cancelBase := context.WithCancel(context.Background())
			defer cancelBase()
			httpapi.SetBaseContext(baseCtx)

			mux := httpapi.NewMux(mgr)
			srv := &http.Server{Addr: cfg.Addr, Handler: mux}

			// Warm the slot in the background; the daemon serves 503s until
			// the first acquisition completes.
			go func() {
				if err := mgr.EnsureReady(baseCtx); err != nil {
					logger.Warn().Err(err).Msg("initial ensure failed")
				}
			}()

			// Periodic update checks, when configured.
			if cfg.UpdateEveryMs > 0 {
				ticker := time.NewTicker(time.Duration(cfg.UpdateEveryMs) * time.Millisecond)
				go func() {
					defer ticker.Stop()
					for {
						select {
						case <-baseCtx.Done():
							return
						case <-ticker.C:
							installed, err := mgr.CheckForUpdate(baseCtx)
							if err != nil {
								logger.Warn().Err(err).Msg("update check failed")
								continue
							}
							if installed {
								logger.Info().Str("version", mgr.TargetVersion()).Msg("asset updated")
							}
						}
					}
				}()
			}

			go func() {
				logger.Info().Str("addr", cfg.Addr).Str("cache_dir", cfg.CacheDir).Msg("assetd listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server error: %v", err)
				}
			}()

			// Graceful shutdown (Ctrl+C / SIGTERM)
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			cancelBase()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&updateEveryMs, "update-every-ms", 0, "interval in ms between background update checks (0 disables)")
	cmd.Flags().BoolVar(&corsEnabled, "cors-enabled", false, "enable CORS middleware")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", []string{"*"}, "allowed CORS origins")
	return cmd
}
