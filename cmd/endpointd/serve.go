package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"endpointd/internal/deploy"
	"endpointd/internal/httpapi"
	"endpointd/internal/inference"
)

// apiService backs the HTTP API: answers through the inference pipeline and
// readiness from the control plane.
type apiService struct {
	*inference.Pipeline
	rm       *deploy.ResourceManager
	endpoint string
}

func (s apiService) Ready(ctx context.Context) error {
	if s.rm == nil {
		return nil
	}
	ok, err := s.rm.EndpointExists(ctx, s.endpoint)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("endpoint %q does not exist", s.endpoint)
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var inferTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inference API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			factory, err := inference.NewFactory(ctx, a.cfg)
			if err != nil {
				return err
			}
			svc := apiService{
				Pipeline: inference.NewPipeline(factory, inference.NewExecutorFromConfig(a.cfg)),
				endpoint: a.cfg.EndpointName,
			}
			// An HTTP inference server is not managed by the control plane.
			if a.cfg.InferenceURL == "" {
				cp, err := a.controlPlaneClient(ctx)
				if err != nil {
					return err
				}
				svc.rm = deploy.NewResourceManager(cp)
			}

			httpapi.SetLogger(log.Logger)
			httpapi.SetRequestLogLevel(a.cfg.LogLevel)
			httpapi.SetCORSOrigins(a.cfg.CORSOrigins)
			httpapi.SetInferTimeout(inferTimeout)
			httpapi.SetBaseContext(ctx)

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewMux(svc),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("endpoint", a.cfg.EndpointName).Msg("endpointd listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides ENDPOINTD_ADDR, default :8080)")
	cmd.Flags().DurationVar(&inferTimeout, "infer-timeout", 2*time.Minute, "Deadline for one /infer request (0 disables)")
	return cmd
}
