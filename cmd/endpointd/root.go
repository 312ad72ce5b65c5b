package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"endpointd/internal/config"
	"endpointd/internal/controlplane"
	"endpointd/internal/controlplane/sagemaker"
	"endpointd/internal/logging"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath   string
	logLevel     string
	logPretty    bool
	controlPlane string

	cfg config.Config
	// cp is built on first use so commands that never touch the control
	// plane do not need AWS credentials.
	cp controlplane.ControlPlane
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "endpointd",
		Short:         "Deploy and query a managed LLM inference endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (.yaml|.yml|.json|.toml|.env); environment variables override it")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error|disabled (overrides ENDPOINTD_LOG_LEVEL)")
	pf.BoolVar(&a.logPretty, "log-pretty", false, "Human readable console logs instead of JSON")
	pf.StringVar(&a.controlPlane, "control-plane", "", "Control plane backend: sagemaker|memory (overrides ENDPOINTD_CONTROL_PLANE)")

	root.AddCommand(
		newCreateEndpointCmd(a),
		newDeleteEndpointCmd(a),
		newInferCmd(a),
		newServeCmd(a),
	)
	return root
}

// init resolves configuration: file, environment, flags, defaults, then
// validation. Logging is configured before anything else is logged.
func (a *app) init(cmd *cobra.Command) error {
	var cfg config.Config
	if a.configPath != "" {
		c, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg, err := config.FromEnv(cfg)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.controlPlane != "" {
		cfg.ControlPlane = a.controlPlane
	}
	cfg.ApplyDefaults()
	if err := logging.Init(cmd.ErrOrStderr(), cfg.LogLevel, a.logPretty); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	log.Debug().
		Str("endpoint", cfg.EndpointName).
		Str("region", cfg.Region).
		Str("control_plane", cfg.ControlPlane).
		Msg("configuration resolved")
	return nil
}

func (a *app) controlPlaneClient(ctx context.Context) (controlplane.ControlPlane, error) {
	if a.cp != nil {
		return a.cp, nil
	}
	switch a.cfg.ControlPlane {
	case config.ControlPlaneMemory:
		log.Warn().Msg("using the in-memory control plane; nothing is provisioned remotely")
		a.cp = controlplane.NewMemory()
	default:
		b, err := sagemaker.NewFromConfig(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.cp = b
	}
	return a.cp, nil
}
