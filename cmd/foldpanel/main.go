package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"foldpanel/internal/auth"
	"foldpanel/internal/config"
	"foldpanel/internal/handlers"
	"foldpanel/internal/otel"
	"foldpanel/internal/runner"
	"foldpanel/internal/staging"
	"foldpanel/internal/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Control panel for the Protenix structure predictor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	creds, err := auth.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load credentials")
	}

	stager, err := staging.New(cfg.StagingDir)
	if err != nil {
		log.Fatal().Err(err).Msg("init stager")
	}

	run, err := runner.New(runner.Options{
		Bin:        cfg.PredictorBin,
		ModelName:  cfg.ModelName,
		Seeds:      cfg.Seeds,
		OutputRoot: cfg.OutputRoot,
		Logger:     log.With().Str("component", "runner").Logger(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init runner")
	}

	h, err := handlers.New(cfg, creds, auth.NewSessionStore(cfg.CookieSecure), stager, run, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init handlers")
	}

	// No write timeout: run responses stream for the full duration of the
	// child process.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("predictor", cfg.PredictorBin).Msg("starting foldpanel")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
	return nil
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the predictor binary is resolvable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			path, err := exec.LookPath(cfg.PredictorBin)
			if err != nil {
				return fmt.Errorf("predictor %q not available: %w", cfg.PredictorBin, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "predictor available: %s\n", path)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Name, version.Version)
		},
	}
}
