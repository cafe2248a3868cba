package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the foldpanel service. All values
// are fixed at process start; none are overridable per request.
type Config struct {
	Addr            string   `env:"ADDR,default=:8080"`
	PredictorBin    string   `env:"PREDICTOR_BIN,default=protenix"`
	ModelName       string   `env:"PREDICTOR_MODEL,default=protenix_base_default_v0.5.0"`
	Seeds           string   `env:"PREDICTOR_SEEDS,default=101"`
	StagingDir      string   `env:"STAGING_DIR,default=./staging"`
	OutputRoot      string   `env:"OUTPUT_ROOT,default=./output"`
	CredentialsFile string   `env:"CREDENTIALS_FILE,default=./credentials.yaml"`
	MaxUploadBytes  int64    `env:"MAX_UPLOAD_BYTES,default=10485760"`
	AllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	CookieSecure    bool     `env:"COOKIE_SECURE,default=false"`
	OTLPEndpoint    string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PredictorBin == "" {
		return errors.New("predictor binary is required")
	}
	if c.ModelName == "" {
		return errors.New("predictor model name is required")
	}
	if c.StagingDir == "" || c.OutputRoot == "" {
		return errors.New("staging and output directories are required")
	}
	if c.StagingDir == c.OutputRoot {
		return fmt.Errorf("staging dir and output root must differ, both are %q", c.StagingDir)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_BYTES: %d", c.MaxUploadBytes)
	}
	return nil
}
