package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphscout-dev/graphscout/internal/config"
	"github.com/graphscout-dev/graphscout/internal/logger"
	"github.com/graphscout-dev/graphscout/internal/oracle"
	"github.com/graphscout-dev/graphscout/internal/scan"
	"github.com/graphscout-dev/graphscout/internal/vfs"
)

// ResolveConfig loads the config file named by --config and applies any flags
// the user set on top of it.
func ResolveConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config flag: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("api-key-env") {
		cfg.APIKeyEnv, _ = flags.GetString("api-key-env")
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("allow") {
		cfg.Allow, _ = flags.GetStringSlice("allow")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))
}

func newFS(cfg *config.Config) (*vfs.FS, error) {
	fs := vfs.New()
	for _, pattern := range cfg.Allow {
		if err := fs.Allow(pattern); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// NewOracle builds the oracle backend selected by the configuration.
func NewOracle(cfg *config.Config) (oracle.Oracle, error) {
	switch cfg.Provider {
	case "openai":
		return oracle.NewOpenAI(oracle.OpenAIConfig{
			APIKey:  apiKey(cfg, "OPENAI_API_KEY"),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "anthropic":
		return oracle.NewAnthropic(oracle.AnthropicConfig{
			APIKey:  apiKey(cfg, "ANTHROPIC_API_KEY"),
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		host := cfg.BaseURL
		if host == "" {
			host = "http://localhost:11434"
		}
		return oracle.NewOllama(oracle.OllamaConfig{
			Host:    host,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func apiKey(cfg *config.Config, fallbackEnv string) string {
	env := cfg.APIKeyEnv
	if env == "" {
		env = fallbackEnv
	}
	return os.Getenv(env)
}

func runContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.TimeoutSeconds > 0 {
		return context.WithTimeout(context.Background(), time.Duration(cfg.TimeoutSeconds)*time.Second)
	}
	return context.WithCancel(context.Background())
}

func logMetrics(log *logger.Logger, m scan.Metrics) {
	log.Infof("run %s: %d oracle calls, ~%d in / ~%d out tokens, %s elapsed",
		m.RunID, m.Calls, m.InTokens, m.OutTokens, m.Elapsed.Round(time.Millisecond))
}
