package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/vectorstore"
)

const (
	app       = "hh-screener"
	envPrefix = "HH_SCREENER"
)

type Config struct {
	Screening   screening.Config    `mapstructure:"screening"`
	AI          *AIConfig           `mapstructure:"ai"`
	Qdrant      *vectorstore.Config `mapstructure:"qdrant"`
	HH          *HHConfig           `mapstructure:"hh"`
	MetricsFile string              `mapstructure:"metrics-file"`
}

// HHConfig is only needed when the job description is fetched from hh.ru.
type HHConfig struct {
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKey         string  `mapstructure:"api-key" json:"-"`
	APIKeyFile     string  `mapstructure:"api-key-file"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding-model"`
	MaxRetries     int     `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength   int     `mapstructure:"max-log-length" validate:"gte=0"`
	Temperature    float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// Each switch turns one AI enhancement on top of the deterministic pipeline.
	Adjudicate bool `mapstructure:"adjudicate"`
	Plan       bool `mapstructure:"plan"`
	Verify     bool `mapstructure:"verify"`
	Embed      bool `mapstructure:"embed"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-screener scores resumes against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.BindEnv("hh.token-file", "HH_TOKEN_FILE", envPrefix+"_HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY", envPrefix+"_AI_GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// setDefaults registers every key so that environment overrides reach the
// decoded config even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("screening.max-atoms", 0)
	v.SetDefault("screening.top-k", 0)
	v.SetDefault("screening.chunk-chars", 0)
	v.SetDefault("screening.chunk-overlap", 0)
	v.SetDefault("screening.workers", 0)
	v.SetDefault("screening.missing-limit", 0)
	v.SetDefault("screening.disable", []string{})
	v.SetDefault("screening.coverage.batch-size", 0)
	v.SetDefault("screening.coverage.max-attempts", 0)
	v.SetDefault("screening.coverage.batch-timeout", "0s")
	v.SetDefault("screening.coverage.backoff", "2s")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.embedding-model", "")
	v.SetDefault("ai.gemini.max-retries", 0)
	v.SetDefault("ai.gemini.max-log-length", 0)
	v.SetDefault("ai.gemini.temperature", 0)
	v.SetDefault("ai.gemini.adjudicate", true)
	v.SetDefault("ai.gemini.plan", true)
	v.SetDefault("ai.gemini.verify", true)
	v.SetDefault("ai.gemini.embed", false)

	v.SetDefault("qdrant.url", "")
	v.SetDefault("qdrant.api-key", "")
	v.SetDefault("qdrant.collection", "")

	v.SetDefault("hh.token-file", "")
	v.SetDefault("hh.user-agent", "")

	v.SetDefault("metrics-file", "")
}

func initConfig() {
	// Only evaluate reads the config file.
	if evaluateCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// defaults and environment are enough to run deterministically
		return
	}
	// We can't proceed if the config file parsed with error.
	if err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.AllSettings())
}

// decodeConfig turns viper settings into a validated Config. Durations may be
// given as strings ("90s") and lists as comma separated values from env.
func decodeConfig(settings map[string]any) (*Config, error) {
	config := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}
