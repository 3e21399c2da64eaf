// Package cli implements the decoda command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/decoda/decoda/internal/cache"
	"github.com/decoda/decoda/internal/llm"
	"github.com/decoda/decoda/internal/model"
	"github.com/decoda/decoda/internal/pipeline"
	"github.com/decoda/decoda/internal/session"
	"github.com/decoda/decoda/internal/verify"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "decoda",
	Short: "Decoda - NDIS jargon decoder and evidence-checked query assistant",
	Long: `Decoda answers questions about the NDIS (National Disability Insurance
Scheme) in plain language: support code lookup, policy guidance, service
recommendations, scheme updates and budget planning.

Generated answers are treated as untrusted input. Every response carries
extracted citations, a fact verification summary replayed from the local
verification cache, and an explicit confidence indicator.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("decoda v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.decoda/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and DECODA_* environment variables. A
// .env file in the working directory is loaded first so local setups can
// keep API keys out of the shell profile.
func initConfig() {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".decoda"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DECODA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file and environment overrides
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.Output.Verbose = verbose

	if cfg.LLM.APIKey == "" {
		for _, envVar := range []string{"DECODA_API_KEY", "PERPLEXITY_API_KEY", "OPENAI_API_KEY"} {
			if key := os.Getenv(envVar); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}
	if baseURL := os.Getenv("DECODA_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	// A configured key with no explicit provider means the OpenAI-compatible
	// backend is usable.
	if cfg.LLM.Provider == "" && cfg.LLM.APIKey != "" {
		cfg.LLM.Provider = "openai"
	}

	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newVerifier builds the verifier over the layered verification cache
func newVerifier(cfg *model.Config, log *slog.Logger) *verify.Verifier {
	store := cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir)
	return verify.New(store, cfg.Sources, log)
}

// newEngine wires the full pipeline from configuration
func newEngine(cfg *model.Config, log *slog.Logger) (*pipeline.Engine, error) {
	sessions, err := session.NewStore(cfg.Session.Dir, cfg.Session.RetentionDays, log)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	if provider == nil && verbose {
		fmt.Fprintln(os.Stderr, "No LLM provider configured; answering from the catalogue only")
	}

	return pipeline.New(cfg, newVerifier(cfg, log), sessions, provider, log), nil
}
