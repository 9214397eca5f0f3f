package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/plancours/internal/logging"
	"github.com/ppiankov/plancours/internal/metrics"
	"github.com/ppiankov/plancours/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.3.0"

var (
	cfgFile string
	verbose bool

	// recorder collects the metrics of one command run
	recorder = metrics.New()
)

// envFiles are loaded before the configuration; existing variables win
var envFiles = []string{".env.local", ".env"}

// apiKeyEnv lists the variables checked for the remote API key, in order
var apiKeyEnv = []string{"OPENAI_API_KEY", "PLANCOURS_LLM_API_KEY", "VITE_OPENAI_API_KEY"}

// configKeys are bound to PLANCOURS_* environment variables
var configKeys = []string{
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
	"llm.max_tokens", "llm.temperature", "llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"cache.enabled", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
	"concurrency.workers",
	"rate_limiting.requests_per_second", "rate_limiting.burst_size",
	"store.dir", "store.blob_dir", "store.database_url",
	"submission.min_questions", "forms.min_questions",
	"output.verbose", "metrics.file",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "plancours",
	Short: "Plancours - course plan questionnaires with answer evaluation",
	Long: `Plancours collects a teacher's answers to a course-plan questionnaire,
grades each answer against its rule and submits the completed plan as a
PDF document for coordinator review.

Answers are graded by a remote chat-completion model when an API key is
configured, and by local rules otherwise. A remote failure never blocks:
the local rules take over and a notice is shown.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		file := viper.GetString("metrics.file")
		if file == "" {
			return nil
		}
		if err := recorder.WriteTextfile(file); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Plancours.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "plancours %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.plancours/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env files, config file and ENV variables
func initConfig() {
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", name, err)
		}
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.plancours")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PLANCOURS_*
	viper.SetEnvPrefix("PLANCOURS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		for _, name := range apiKeyEnv {
			if key := strings.TrimSpace(os.Getenv(name)); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	return cfg, nil
}

func newLogger(cfg *model.Config) logging.Logger {
	return logging.New(os.Stderr, cfg.Output.Verbose)
}
