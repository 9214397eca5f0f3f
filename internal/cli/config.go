package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/plancours/internal/llm"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/store"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Plancours configuration",
	Long: `Manage Plancours configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (PLANCOURS_*, OPENAI_API_KEY)
3. Config file (~/.plancours/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags. The API key is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = maskKey(cfg.LLM.APIKey)
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprintln(out, string(yamlData))

		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Evaluation mode: %s\n", evaluationMode(cfg))
		fmt.Fprintln(out)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.plancours/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := home + "/.plancours"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'plancours config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		printf := func(format string, a ...any) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		printf("# Plancours Configuration File\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (PLANCOURS_*)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n\n")

		yamlData, mErr := yaml.Marshal(model.DefaultConfig())
		if mErr != nil {
			return fmt.Errorf("error marshaling config: %w", mErr)
		}
		printf("%s", yamlData)

		printf("\n# The API key is best kept out of this file:\n")
		printf("#   export OPENAI_API_KEY=sk-...\n")
		printf("# or put VITE_OPENAI_API_KEY=sk-... in .env.local\n")
		printf("# Without a key every answer is graded by the local rules.\n")

		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  plancours config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n\n", configPath)

		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check stores and remote evaluation",
	Long: `Open the configured stores and, when an API key is set, query the remote
endpoint. Exits with an error if the stores cannot be opened; an unreachable
remote endpoint is only reported since evaluation falls back to local rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout+5*time.Second)
		defer cancel()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()
		fmt.Fprintf(out, "✓ Document store: %s\n", storeLabel(cfg.Store))

		if _, err := store.OpenBlobs(cfg.Store); err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		fmt.Fprintf(out, "✓ Blob store: %s\n", cfg.Store.BlobDir)

		if form, err := st.ActiveForm(ctx); err == nil {
			fmt.Fprintf(out, "✓ Active form: %s (%d questions)\n", form.Name, len(form.Questions))
		} else {
			fmt.Fprintf(out, "! Active form: %v\n", err)
		}

		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return err
		}
		if provider == nil {
			fmt.Fprintln(out, "! Remote evaluation: no API key, local rules only")
			return nil
		}
		if provider.IsAvailable(ctx) {
			fmt.Fprintf(out, "✓ Remote evaluation: %s/%s reachable\n", provider.Name(), cfg.LLM.Model)
		} else {
			fmt.Fprintf(out, "! Remote evaluation: %s unreachable, answers will fall back to local rules\n", provider.Name())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
}

func evaluationMode(cfg *model.Config) string {
	if cfg.LLM.RemoteConfigured() {
		return fmt.Sprintf("remote (%s) with local fallback", cfg.LLM.Model)
	}
	return "local rules only"
}

func storeLabel(cfg model.StoreConfig) string {
	if cfg.DatabaseURL != "" {
		return "postgres"
	}
	return cfg.Dir
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-4:]
}
