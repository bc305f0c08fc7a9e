package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/textsense/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

// envPrefix is the prefix of environment overrides, e.g. TEXTSENSE_BACKEND_BASE_URL
const envPrefix = "TEXTSENSE"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "textsense",
	Short: "textsense - AI-generated text detection",
	Long: `textsense estimates whether a text was written by a human or generated
by an AI model such as ChatGPT.

The verdict comes from a RoBERTa sequence classifier served by an inference
backend. Detailed mode adds stylometric statistics and heuristic indicators.

Detection is probabilistic. A verdict is one signal, not proof of authorship.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of textsense.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("textsense %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.textsense/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".textsense"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configureViper(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper enables TEXTSENSE_* environment overrides and registers
// the built-in defaults
func configureViper(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return registerDefaults(v, model.DefaultConfig())
}

// secretKeys are omitted from the YAML defaults but must still resolve from
// the environment
var secretKeys = []string{
	"backend.api_key",
	"backend.model",
	"backend.http_proxy",
	"backend.https_proxy",
	"cache.redis_password",
	"http.http_proxy",
	"http.https_proxy",
}

// registerDefaults makes every config key known to viper so that
// AutomaticEnv overrides reach Unmarshal
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults(v, "", tree)

	for _, key := range secretKeys {
		_ = v.BindEnv(key)
	}
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, val := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, full, sub)
			continue
		}
		v.SetDefault(full, val)
	}
}

// loadConfig resolves the effective configuration: flags, then TEXTSENSE_*
// environment, then the config file, then built-in defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// Conventional provider variable
	if cfg.Backend.APIKey == "" && strings.EqualFold(cfg.Backend.Provider, "openai") {
		cfg.Backend.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if _, ok := model.ParseMode(cfg.Detect.Mode); !ok {
		return nil, fmt.Errorf("%w: %q in detect.mode", model.ErrInvalidMode, cfg.Detect.Mode)
	}
	return cfg, nil
}
