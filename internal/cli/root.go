// internal/cli/root.go
package ragmill

import (
	"fmt"
	"os"
	"strconv"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/ragmill/internal/appconfig"
	"github.com/mwiater/ragmill/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "ragmill",
	Short: "ragmill — retrieval-augmented document ingestion and chat over Ollama",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) If user did NOT set a flag, copy the config value into the flag so
		//    both pflags and viper reflect the same, final value.
		for _, name := range []string{"debug", "hydeMode", "supervised", "summarize"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}

		// 3) Materialize the fully merged configuration into currentConfig
		//    (flags > config > defaults). This gives other packages a stable snapshot.
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return err
		}
		currentConfig = &cfg

		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		if cfg.Debug {
			fmt.Println("Merged configuration:")
			pp.Println(currentConfig)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// --config (defaults to your existing path)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("hydeMode", false, "add a hypothetical-answer retrieval variant to each query")
	rootCmd.PersistentFlags().Bool("supervised", false, "validate each answer with the model before returning it")
	rootCmd.PersistentFlags().Bool("summarize", false, "summarize each segment with the model before embedding")

	// Bind flags to Viper keys (flags override config)
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("hydeMode", rootCmd.PersistentFlags().Lookup("hydeMode"))
	_ = viper.BindPFlag("supervised", rootCmd.PersistentFlags().Lookup("supervised"))
	_ = viper.BindPFlag("summarize", rootCmd.PersistentFlags().Lookup("summarize"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	viper.SetDefault("milvusURL", "http://localhost:19530")
	viper.SetDefault("collection", "rag_text")
	viper.SetDefault("ollamaURL", "http://localhost:11434")
	viper.SetDefault("embeddingModel", "mxbai-embed-large")
	viper.SetDefault("llmModel", "llama3.1:8b")
	viper.SetDefault("embeddingDim", 1024)
	viper.SetDefault("metric", "IP")
	viper.SetDefault("nprobe", 10)
	viper.SetDefault("resultLimit", 5)
	viper.SetDefault("segmentLength", 2000)
	viper.SetDefault("maxRetries", 5)
	viper.SetDefault("personaPrompt", appconfig.DefaultPersonaPrompt)
	viper.SetDefault("summaryPrompt", appconfig.DefaultSummaryPrompt)
	viper.SetDefault("supervisionPrompt", appconfig.DefaultSupervisionPrompt)
	viper.SetDefault("summarize", false)
	viper.SetDefault("hydeMode", false)
	viper.SetDefault("supervised", false)
	viper.SetDefault("watchDir", "ingest")
	viper.SetDefault("readyTimeout", 60)
	viper.SetDefault("timeout", 600)
	viper.SetDefault("logFile", "ragmill.log")
	viper.SetDefault("debug", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}
