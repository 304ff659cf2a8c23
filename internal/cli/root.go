package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/claimgraph/internal/logger"
	"github.com/ppiankov/claimgraph/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const version = "claimgraph v0.1.0"

var (
	cfgFile string
	verbose bool
	logMode string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimgraph",
	Short: "Claimgraph - evidence relationship graphs for scientific claims",
	Long: `Claimgraph turns claim-verification predictions into one relationship
graph per claim.

It pairs evidence sentences across documents for a second stance pass,
enriches every relevant document with bibliographic metadata, scores
documents and authors by influence, and assembles the claim, document,
evidence and author nodes with their stance, citation and authorship links.

Stages:
  pairs      generate cross-document evidence-pair tasks
  features   aggregate per-claim records with metadata
  graph      build graphs from aggregated records
  run        features and graph in one pass`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of claimgraph.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimgraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log format: development or production (default from config)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.log_mode", rootCmd.PersistentFlags().Lookup("log-mode"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	registerDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.claimgraph")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMGRAPH_*, with nested
	// keys joined by underscores (CLAIMGRAPH_METADATA_API_KEY)
	viper.SetEnvPrefix("CLAIMGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so environment
// variables override keys that no config file sets
func registerDefaults(cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults("", tree)

	// optional keys are omitted from the marshalled defaults
	for _, key := range []string{
		"metadata.api_key", "metadata.http_proxy", "metadata.https_proxy", "metadata.no_proxy",
		"store.neo4j_uri", "store.neo4j_user", "store.neo4j_password", "store.neo4j_database",
		"output.metrics_file",
	} {
		viper.SetDefault(key, "")
	}
}

func setDefaults(prefix string, tree map[string]interface{}) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			setDefaults(key, nested)
			continue
		}
		viper.SetDefault(key, value)
	}
}

// loadConfig resolves the effective configuration: flags, then
// CLAIMGRAPH_* variables, then the config file, then defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if cfg.Metadata.APIKey == "" {
		cfg.Metadata.APIKey = os.Getenv("SS_API_KEY")
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Output.LogMode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
