package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doppelkit/doppel/pkg/doppel/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "doppel [path]",
		Short: "Find duplicate files by content",
		Long: `Doppel scans a directory tree for files with identical content and
reports them as duplicate groups, largest first.

Candidates are narrowed by size before any content is read, so most files
are never hashed. Confirmed groups share an exact byte size and a full
content digest.

Examples:
  doppel                        # Scan current directory
  doppel ~/Pictures             # Scan a specific directory
  doppel -s 1M ~/Downloads      # Ignore files smaller than 1 MiB
  doppel -o json . | jq .       # Machine-readable output
  doppel -r ext:jpg,png ~/Pics  # Only report groups containing images
  doppel config show            # Show configuration
  doppel cache clear            # Drop all cached digests`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/doppel/config.yaml)")
	rootCmd.PersistentFlags().StringP("min-size", "s", "", "minimum file size (e.g., 4K, 1M)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override digest worker count (0=auto)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().IntP("max-depth", "d", 0, "maximum directory depth (0=unlimited)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (pretty, plain, json, jsonl, yaml)")
	rootCmd.PersistentFlags().StringSliceP("rule", "r", nil, "report rules, e.g. ext:jpg or older-than:30d")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass digest cache, hash every candidate")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("min_size", rootCmd.PersistentFlags().Lookup("min-size"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("max_depth", rootCmd.PersistentFlags().Lookup("max-depth"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("rules", rootCmd.PersistentFlags().Lookup("rule"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "doppel"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "doppel"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("DOPPEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("min_size", config.DefaultMinSize)
	viper.SetDefault("default_path", config.DefaultPath)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("output", config.DefaultOutput)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("logging.level", "info")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
