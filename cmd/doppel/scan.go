package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doppelkit/doppel/pkg/doppel/cache"
	"github.com/doppelkit/doppel/pkg/doppel/config"
	"github.com/doppelkit/doppel/pkg/doppel/detector"
	"github.com/doppelkit/doppel/pkg/doppel/logging"
	"github.com/doppelkit/doppel/pkg/doppel/output"
	"github.com/doppelkit/doppel/pkg/doppel/rules"
	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// runScan is the main scan command handler.
func runScan(_ *cobra.Command, args []string) error {
	// Determine scan path
	scanPath := "."
	if len(args) > 0 {
		scanPath = args[0]
	} else if defaultPath := viper.GetString("default_path"); defaultPath != "" {
		scanPath = defaultPath
	}

	// Expand ~ in path
	expandedPath, err := config.ExpandPath(scanPath)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Verify path exists and is accessible
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", absPath)
		}
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	// Parse minimum size
	minSizeStr := viper.GetString("min_size")
	if minSizeStr == "" {
		minSizeStr = config.DefaultMinSize
	}

	minSize, err := types.ParseSize(minSizeStr)
	if err != nil {
		return fmt.Errorf("invalid minimum size %q: %w", minSizeStr, err)
	}

	// Parse report rules
	ruleSet, err := rules.ParseAll(viper.GetStringSlice("rules"))
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	// Get output formatter
	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = config.DefaultOutput
	}
	formatter, err := output.Get(outFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
	}

	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Close()
	logger := logging.Get("cli")

	// Open digest cache unless disabled
	var digestCache *cache.Cache
	if viper.GetBool("cache.enabled") && !viper.GetBool("no_cache") {
		cachePath := viper.GetString("cache.path")
		if cachePath == "" {
			cachePath = cache.DefaultPath()
		}
		digestCache, err = cache.Open(cachePath)
		if err != nil {
			// A broken cache must never block a scan.
			logger.Warn("digest cache unavailable", "path", cachePath, "error", err)
			printVerbose("Digest cache unavailable: %v", err)
			digestCache = nil
		} else {
			defer digestCache.Close()
		}
	}

	opts := detector.Options{
		Root:     absPath,
		MinSize:  minSize,
		MaxDepth: viper.GetInt("max_depth"),
		Exclude:  viper.GetStringSlice("exclude"),
		Workers:  viper.GetInt("workers"),
		Cache:    digestCache,
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping scan...")
		cancel()
	}()

	if !getQuiet() {
		printInfo("Scanning %s for duplicate files >= %s...", absPath, types.FormatSize(minSize))
	}
	logger.Info("scan started", "root", absPath, "min_size", minSize)

	session := detector.Start(ctx, opts)
	printVerbose("Session %s", session.ID())

	result, err := session.Wait()
	if err != nil {
		if errors.Is(err, detector.ErrCancelled) {
			printInfo("Scan cancelled")
			logger.Info("scan cancelled", "session", session.ID())
			return nil
		}
		logger.Error("scan failed", "session", session.ID(), "error", err)
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.Info("scan finished",
		"session", session.ID(),
		"groups", len(result.Groups),
		"files_scanned", result.FilesScanned,
		"files_hashed", result.FilesHashed,
		"elapsed", result.Elapsed)

	// Rules narrow which groups are shown; grouping itself is untouched.
	result.Groups = ruleSet.FilterGroups(result.Groups)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, output.Build(absPath, result)); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}

// initLogging configures file logging from the loaded configuration.
func initLogging() error {
	cfg := logging.Config{
		Level: viper.GetString("logging.level"),
		Path:  viper.GetString("logging.path"),
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if components := viper.GetStringMapString("logging.components"); len(components) > 0 {
		cfg.Components = components
	}
	if getVerbose() {
		cfg.ConsoleLevel = "debug"
	}
	return logging.Init(cfg)
}
