// Package cli implements the vpc command-line interface.
//
// This package provides commands for assembling visual predictive check
// plots from result bundles, rendering them as SVG or JSON, serving the
// assembly pipeline over HTTP, and managing the artifact cache. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - plot: Assemble a result bundle into a rendered plot
//   - serve: Run the HTTP API for plot assembly and storage
//   - theme: Inspect or scaffold theme files
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/openpmx/vpc/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openpmx/vpc/pkg/buildinfo"
	"github.com/openpmx/vpc/pkg/cache"
	"github.com/openpmx/vpc/pkg/errors"
	"github.com/openpmx/vpc/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "vpc"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "vpc",
		Short:        "vpc assembles visual predictive check plots",
		Long:         `vpc turns aggregated model-validation result bundles into visual predictive check plots: layered comparisons of simulated percentile bands against observed data, faceted by stratification.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.themeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/vpc/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Parsing Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseShow parses repeated --show key=value flags into an overlay map.
// A bare key (no "=") enables the layer.
func parseShow(entries []string) (map[string]bool, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	show := make(map[string]bool, len(entries))
	for _, entry := range entries {
		key, val, found := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errors.New(errors.ErrCodeInvalidShowOption, "empty show option in %q", entry)
		}
		if !found {
			show[key] = true
			continue
		}
		switch strings.TrimSpace(val) {
		case "true", "t", "1", "yes", "on":
			show[key] = true
		case "false", "f", "0", "no", "off":
			show[key] = false
		default:
			return nil, errors.New(errors.ErrCodeInvalidShowOption, "show option %s: %q is not a boolean", key, val)
		}
	}
	return show, nil
}

// outputPath derives the output file path for a format. An explicit output
// wins; otherwise the input name with the format extension is used.
func outputPath(output, input, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return fmt.Sprintf("%s.%s", base, format)
}
