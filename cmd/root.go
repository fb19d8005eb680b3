package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "uisync",
	Short: "Resolve and wait on the foreground UI of an application",
	Long: `uisync tracks which screen of an application is in the foreground, extracts
its UI tree, finds nodes by text, type or resource id, and waits for screens,
overlays and conditions to settle.

Backends are selected with --backend. The built-in "scene" backend replays a
YAML scene file given with --scene.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("backend", "", "Backend name (default from config: scene)")
	rootCmd.PersistentFlags().String("scene", "", "Scene file for the scene backend")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json, text")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().Bool("log-dev", false, "Human-readable development logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}
