package cmd

import (
	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/spf13/cobra"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Show the foreground screen",
	Long: `Resolve the foreground screen. Unless --peek is given, the command pauses first
so a transition in progress can settle.`,
	RunE: runScreen,
}

var screensCmd = &cobra.Command{
	Use:   "screens",
	Short: "List the live screen stack, bottom first",
	RunE:  runScreens,
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the registered backends",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(cmd, struct {
			Backends []string `yaml:"backends" json:"backends"`
		}{platform.Backends()})
	},
}

func init() {
	rootCmd.AddCommand(screenCmd, screensCmd, backendsCmd)
	screenCmd.Flags().Bool("peek", false, "Do not pause before resolving")
}

func runScreen(cmd *cobra.Command, args []string) error {
	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	peek, _ := cmd.Flags().GetBool("peek")
	screen, ok := d.PeekScreen()
	if !peek {
		screen, ok = d.CurrentScreen()
	}
	result := output.ScreenResult{Found: ok}
	if ok {
		result.Screen = &screen
		result.Overlay = d.IsOverlayOpen()
	}
	return printResult(cmd, result)
}

func runScreens(cmd *cobra.Command, args []string) error {
	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	d.PeekScreen()
	return printResult(cmd, output.ScreensResult{Screens: d.Screens()})
}
