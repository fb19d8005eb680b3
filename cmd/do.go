package cmd

import (
	"fmt"
	"io"

	"github.com/mj1618/uisync/internal/driver"
	"github.com/spf13/cobra"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute multiple steps in a batch",
	Long: `Execute a sequence of steps from a YAML list on stdin.

Each step is a map with one action key. Steps execute sequentially on one
driver, so the screen stack carries over between them. By default execution
stops on the first failure.

Supported steps: find, wait_text, wait_screen, wait_overlay, wait_condition,
check, search, scroll, pop_screen, sleep

Example:
  uisync do --scene app.yaml <<'EOF'
  - find: { pattern: "Sign in" }
  - wait_screen: { name: LoginActivity, timeout: 10s }
  - wait_text: { pattern: "Welcome", hard_stop: true }
  - wait_overlay: { open: false }
  - check: 'count("Button") >= 2'
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop at the first failed step")
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	steps, err := driver.ParseSteps(data)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("no steps provided")
	}

	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	result := d.RunSteps(steps, stopOnError)
	if err := printResult(cmd, result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%d of %d steps completed", result.Completed, result.Steps)
	}
	return nil
}
