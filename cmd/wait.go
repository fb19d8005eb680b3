package cmd

import (
	"fmt"

	"github.com/mj1618/uisync/internal/driver"
	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/search"
	"github.com/mj1618/uisync/internal/wait"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a UI condition to be met",
	Long: `Wait until a screen, text, node, overlay or expression condition holds, or
the timeout is reached. Exactly one condition flag is required.

Expressions see screen, stack, nodes, visible and overlay, plus the
functions exists(pattern) and count(type).

Examples:
  uisync wait --scene app.yaml --for-screen DetailActivity
  uisync wait --scene app.yaml --for-text "Saved" --hard-stop --timeout 30s
  uisync wait --scene app.yaml --for-text "Loading" --gone
  uisync wait --scene app.yaml --overlay --gone
  uisync wait --scene app.yaml --expr 'screen.type == "Main" && count("Button") > 2'`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("for-screen", "", "Wait for a foreground screen by identity or type")
	waitCmd.Flags().String("for-text", "", "Wait for a node matching this text pattern")
	waitCmd.Flags().String("for-type", "", "Wait for a shown node of this type or alias; a comma-separated list waits for any")
	waitCmd.Flags().String("for-id", "", "Wait for a node with this resource id or identity")
	waitCmd.Flags().String("expr", "", "Wait for this boolean expression to hold")
	waitCmd.Flags().Bool("overlay", false, "Wait for a dialog or popup to open")
	waitCmd.Flags().Bool("gone", false, "Invert --for-text or --overlay: wait until it is no longer present")
	waitCmd.Flags().Int("expected", 1, "Distinct --for-text matches required")
	waitCmd.Flags().Int("index", 0, "Zero-based index for --for-type and --for-id")
	waitCmd.Flags().Bool("hard-stop", false, "Retry scroll passes until the deadline inside one search")
	waitCmd.Flags().Bool("no-scroll", false, "Do not scroll to reveal more nodes")
	waitCmd.Flags().Duration("timeout", 0, "Max time to wait (0 = default for the condition)")
}

func runWait(cmd *cobra.Command, args []string) error {
	forScreen, _ := cmd.Flags().GetString("for-screen")
	forText, _ := cmd.Flags().GetString("for-text")
	forType, _ := cmd.Flags().GetString("for-type")
	forID, _ := cmd.Flags().GetString("for-id")
	expr, _ := cmd.Flags().GetString("expr")
	overlay, _ := cmd.Flags().GetBool("overlay")
	gone, _ := cmd.Flags().GetBool("gone")
	expected, _ := cmd.Flags().GetInt("expected")
	index, _ := cmd.Flags().GetInt("index")
	hardStop, _ := cmd.Flags().GetBool("hard-stop")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	set := 0
	for _, on := range []bool{forScreen != "", forText != "", forType != "", forID != "", expr != "", overlay} {
		if on {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("specify exactly one condition: --for-screen, --for-text, --for-type, --for-id, --expr, or --overlay")
	}
	if gone && forText == "" && !overlay {
		return fmt.Errorf("--gone applies to --for-text and --overlay only")
	}

	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	scroll := scrollFlag(cmd)
	var (
		ok    bool
		node  *model.Node
		match string
	)
	start := d.Now()

	switch {
	case forScreen != "":
		match = "screen " + forScreen
		ok = d.WaitForScreen(forScreen, timeout)
	case forText != "" && gone:
		match = "text gone " + forText
		ok = d.WaitFor(textGone(d, forText), timeout)
	case forText != "":
		match = "text " + forText
		node = d.WaitForText(driver.TextQuery{
			Pattern:  forText,
			Expected: expected,
			Timeout:  timeout,
			Scroll:   scroll,
			HardStop: hardStop,
		})
		ok = node != nil
	case len(splitList(forType)) > 1:
		match = "any of " + forType
		ok = d.WaitForAnyType(splitList(forType))
	case forType != "":
		match = fmt.Sprintf("node %s[%d]", forType, index)
		node = d.FindNode(driver.NodeQuery{Type: forType, Index: index, Timeout: timeout, Scroll: scroll})
		ok = node != nil
	case forID != "":
		match = "id " + forID
		node = d.FindNode(driver.NodeQuery{ID: forID, Index: index, Timeout: timeout, Scroll: scroll})
		ok = node != nil
	case expr != "":
		match = expr
		ok, err = d.WaitForExpression(expr, timeout)
		if err != nil {
			return err
		}
	case overlay:
		match = "overlay open"
		if gone {
			match = "overlay closed"
		}
		ok = d.WaitForOverlay(!gone, timeout)
	}

	result := output.WaitResult{
		OK:       ok,
		Action:   "wait",
		Elapsed:  output.Elapsed(d.Now().Sub(start)),
		Match:    match,
		TimedOut: !ok,
		Node:     output.FlatPtr(node),
	}
	if err := printResult(cmd, result); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("timed out after %s waiting for %s", result.Elapsed, match)
	}
	return nil
}

// textGone holds once no extracted node matches pattern.
func textGone(d *driver.Driver, pattern string) wait.Condition {
	p := search.Compile(pattern)
	return wait.ConditionFunc(func() bool {
		for _, n := range d.AllNodes(false).Nodes {
			if p.MatchNode(n) {
				return false
			}
		}
		return true
	})
}
