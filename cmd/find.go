package cmd

import (
	"fmt"
	"strings"

	"github.com/mj1618/uisync/internal/driver"
	"github.com/mj1618/uisync/internal/output"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Wait for one node by resource id, text pattern, or type and index",
	Long: `Find a single node, scrolling the foreground content when needed.

--ref takes precedence over --id, --id over --pattern, and --pattern over a
bare --type lookup. Refs are the path identifiers printed by the nodes command.
Patterns are regular expressions; an invalid expression is matched literally.

Examples:
  uisync find --scene app.yaml --pattern "^Sign in$"
  uisync find --scene app.yaml --type TextView --index 3
  uisync find --scene app.yaml --id next_button --timeout 2s`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().String("pattern", "", "Text pattern matched against text, error and hint")
	findCmd.Flags().String("type", "", "Node type or alias")
	findCmd.Flags().Int("index", 0, "Zero-based index among distinct matches")
	findCmd.Flags().String("id", "", "Resource id or node identity")
	findCmd.Flags().String("ref", "", `Node ref from the nodes output (e.g. "list/apple")`)
	findCmd.Flags().Duration("timeout", 0, "Max time to wait (0 = small timeout from config)")
	findCmd.Flags().Bool("no-scroll", false, "Do not scroll to reveal more nodes")
	findCmd.Flags().Bool("visible", false, "Only consider sufficiently shown nodes")
	findCmd.Flags().Bool("shown", false, "Also wait until the match is sufficiently shown")
}

func runFind(cmd *cobra.Command, args []string) error {
	q := driver.NodeQuery{Scroll: scrollFlag(cmd)}
	q.Pattern, _ = cmd.Flags().GetString("pattern")
	q.Type, _ = cmd.Flags().GetString("type")
	q.Index, _ = cmd.Flags().GetInt("index")
	q.ID, _ = cmd.Flags().GetString("id")
	q.Ref, _ = cmd.Flags().GetString("ref")
	q.Timeout, _ = cmd.Flags().GetDuration("timeout")
	q.OnlyVisible, _ = cmd.Flags().GetBool("visible")
	q.Shown, _ = cmd.Flags().GetBool("shown")

	if q.Pattern == "" && q.Type == "" && q.ID == "" && q.Ref == "" {
		return fmt.Errorf("specify at least one of --pattern, --type, --id, or --ref")
	}

	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	start := d.Now()
	n := d.FindNode(q)
	result := output.FindResult{
		OK:      n != nil,
		Query:   describeQuery(q),
		Elapsed: output.Elapsed(d.Now().Sub(start)),
		Node:    output.FlatPtr(n),
	}
	if err := printResult(cmd, result); err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("node not found: %s", result.Query)
	}
	return nil
}

func describeQuery(q driver.NodeQuery) string {
	var parts []string
	if q.Ref != "" {
		parts = append(parts, "ref="+q.Ref)
	}
	if q.ID != "" {
		parts = append(parts, "id="+q.ID)
	}
	if q.Pattern != "" {
		parts = append(parts, "pattern="+q.Pattern)
	}
	if q.Type != "" {
		parts = append(parts, "type="+q.Type)
	}
	if q.Index > 0 {
		parts = append(parts, fmt.Sprintf("index=%d", q.Index))
	}
	return strings.Join(parts, " ")
}
