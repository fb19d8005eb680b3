package cmd

import (
	"strings"

	"github.com/mj1618/uisync/internal/model"
	"github.com/mj1618/uisync/internal/output"
	"github.com/mj1618/uisync/internal/platform"
	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Extract the UI tree of the foreground screen",
	Long: `Extract the nodes of the foreground screen and its newest overlay, flattened
in document order. By default only sufficiently shown nodes are listed.

Examples:
  uisync nodes --scene app.yaml
  uisync nodes --scene app.yaml --type btn,input --format text
  uisync nodes --scene app.yaml --text "sign in" --all`,
	RunE: runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)
	nodesCmd.Flags().Bool("all", false, "Include nodes that are not sufficiently shown")
	nodesCmd.Flags().String("type", "", `Comma-separated types or aliases (e.g. "btn,input")`)
	nodesCmd.Flags().String("text", "", "Keep nodes whose text, label, hint or error contains this")
	nodesCmd.Flags().String("bbox", "", "Keep nodes intersecting x,y,w,h")
	nodesCmd.Flags().Bool("prune", false, "Drop layout containers with no text")
}

func runNodes(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	typesStr, _ := cmd.Flags().GetString("type")
	text, _ := cmd.Flags().GetString("text")
	bboxStr, _ := cmd.Flags().GetString("bbox")
	prune, _ := cmd.Flags().GetBool("prune")

	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	screen, _ := d.PeekScreen()
	snap := d.AllNodes(!all)
	snap.Nodes = model.FilterByType(snap.Nodes, model.ExpandTypes(splitList(typesStr)))
	snap.Nodes = model.FilterByText(snap.Nodes, text)
	if bboxStr != "" {
		bbox, err := platform.ParseBBox(bboxStr)
		if err != nil {
			return err
		}
		snap.Nodes = model.FilterByBounds(snap.Nodes, bbox.Array())
	}

	result := output.NewNodesResult(snap, screen.ID)
	if prune {
		result.Nodes = model.PruneEmptyLayouts(result.Nodes)
		result.Count = len(result.Nodes)
	}
	return printResult(cmd, result)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
