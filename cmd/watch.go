package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mj1618/uisync/internal/model"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for UI changes and stream diffs as JSONL",
	Long: `Repeatedly extract the foreground tree and emit changes (added, removed,
changed nodes) as JSONL to stdout. No output is emitted while the UI is stable.

With --by-hash, nodes are matched by a hash of their type, labels and path
instead of identity, which tolerates backends that recycle identities.

Output is always JSONL regardless of the --format flag.

Use Ctrl+C or --duration to stop watching.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", time.Second, "Polling interval")
	watchCmd.Flags().Duration("duration", 0, "Max time to watch (0 = until Ctrl+C)")
	watchCmd.Flags().Bool("all", false, "Include nodes that are not sufficiently shown")
	watchCmd.Flags().Bool("ignore-bounds", false, "Ignore node position changes")
	watchCmd.Flags().Bool("ignore-shown", false, "Ignore visibility changes")
	watchCmd.Flags().Bool("by-hash", false, "Match nodes by content hash and emit one diff event per change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	duration, _ := cmd.Flags().GetDuration("duration")
	all, _ := cmd.Flags().GetBool("all")
	ignoreBounds, _ := cmd.Flags().GetBool("ignore-bounds")
	ignoreShown, _ := cmd.Flags().GetBool("ignore-shown")
	byHash, _ := cmd.Flags().GetBool("by-hash")

	if interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	var ignored []string
	if ignoreBounds {
		ignored = append(ignored, "bounds")
	}
	if ignoreShown {
		ignored = append(ignored, "shown")
	}

	d, logger, err := newDriver(cmd)
	if err != nil {
		return err
	}
	defer closeDriver(d, logger)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)

	start := d.Now()
	deadline := start.Add(duration)

	// Initial extraction to establish baseline
	snap := d.AllNodes(!all)
	prevFlat := model.FlattenNodes(snap.Nodes)
	screen, _ := d.PeekScreen()

	enc.Encode(map[string]interface{}{
		"type":     "snapshot",
		"ts":       snap.TakenAt.Unix(),
		"snapshot": snap.ID,
		"screen":   screen.ID,
		"count":    len(prevFlat),
	})

	eventCount := 0
	prevScreen := screen.ID

	for {
		if duration > 0 && !d.Now().Before(deadline) {
			break
		}

		d.SleepFor(interval)

		if screen, _ := d.PeekScreen(); screen.ID != prevScreen {
			enc.Encode(map[string]interface{}{
				"type":   "screen",
				"ts":     d.Now().Unix(),
				"from":   prevScreen,
				"screen": screen.ID,
			})
			prevScreen = screen.ID
			eventCount++
		}

		snap := d.AllNodes(!all)
		currFlat := model.FlattenNodes(snap.Nodes)
		if byHash {
			diff := model.DiffByHash(prevFlat, currFlat)
			if len(diff.Added)+len(diff.Removed)+len(diff.Changed) > 0 {
				enc.Encode(map[string]interface{}{
					"type": "diff",
					"ts":   snap.TakenAt.Unix(),
					"diff": diff,
				})
				eventCount++
			}
			prevFlat = currFlat
			continue
		}
		changes := model.IgnoreFields(model.DiffNodes(prevFlat, currFlat, snap.TakenAt), ignored...)
		for _, change := range changes {
			enc.Encode(change)
			eventCount++
		}

		prevFlat = currFlat
	}

	enc.Encode(map[string]interface{}{
		"type":    "done",
		"ts":      d.Now().Unix(),
		"elapsed": fmt.Sprintf("%.1fs", d.Now().Sub(start).Seconds()),
		"events":  eventCount,
	})
	return nil
}
