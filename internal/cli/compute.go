package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/crawlytics/dashgeom/pkg/engine"
	"github.com/crawlytics/dashgeom/pkg/io"
	"github.com/crawlytics/dashgeom/pkg/policy"
)

// computeCommand creates the compute command for turning snapshots into
// chart geometry.
func (c *CLI) computeCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		chartsStr  string
		policyFile string
	)
	opts := engine.Options{
		Width:  engine.DefaultWidth,
		Height: engine.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "compute [snapshot.json]",
		Short: "Compute chart layouts from a metrics snapshot",
		Long: `Compute chart layouts from a pipeline metrics snapshot.

The compute command takes a snapshot file (JSON or YAML) as captured from the
collection pipeline's statistics endpoint and computes renderer-ready chart
geometry for the requested frame. The output is a layout.json document (the
same format the HTTP API returns) that the dashboard renderer paints directly.

When given a directory, an interactive picker lists the snapshot files found
inside it.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Charts = parseCharts(chartsStr)
			return c.runCompute(cmd.Context(), args[0], opts, output, policyFile, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached result exists")

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().StringVarP(&chartsStr, "charts", "t", "", "chart kind(s): sankey, ridge, bullet (comma-separated, default all)")
	cmd.Flags().StringVar(&policyFile, "policy", "", "TOML policy file overriding the built-in layout constants")

	return cmd
}

// runCompute loads the snapshot, computes the layouts, and writes output.
func (c *CLI) runCompute(ctx context.Context, input string, opts engine.Options, output, policyFile string, noCache bool) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat %s: %w", input, err)
	}
	if info.IsDir() {
		selected, err := c.pickSnapshot(ctx, input)
		if err != nil {
			return err
		}
		if selected == "" {
			printDetail("No selection made")
			return nil
		}
		input = selected
	}

	snap, err := io.ImportSnapshot(input)
	if err != nil {
		return err
	}

	if policyFile != "" {
		p, err := policy.LoadFile(policyFile)
		if err != nil {
			return fmt.Errorf("load policy %s: %w", policyFile, err)
		}
		opts.Policy = &p
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layouts...")
	spinner.Start()

	result, err := runner.Compute(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Computation failed")
		return fmt.Errorf("compute layouts: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if result.Null() {
		printWarning("Frame %gx%g has no area, nothing to lay out", opts.Width, opts.Height)
		return nil
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := io.ExportResult(result, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.Sources, countCharts(result), result.CacheInfo.ResultHit)
	printDetail("Snapshot %s", shortHash(result.SnapshotHash))
	printNewline()
	printNextStep("Serve the dashboard API", appName+" serve")

	return nil
}

// =============================================================================
// Snapshot Selection
// =============================================================================

// snapshotExts are the file extensions the picker treats as snapshots.
var snapshotExts = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// pickSnapshot scans dir and runs the interactive snapshot picker. It returns
// the selected path, or "" when the user quit without selecting.
func (c *CLI) pickSnapshot(ctx context.Context, dir string) (string, error) {
	logger := loggerFromContext(ctx)
	logger.Infof("Scanning %s for snapshots", dir)

	prog := newProgress(logger)
	choices, err := listSnapshots(dir)
	if err != nil {
		return "", err
	}
	if len(choices) == 0 {
		printError("No snapshot files found")
		return "", fmt.Errorf("no snapshot files in %s", dir)
	}
	prog.done(fmt.Sprintf("Found %d snapshot files", len(choices)))
	printNewline()

	m := NewSnapshotListModel(choices)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	fm, ok := finalModel.(SnapshotListModel)
	if !ok || fm.Selected == nil {
		return "", nil
	}
	return fm.Selected.Path, nil
}

// listSnapshots collects the snapshot files directly inside dir, newest
// capture first. Files that fail to decode are kept with their error so the
// picker can show them dimmed.
func listSnapshots(dir string) ([]snapshotChoice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var choices []snapshotChoice
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !snapshotExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		// Layout outputs from earlier runs live next to their snapshots.
		if strings.HasSuffix(name, ".layout.json") {
			continue
		}

		ch := snapshotChoice{Path: filepath.Join(dir, name), Name: name}
		snap, err := io.ImportSnapshot(ch.Path)
		if err != nil {
			ch.Err = err
		} else {
			ch.Sources = len(snap.Sources())
			ch.Records = len(snap.Records)
			ch.CapturedAt = snap.CapturedAt
		}
		choices = append(choices, ch)
	}

	slices.SortFunc(choices, func(a, b snapshotChoice) int {
		return b.CapturedAt.Compare(a.CapturedAt)
	})
	return choices, nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// countCharts returns how many chart geometries the result carries.
func countCharts(res *engine.Result) int {
	n := 0
	if res.Sankey != nil {
		n++
	}
	if res.Ridge != nil {
		n++
	}
	if res.Bullet != nil {
		n++
	}
	return n
}

// shortHash abbreviates a snapshot hash for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
