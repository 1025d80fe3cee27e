// Package report formats benchmark session results into summary tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/voxfall/colbench/harness"
)

// Generate writes a markdown summary for the given session result.
func Generate(w io.Writer, r harness.Result) error {
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Backend: **%s**, %d code rewrites\n", r.Backend, r.Rewrites)
	fmt.Fprintln(w)

	// Per-mode table.
	fmt.Fprintln(w, "| Mode | Frames | Draw Calls | Total | Avg / Frame |")
	fmt.Fprintln(w, "|------|--------|------------|-------|-------------|")

	for _, m := range []harness.ModeResult{r.Compiled, r.Reference} {
		fmt.Fprintf(w, "| %s | %d | %d | %s | %s |\n",
			m.Mode,
			m.Frames,
			m.DrawCalls,
			formatMs(m.TotalMs),
			avgCell(m),
		)
	}

	fmt.Fprintln(w)

	if r.Speedup > 0 {
		fmt.Fprintf(w, "Speedup (BRANCH avg / JIT avg): **%.2fx**\n", r.Speedup)
	} else {
		fmt.Fprintln(w, "Speedup: not measurable (one mode recorded no frames)")
	}

	if r.FallbackCalls > 0 {
		fmt.Fprintf(w, "Fallback calls on the reference path: %d\n", r.FallbackCalls)
	}

	return nil
}

// GenerateJSON writes the result as indented JSON to w.
func GenerateJSON(w io.Writer, r harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}

func avgCell(m harness.ModeResult) string {
	if m.Frames == 0 {
		return "-"
	}

	return formatMs(m.AvgFrameMs)
}

func formatMs(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.2fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}
