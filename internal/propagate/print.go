package propagate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintPretty renders stages as a human-readable numbered list, coloring
// stage headers the way the teacher colors status lines in internal/ui.
func PrintPretty(w io.Writer, stages []Stage) {
	if len(stages) == 0 {
		fmt.Fprintln(w, color.YellowString("nothing to propagate"))
		return
	}
	for i, stage := range stages {
		fmt.Fprintln(w, color.CyanString("stage %d:", i))
		for _, e := range stage {
			fmt.Fprintf(w, "  %s %s\n", e.Repo, color.New(color.Faint).Sprintf("(needs %v)", e.Dependencies))
		}
	}
}

// PrintJSON renders stages as the machine-readable form consumed by `lal
// propagate -j`.
func PrintJSON(w io.Writer, stages []Stage) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stages)
}
