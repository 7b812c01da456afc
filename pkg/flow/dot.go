package flow

import (
	"bytes"
	"fmt"
)

// ToDOT renders the flow model as a Graphviz DOT digraph for development
// inspection. The dashboard never sees this output; it exists so a developer
// can eyeball an aggregation with standard graph tooling.
func ToDOT(m Model) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	stages := m.StageValues()
	for _, sv := range stages {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", string(sv.Stage), fmt.Sprintf("%s\n%d", sv.Stage.Label(), sv.Value))
	}

	buf.WriteString("\n")
	for i := 0; i < len(stages)-1; i++ {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
			string(stages[i].Stage), string(stages[i+1].Stage), fmt.Sprintf("%d", stages[i+1].Value))
	}

	if m.TotalFiltered() > 0 {
		label := fmt.Sprintf("filtered\nduplicate: %d\nquality: %d\nother: %d",
			m.FilteredDuplicate, m.FilteredQuality, m.FilteredOther)
		fmt.Fprintf(&buf, "\n  \"filtered\" [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", label)
		fmt.Fprintf(&buf, "  %q -> \"filtered\" [style=dashed];\n", string(StageQualityChecked))
	}

	buf.WriteString("}\n")
	return buf.String()
}
