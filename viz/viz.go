// Package viz exports machine definitions for inspection: Graphviz DOT for
// diagrams and indented JSON for tooling. Definitions are pure data, so a
// machine can be visualized without constructing an interpreter.
package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/corvid-labs/fsmkit"
)

// ExportDOT renders the definition as Graphviz DOT source. The current state,
// if non-empty, is highlighted.
func ExportDOT(def fsmkit.Definition, current fsmkit.StateID) string {
	var buf bytes.Buffer
	buf.WriteString("digraph ")
	name := def.ID
	if name == "" {
		name = "machine"
	}
	fmt.Fprintf(&buf, "%q {\n", name)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	buf.WriteString("  edge [fontsize=9];\n")

	for _, id := range sortedStates(def) {
		attrs := ""
		if id == current {
			attrs = ` style="rounded,filled" fillcolor=lightgreen`
		} else if id == def.Initial {
			attrs = ` peripheries=2`
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", string(id), string(id), attrs)
	}

	for _, e := range collectEdges(def) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.from, e.to, e.label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the definition to indented JSON.
func ExportJSON(def fsmkit.Definition) ([]byte, error) {
	return json.MarshalIndent(def, "", "  ")
}

type edge struct {
	from  string
	to    string
	label string
}

// collectEdges flattens all transitions into a stable order.
func collectEdges(def fsmkit.Definition) []edge {
	var edges []edge
	for _, id := range sortedStates(def) {
		node := def.States[id]
		events := make([]fsmkit.EventType, 0, len(node.On))
		for event := range node.On {
			events = append(events, event)
		}
		sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
		for _, event := range events {
			for _, t := range node.On[event] {
				label := string(event)
				if t.Guard != "" {
					label += " [" + string(t.Guard) + "]"
				}
				edges = append(edges, edge{from: string(id), to: string(t.Target), label: label})
			}
		}
	}
	return edges
}

func sortedStates(def fsmkit.Definition) []fsmkit.StateID {
	ids := make([]fsmkit.StateID, 0, len(def.States))
	for id := range def.States {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
