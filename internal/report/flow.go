package report

import (
	"fmt"

	"triage-backend/internal/inference"
)

// Node kinds drive styling on the client.
const (
	NodeInput     = "input"
	NodeStage     = "stage"
	NodeCondition = "condition"
	NodeSymptom   = "symptom"
	NodeTreatment = "treatment"
	NodeFinal     = "final"
)

type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the reasoning flow shown alongside the report. Every node is
// reachable from the input node regardless of which stages are present.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (g *Graph) addNode(id, label, kind string) string {
	g.Nodes = append(g.Nodes, Node{ID: id, Label: label, Kind: kind})
	return id
}

func (g *Graph) addEdge(from, to string) {
	g.Edges = append(g.Edges, Edge{From: from, To: to})
}

// buildFlow chains input through whichever stages exist. Missing stages are
// routed around so the graph stays connected.
func buildFlow(a *inference.Analysis, rows []ConditionRow, finalText string) Graph {
	var g Graph
	prev := g.addNode("input", "User Input", NodeInput)

	if a != nil && a.InitialDiagnosis != "" {
		diag := g.addNode("diagnosis", "Initial Diagnosis", NodeStage)
		g.addEdge(prev, diag)
		prev = diag
	}

	var leaves []string
	if len(rows) > 0 {
		header := g.addNode("conditions", "Similar Conditions", NodeStage)
		g.addEdge(prev, header)
		for i, row := range rows {
			cond := g.addNode(fmt.Sprintf("condition-%d", i), row.Condition, NodeCondition)
			symp := g.addNode(fmt.Sprintf("symptoms-%d", i), row.Symptoms, NodeSymptom)
			treat := g.addNode(fmt.Sprintf("treatment-%d", i), row.Treatment, NodeTreatment)
			g.addEdge(header, cond)
			g.addEdge(cond, symp)
			g.addEdge(symp, treat)
			leaves = append(leaves, treat)
		}
	} else {
		leaves = []string{prev}
	}

	if finalText != "" {
		final := g.addNode("final", "Final Analysis", NodeFinal)
		for _, leaf := range leaves {
			g.addEdge(leaf, final)
		}
	}
	return g
}
