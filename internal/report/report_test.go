package report

import (
	"testing"

	"triage-backend/internal/inference"
)

func analysisFixture(t *testing.T, body string) inference.Result {
	t.Helper()
	res := inference.ParseResult([]byte(body))
	if res.Kind != inference.KindAnalysis {
		t.Fatalf("fixture did not parse as analysis: %s", body)
	}
	return res
}

func TestBuildPlainResponse(t *testing.T) {
	res := inference.ParseResult([]byte(`{"response":"Please add more detail."}`))
	rpt := Build(res)
	if len(rpt.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(rpt.Sections))
	}
	if rpt.Sections[0].Label != "Response" || rpt.Sections[0].Text != "Please add more detail." {
		t.Fatalf("unexpected section: %+v", rpt.Sections[0])
	}
}

func TestBuildMultiSentenceBecomesBullets(t *testing.T) {
	res := analysisFixture(t, `{"analysis":{"initial_diagnosis":"Likely viral. Monitor temperature. Rest well."}}`)
	rpt := Build(res)

	var diag *Section
	for i := range rpt.Sections {
		if rpt.Sections[i].Label == "Initial Diagnosis" {
			diag = &rpt.Sections[i]
		}
	}
	if diag == nil {
		t.Fatalf("missing Initial Diagnosis section")
	}
	if len(diag.Bullets) != 3 {
		t.Fatalf("expected 3 bullets, got %+v", diag.Bullets)
	}
	if diag.Text != "" {
		t.Fatalf("bulleted section must not carry text, got %q", diag.Text)
	}
	if diag.Bullets[1] != "Monitor temperature." {
		t.Fatalf("unexpected bullet order: %+v", diag.Bullets)
	}
}

func TestBuildSingleSentenceStaysText(t *testing.T) {
	res := analysisFixture(t, `{"analysis":{"final_analysis":"Recommend rest and hydration."}}`)
	rpt := Build(res)

	last := rpt.Sections[len(rpt.Sections)-1]
	if last.Label != "Final Analysis" {
		t.Fatalf("expected Final Analysis last, got %q", last.Label)
	}
	if last.Text != "Recommend rest and hydration." || len(last.Bullets) != 0 {
		t.Fatalf("expected plain text section, got %+v", last)
	}
}

func TestBuildSectionOrder(t *testing.T) {
	res := analysisFixture(t, `{"analysis":{
		"initial_diagnosis":"Possible flu.",
		"vectordb_results":"Flu,\"fever,cough\",\"rest,fluids\"",
		"audio_analysis":{"cough_model":{"score":0.7}},
		"typing_analysis":{"tremor":false},
		"final_analysis":"Recommend rest and hydration."}}`)
	rpt := Build(res)

	var labels []string
	for _, s := range rpt.Sections {
		labels = append(labels, s.Label)
	}
	want := []string{
		"Initial Diagnosis",
		"Similar Conditions",
		"Audio Analysis (cough_model)",
		"Typing Analysis",
		"Final Analysis",
	}
	if len(labels) != len(want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("section %d: expected %q, got %q", i, want[i], labels[i])
		}
	}
	if len(rpt.Conditions) != 1 || rpt.Conditions[0].Condition != "Flu" {
		t.Fatalf("expected parsed conditions, got %+v", rpt.Conditions)
	}
}

func TestBuildSkipsAbsentSections(t *testing.T) {
	res := analysisFixture(t, `{"analysis":{"final_analysis":"Rest."}}`)
	rpt := Build(res)
	if len(rpt.Sections) != 1 {
		t.Fatalf("expected only final analysis section, got %+v", rpt.Sections)
	}
}

func TestFlowGraphConnected(t *testing.T) {
	res := analysisFixture(t, `{"analysis":{
		"initial_diagnosis":"Possible flu.",
		"vectordb_results":"Flu,\"fever\",\"rest\"\nCold,\"sneezing\",\"fluids\"",
		"final_analysis":"Recommend rest."}}`)
	rpt := Build(res)

	assertConnected(t, rpt.Flow)
	if len(rpt.Flow.Nodes) != 10 {
		t.Fatalf("expected 10 nodes (input, diagnosis, header, 2 chains, final), got %d", len(rpt.Flow.Nodes))
	}
}

func TestFlowGraphRoutesAroundMissingStages(t *testing.T) {
	// No diagnosis and no conditions. Final connects straight to input.
	res := analysisFixture(t, `{"analysis":{"final_analysis":"Rest."}}`)
	rpt := Build(res)

	assertConnected(t, rpt.Flow)
	if len(rpt.Flow.Nodes) != 2 {
		t.Fatalf("expected input and final only, got %+v", rpt.Flow.Nodes)
	}
	if len(rpt.Flow.Edges) != 1 || rpt.Flow.Edges[0].From != "input" || rpt.Flow.Edges[0].To != "final" {
		t.Fatalf("expected input->final edge, got %+v", rpt.Flow.Edges)
	}
}

func assertConnected(t *testing.T, g Graph) {
	t.Helper()
	adjacent := make(map[string][]string)
	for _, e := range g.Edges {
		adjacent[e.From] = append(adjacent[e.From], e.To)
	}
	seen := map[string]bool{"input": true}
	queue := []string{"input"}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacent[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, n := range g.Nodes {
		if !seen[n.ID] {
			t.Fatalf("node %s unreachable from input", n.ID)
		}
	}
}

func TestModelSectionsCompactJSONValues(t *testing.T) {
	result := inference.ParseResult([]byte(`{"analysis":{
		"audio_analysis":{"cough_model":{ "score" : 0.7 , "label" : "dry" }},
		"typing_analysis":"steady rhythm"
	}}`))

	rep := Build(result)
	byLabel := map[string]string{}
	for _, sec := range rep.Sections {
		byLabel[sec.Label] = sec.Text
	}

	if got := byLabel["Audio Analysis (cough_model)"]; got != `{"score":0.7,"label":"dry"}` {
		t.Fatalf("audio section = %q", got)
	}
	// Plain string values render without surrounding quotes.
	if got := byLabel["Typing Analysis"]; got != "steady rhythm" {
		t.Fatalf("typing section = %q", got)
	}
}
