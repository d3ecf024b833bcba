package clustering

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghostlabs/ghost-core/internal/llm"
)

// maxLiftedClusters bounds abstraction lifting to the first 5 surviving
// clusters.
const maxLiftedClusters = 5

// maxSampledMembers bounds how many member sequences are rendered into the
// LLM prompt per cluster.
const maxSampledMembers = 5

// Abstraction is the parsed JSON result of abstraction lifting.
type Abstraction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Confidence  float64                `json:"confidence"`
	Trigger     map[string]interface{} `json:"trigger"`
	Parameters  map[string]interface{} `json:"parameters"`
}

const liftSystemPrompt = `You name recurring user workflows observed from anonymized browser telemetry. Respond with a single JSON object: {"name","description","confidence","trigger","parameters"}. The name must be domain-specific and concrete (e.g. "Weekly Invoice Approval", "Customer Refund Lookup") — never a generic placeholder like "Navigation" or "Data Entry".`

// Lift renders up to maxSampledMembers of a cluster's member sequences and
// asks the LLM to name and describe the workflow they represent. Returns
// nil (no error) on any parse failure so LLM trouble stays isolated to the
// one cluster — callers skip it and move on.
func Lift(ctx context.Context, port llm.Port, c Cluster) (*Abstraction, error) {
	prompt := renderInstances(c)

	resp, err := port.Complete(ctx, llm.SingleTurn(liftSystemPrompt, prompt))
	if err != nil {
		return nil, err
	}

	obj := extractFirstJSONObject(resp.Content)
	if obj == "" {
		return nil, nil
	}

	var a Abstraction
	if err := json.Unmarshal([]byte(obj), &a); err != nil {
		return nil, nil
	}
	return &a, nil
}

func renderInstances(c Cluster) string {
	members := c.Members
	if len(members) > maxSampledMembers {
		members = members[:maxSampledMembers]
	}

	var lines []string
	freq := make(map[string]int)
	for _, m := range members {
		var steps []string
		for _, ev := range m.Events {
			steps = append(steps, fmt.Sprintf("%s (%s)", ev.IntentLabel, ev.EventType))
			freq[string(ev.IntentLabel)]++
		}
		lines = append(lines, strings.Join(steps, " -> "))
	}

	var freqLines []string
	for label, n := range freq {
		freqLines = append(freqLines, fmt.Sprintf("%s: %d", label, n))
	}

	var b strings.Builder
	b.WriteString("Observed instances:\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\nIntent label frequency:\n")
	for _, l := range freqLines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

// extractFirstJSONObject returns the first balanced top-level {...} span in
// s, tolerating surrounding prose, or "" if none is found.
func extractFirstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
