package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedisherpa/sphereai/internal/llm"
)

const synthesizerSystemPrompt = `You are the Master Synthesizer in the Sphere multi-agent analysis system.

Your role is to:
1. Synthesize insights from multiple agent perspectives into a coherent analysis
2. Identify key themes, agreements, and productive tensions
3. Extract actionable recommendations
4. Present a clear, well-structured final report

Format your response as a professional analysis report with:
- Executive Summary (2-3 sentences)
- Key Insights (numbered list of the most important findings)
- Synthesis (how the perspectives connect and inform each other)
- Recommendations (concrete next steps or actions)
- Areas for Further Investigation (optional)
`

// Synthesize folds every successful step's output into one report body. It
// never fails: when the synthesis call itself goes down, it falls back to a
// deterministic concatenation of the raw outputs with an explicit notice.
func (p *Pipeline) Synthesize(ctx context.Context, query, personaName string, results []AgentResult, trail *Trail) string {
	succeeded := make([]AgentResult, 0, len(results))
	for _, r := range results {
		if r.OK {
			succeeded = append(succeeded, r)
		}
	}

	trail.Recordf(EventSynthesisStart, "Combining %d perspectives", len(succeeded))

	req := llm.Request{
		System:      synthesizerSystemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: synthesisUserMessage(query, personaName, succeeded)}},
		Temperature: p.SynthesisTemperature,
	}

	synthesis, err := llm.CompleteWithRetry(ctx, p.Provider, req, p.MaxAttempts, p.Logger)
	if err != nil {
		trail.Record(EventSynthesisFallback, "Using raw insights")
		return fallbackSynthesis(query, personaName, succeeded)
	}

	trail.Record(EventSynthesisComplete, "")
	return synthesis
}

func synthesisUserMessage(query, personaName string, succeeded []AgentResult) string {
	var insights strings.Builder
	for _, r := range succeeded {
		fmt.Fprintf(&insights, "### %s Perspective\n%s\n\n---\n\n", r.Role, r.Output)
	}

	return fmt.Sprintf(`## Original Query
%s

## Agent Perspectives (%d agents from '%s' persona)

%s
Please synthesize these perspectives into a comprehensive analysis report. Identify the key themes, areas of agreement, productive tensions, and actionable recommendations.`,
		query, len(succeeded), personaName, insights.String())
}

// fallbackSynthesis is total over its inputs: whatever happened upstream, it
// produces a well-formed body labeled with the failure notice.
func fallbackSynthesis(query, personaName string, succeeded []AgentResult) string {
	var sb strings.Builder
	sb.WriteString("## Analysis Report\n\n")
	fmt.Fprintf(&sb, "**Query:** %s\n", query)
	fmt.Fprintf(&sb, "**Persona:** %s\n", personaName)
	fmt.Fprintf(&sb, "**Agents:** %d\n\n---\n", len(succeeded))

	for _, r := range succeeded {
		fmt.Fprintf(&sb, "\n### %s\n%s\n", r.Role, r.Output)
	}

	sb.WriteString("\n---\n\n*Note: Automated synthesis failed. Raw agent insights shown above.*\n")
	return sb.String()
}
