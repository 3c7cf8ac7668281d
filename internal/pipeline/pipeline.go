// Package pipeline runs an ordered sequence of role-specialized analysis
// steps over a shared, growing context, then folds the surviving outputs
// into one synthesis. Execution is strictly sequential: each step must see
// the complete, ordered output of every prior successful step.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedisherpa/sphereai/internal/llm"
	"github.com/jedisherpa/sphereai/internal/persona"
)

// AgentResult is the outcome of one pipeline step, ordered by execution.
type AgentResult struct {
	Role   string
	Output string
	OK     bool
}

// ErrAllAgentsFailed aborts a run in which no step produced output.
var ErrAllAgentsFailed = fmt.Errorf("all agents failed: check your LLM configuration")

// Pipeline executes agent steps against one provider.
type Pipeline struct {
	Provider             llm.Provider
	MaxAttempts          int
	AgentTemperature     float64
	SynthesisTemperature float64
	Logger               *slog.Logger
}

// New returns a pipeline with the standard retry bound and temperatures.
// The synthesis call runs cooler than the exploratory agent calls.
func New(provider llm.Provider, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Provider:             provider,
		MaxAttempts:          2,
		AgentTemperature:     0.7,
		SynthesisTemperature: 0.5,
		Logger:               logger,
	}
}

// Run executes the agents strictly in order. A step failure is recorded in
// the trail and the result list but does not halt the pipeline; later agents
// simply never see the failed step's output. Only a run with zero successful
// steps returns an error.
func (p *Pipeline) Run(ctx context.Context, query, extraContext string, agents []persona.Agent, trail *Trail) ([]AgentResult, error) {
	if len(agents) == 0 {
		trail.Record(EventError, "no agents found in active persona")
		return nil, fmt.Errorf("no agents found in active persona")
	}

	results := make([]AgentResult, 0, len(agents))
	succeeded := 0

	for i, agent := range agents {
		role := agent.Role
		if role == "" {
			role = fmt.Sprintf("Agent%d", i+1)
		}
		trail.Record(EventAgentStart, role)

		req := llm.Request{
			System:      agentSystemPrompt(agent),
			Messages:    []llm.Message{{Role: "user", Content: agentUserMessage(role, query, extraContext, accumulate(results))}},
			Temperature: p.AgentTemperature,
		}

		output, err := llm.CompleteWithRetry(ctx, p.Provider, req, p.MaxAttempts, p.Logger)
		if err != nil {
			trail.Recordf(EventAgentFailed, "%s: %v", role, err)
			results = append(results, AgentResult{Role: role, OK: false})
			continue
		}

		trail.Recordf(EventAgentComplete, "%s (success)", role)
		results = append(results, AgentResult{Role: role, Output: output, OK: true})
		succeeded++
	}

	if succeeded == 0 {
		trail.Record(EventError, ErrAllAgentsFailed.Error())
		return results, ErrAllAgentsFailed
	}
	return results, nil
}

// accumulate renders all prior successful outputs, in order, for the next
// step's prompt. Later agents always see the full history, never a summary.
func accumulate(results []AgentResult) string {
	var sb strings.Builder
	for _, r := range results {
		if !r.OK {
			continue
		}
		sb.WriteString("\n### ")
		sb.WriteString(r.Role)
		sb.WriteString("\n")
		sb.WriteString(r.Output)
		sb.WriteString("\n")
	}
	return sb.String()
}

func agentSystemPrompt(agent persona.Agent) string {
	return fmt.Sprintf(`You are the %s agent in a multi-agent analysis system called Sphere.

Your Perspective: %s

Your Role: %s

Guidelines:
- Provide analysis from your unique perspective
- Be concise but insightful (2-4 paragraphs)
- Focus on aspects others might miss
- Build upon previous insights when relevant
- End with a clear, actionable insight or observation
`, agent.Role, agent.Perspective, agent.Prompt)
}

func agentUserMessage(role, query, extraContext, priorInsights string) string {
	var sb strings.Builder
	sb.WriteString("## Query to Analyze\n")
	sb.WriteString(query)
	sb.WriteString("\n\n")

	if extraContext != "" {
		sb.WriteString("## Additional Context\n")
		sb.WriteString(extraContext)
		sb.WriteString("\n\n")
	}
	if priorInsights != "" {
		sb.WriteString("## Previous Agent Insights\n")
		sb.WriteString(priorInsights)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Please provide your analysis as the %s. Focus on your unique perspective and add value beyond what has already been said.", role)
	return sb.String()
}
