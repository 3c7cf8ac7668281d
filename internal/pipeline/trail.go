package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Audit event names, surfaced verbatim in the final report.
const (
	EventAnalysisStarted   = "ANALYSIS_STARTED"
	EventProvider          = "LLM_PROVIDER"
	EventPersonaLoaded     = "PERSONA_LOADED"
	EventAgentStart        = "AGENT_START"
	EventAgentComplete     = "AGENT_COMPLETE"
	EventAgentFailed       = "AGENT_FAILED"
	EventSynthesisStart    = "SYNTHESIS_START"
	EventSynthesisComplete = "SYNTHESIS_COMPLETE"
	EventSynthesisFallback = "SYNTHESIS_FALLBACK"
	EventAnalysisComplete  = "ANALYSIS_COMPLETE"
	EventError             = "ERROR"
)

// Trail is the append-only, timestamped record of pipeline milestones. It is
// owned by a single run and never shared across runs.
type Trail struct {
	lines []string
	now   func() time.Time
}

// NewTrail returns an empty audit trail using wall-clock time.
func NewTrail() *Trail {
	return &Trail{now: time.Now}
}

// Record appends one event line.
func (t *Trail) Record(event, detail string) {
	ts := t.now().UTC().Format("2006-01-02T15:04:05") + "Z"
	if detail == "" {
		t.lines = append(t.lines, fmt.Sprintf("[%s] %s", ts, event))
		return
	}
	t.lines = append(t.lines, fmt.Sprintf("[%s] %s - %s", ts, event, detail))
}

// Recordf appends one event line with a formatted detail.
func (t *Trail) Recordf(event, format string, args ...any) {
	t.Record(event, fmt.Sprintf(format, args...))
}

// Lines returns the recorded events in order.
func (t *Trail) Lines() []string {
	return t.lines
}

// String renders the trail one event per line.
func (t *Trail) String() string {
	return strings.Join(t.lines, "\n")
}

// Contains reports whether any line mentions the event name. Used by
// callers inspecting run outcomes.
func (t *Trail) Contains(event string) bool {
	for _, line := range t.lines {
		if strings.Contains(line, event) {
			return true
		}
	}
	return false
}
