package pipeline

import (
	"strings"
	"testing"
	"time"
)

func fixedTrail() *Trail {
	at := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	return &Trail{now: func() time.Time { return at }}
}

func TestTrailFormat(t *testing.T) {
	trail := fixedTrail()
	trail.Record(EventAnalysisStarted, "Query: 'test'")
	trail.Record(EventSynthesisComplete, "")
	trail.Recordf(EventPersonaLoaded, "'%s' with %d agents", "general", 12)

	lines := trail.Lines()
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}

	want := []string{
		"[2024-03-01T12:30:45Z] ANALYSIS_STARTED - Query: 'test'",
		"[2024-03-01T12:30:45Z] SYNTHESIS_COMPLETE",
		"[2024-03-01T12:30:45Z] PERSONA_LOADED - 'general' with 12 agents",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if got := trail.String(); got != strings.Join(want, "\n") {
		t.Errorf("String() = %q", got)
	}
}

func TestTrailContains(t *testing.T) {
	trail := fixedTrail()
	trail.Record(EventAgentFailed, "Skeptic: timeout")

	if !trail.Contains(EventAgentFailed) {
		t.Error("Contains should find a recorded event")
	}
	if trail.Contains(EventSynthesisFallback) {
		t.Error("Contains should not find an unrecorded event")
	}
}

func TestTrailOrderPreserved(t *testing.T) {
	trail := fixedTrail()
	events := []string{EventAgentStart, EventAgentComplete, EventAgentStart, EventAgentFailed}
	for _, e := range events {
		trail.Record(e, "x")
	}

	lines := trail.Lines()
	for i, e := range events {
		if !strings.Contains(lines[i], e) {
			t.Errorf("line %d = %q, want event %q", i, lines[i], e)
		}
	}
}
