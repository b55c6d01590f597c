package core

import (
	"errors"
	"testing"
)

// Event constructor & helper method tests
func TestEvent_Constructors(t *testing.T) {
	e := NewEvent("run-123", EventRunStarted)
	if e.RunID != "run-123" || e.Type != EventRunStarted || e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("NewEvent did not initialize fields correctly: %+v", e)
	}

	started := NewRunStartedEvent("run-123", "ResearchPipeline")
	if started.Pipeline != "ResearchPipeline" || started.Type != EventRunStarted {
		t.Fatalf("NewRunStartedEvent malformed: %+v", started)
	}

	finished := NewRunFinishedEvent("run-123", "ResearchPipeline", nil)
	if finished.Success == nil || !*finished.Success || finished.Error != nil {
		t.Fatalf("NewRunFinishedEvent success malformed: %+v", finished)
	}

	failed := NewRunFinishedEvent("run-123", "ResearchPipeline", errors.New("boom"))
	if failed.Success == nil || *failed.Success || failed.Error == nil || *failed.Error != "boom" {
		t.Fatalf("NewRunFinishedEvent error malformed: %+v", failed)
	}

	stage := NewStageStartedEvent("run-123", "ResearchPipeline", "ResearchTeam")
	if stage.Stage != "ResearchTeam" || stage.Type != EventStageStarted {
		t.Fatalf("NewStageStartedEvent malformed: %+v", stage)
	}

	agentDone := NewAgentFinishedEvent("run-123", NewFailureResult("WebsiteAnalyzer", "website_assessment", errors.New("timeout")))
	if agentDone.Agent != "WebsiteAnalyzer" || agentDone.OutputKey != "website_assessment" {
		t.Fatalf("NewAgentFinishedEvent malformed: %+v", agentDone)
	}
	if agentDone.Success == nil || *agentDone.Success || agentDone.Error == nil {
		t.Fatalf("failure metadata not copied: %+v", agentDone)
	}
}

func TestEvent_IDsUnique(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}

func TestEvent_UnixSeconds(t *testing.T) {
	e := NewEvent("run-1", EventRunStarted)
	if e.UnixSeconds() <= 0 {
		t.Error("expected positive epoch seconds")
	}
}
