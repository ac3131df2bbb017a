package report

import (
	"path/filepath"
	"testing"
	"time"
)

func TestAddChunks_Dedup(t *testing.T) {
	s := NewRunState("Tesla", "")
	now := time.Now().UTC()

	first := []TextChunk{
		{SourceURL: "https://a.example/1", Text: "revenue grew 19%", RetrievedAt: now},
		{SourceURL: "https://a.example/2", Text: "margins improved", RetrievedAt: now},
	}
	if added := s.AddChunks(first); added != 2 {
		t.Fatalf("first AddChunks: added %d, want 2", added)
	}

	// Same source+text pairs again, plus one new chunk.
	second := append([]TextChunk{}, first...)
	second = append(second, TextChunk{SourceURL: "https://a.example/3", Text: "deliveries up", RetrievedAt: now})
	if added := s.AddChunks(second); added != 1 {
		t.Errorf("second AddChunks: added %d, want 1", added)
	}
	if len(s.RawData) != 3 {
		t.Errorf("RawData length: got %d, want 3", len(s.RawData))
	}
}

func TestAddChunks_SkipsEmptyText(t *testing.T) {
	s := NewRunState("Tesla", "")
	added := s.AddChunks([]TextChunk{{SourceURL: "https://a.example/1", Text: ""}})
	if added != 0 || len(s.RawData) != 0 {
		t.Errorf("empty-text chunk should be skipped: added=%d len=%d", added, len(s.RawData))
	}
}

func TestRawDataChars(t *testing.T) {
	s := NewRunState("Tesla", "")
	s.AddChunks([]TextChunk{
		{SourceURL: "u1", Text: "abcde"},
		{SourceURL: "u2", Text: "fgh"},
	})
	if got := s.RawDataChars(); got != 8 {
		t.Errorf("RawDataChars: got %d, want 8", got)
	}
}

func TestAdvance_RecordsHistory(t *testing.T) {
	s := NewRunState("Tesla", "")
	Advance(s, StepCollect, "START", "start run")
	Advance(s, StepAnalyze, "SEQ", "collection complete")

	if s.CurrentStep != StepAnalyze {
		t.Errorf("CurrentStep: got %s, want %s", s.CurrentStep, StepAnalyze)
	}
	if len(s.History) != 2 {
		t.Fatalf("History length: got %d, want 2", len(s.History))
	}
	if s.History[0].Step != StepInit || s.History[0].RuleID != "START" {
		t.Errorf("first record: got %+v", s.History[0])
	}
	if s.History[1].Step != StepCollect {
		t.Errorf("second record step: got %s", s.History[1].Step)
	}
}

func TestStateSaveLoad(t *testing.T) {
	dir := t.TempDir()

	s := NewRunState("Tesla", "profitability")
	s.AddChunks([]TextChunk{{SourceURL: "u1", Text: "chunk"}})
	s.DataRetryCount = 1
	Advance(s, StepWrite, "G1-ACCEPT", "analysis accepted")

	if err := SaveState(dir, s); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got == nil {
		t.Fatal("LoadState returned nil for existing state")
	}
	if got.Topic != "Tesla" || got.Focus != "profitability" {
		t.Errorf("inputs: got topic=%q focus=%q", got.Topic, got.Focus)
	}
	if got.CurrentStep != StepWrite || got.DataRetryCount != 1 {
		t.Errorf("progress: got step=%s retries=%d", got.CurrentStep, got.DataRetryCount)
	}

	// Missing state = nil, no error.
	missing, err := LoadState(filepath.Join(dir, "nope"))
	if err != nil {
		t.Fatalf("LoadState missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing state, got %+v", missing)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tesla", "tesla"},
		{"Berkshire Hathaway", "berkshire-hathaway"},
		{"  A&B Corp.  ", "a-b-corp"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q): got %q want %q", tt.in, got, tt.want)
		}
	}
}

func TestStepTerminal(t *testing.T) {
	for _, step := range []Step{StepDone, StepEarlyExit, StepCancelled} {
		if !step.Terminal() {
			t.Errorf("%s should be terminal", step)
		}
	}
	for _, step := range []Step{StepInit, StepCollect, StepAnalyze, StepWrite, StepEdit} {
		if step.Terminal() {
			t.Errorf("%s should not be terminal", step)
		}
	}
}
