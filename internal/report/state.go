package report

import (
	"time"
)

const stateFilename = "state.json"

// NewRunState creates a fresh run for a topic, starting at INIT.
func NewRunState(topic, focus string) *RunState {
	return &RunState{
		Topic:       topic,
		Focus:       focus,
		CurrentStep: StepInit,
		Status:      StatusRunning,
	}
}

// Advance moves the state to the next step and records the transition.
// The engine calls this exactly once per committed transition; stages never do.
func Advance(s *RunState, next Step, ruleID, outcome string) {
	s.History = append(s.History, StepRecord{
		Step:      s.CurrentStep,
		Outcome:   outcome,
		RuleID:    ruleID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	s.CurrentStep = next
}

// AppendNote adds a diagnostic to the append-only quality trail.
func (s *RunState) AppendNote(note string) {
	s.QualityNotes = append(s.QualityNotes, note)
}

// AddChunks appends chunks to RawData, skipping any whose source URL and text
// match a chunk already collected. Returns the number actually added, so
// repeated collection passes are additive rather than duplicative.
func (s *RunState) AddChunks(chunks []TextChunk) int {
	seen := make(map[string]bool, len(s.RawData))
	for _, c := range s.RawData {
		seen[c.SourceURL+"\x00"+c.Text] = true
	}
	added := 0
	for _, c := range chunks {
		key := c.SourceURL + "\x00" + c.Text
		if c.Text == "" || seen[key] {
			continue
		}
		seen[key] = true
		s.RawData = append(s.RawData, c)
		added++
	}
	return added
}

// RawDataChars returns the total character count across all collected chunks.
func (s *RunState) RawDataChars() int {
	total := 0
	for _, c := range s.RawData {
		total += len(c.Text)
	}
	return total
}

// LoadState reads the persisted state from the run directory.
// Returns nil if no state file exists (new run).
func LoadState(runDir string) (*RunState, error) {
	return ReadArtifact[RunState](runDir, stateFilename)
}

// SaveState persists the run state to the run directory.
func SaveState(runDir string, s *RunState) error {
	return WriteArtifact(runDir, stateFilename, s)
}
