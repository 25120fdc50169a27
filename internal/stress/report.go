package stress

import "time"

// RoundResult summarizes one round of the scenario on a fresh list.
type RoundResult struct {
	Round      int `json:"round" yaml:"round"`
	Writers    int `json:"writers" yaml:"writers"`
	Readers    int `json:"readers" yaml:"readers"`
	Expected   int `json:"expected" yaml:"expected"`
	Actual     int `json:"actual" yaml:"actual"`
	Missing    int `json:"missing" yaml:"missing"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Traversals int `json:"traversals" yaml:"traversals"`
	// AddEvents counts items announced by add events and EventMismatches the
	// tags not announced exactly once; observable rounds only.
	AddEvents       int           `json:"add_events,omitempty" yaml:"add_events,omitempty"`
	EventMismatches int           `json:"event_mismatches,omitempty" yaml:"event_mismatches,omitempty"`
	ReaderErrors    []string      `json:"reader_errors,omitempty" yaml:"reader_errors,omitempty"`
	WriterErrors    []string      `json:"writer_errors,omitempty" yaml:"writer_errors,omitempty"`
	Duration        time.Duration `json:"duration" yaml:"duration"`

	observable bool
}

// OK reports whether the round ended with every tag present exactly once
// and no worker observed an inconsistency.
func (r RoundResult) OK() bool {
	if r.Actual != r.Expected || r.Missing != 0 || r.Duplicates != 0 {
		return false
	}
	if len(r.ReaderErrors) > 0 || len(r.WriterErrors) > 0 {
		return false
	}
	return !r.observable || (r.AddEvents == r.Expected && r.EventMismatches == 0)
}

// Report is the outcome of a Runner.Run call.
type Report struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Observable bool          `json:"observable" yaml:"observable"`
	Rounds     []RoundResult `json:"rounds" yaml:"rounds"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// OK reports whether every round passed.
func (r *Report) OK() bool {
	if len(r.Rounds) == 0 {
		return false
	}
	for _, round := range r.Rounds {
		if !round.OK() {
			return false
		}
	}
	return true
}

// Failed returns the rounds that did not pass.
func (r *Report) Failed() []RoundResult {
	var failed []RoundResult
	for _, round := range r.Rounds {
		if !round.OK() {
			failed = append(failed, round)
		}
	}
	return failed
}
