package domain

import "time"

// HistoryEntry is one immutable ledger record of a stage transition.
// FromStage is nil for the entry written at creation.
type HistoryEntry struct {
	ID           string
	ObligationID string
	FromStage    *StageID
	ToStage      StageID
	ChangedAt    time.Time
	ActorID      string
	ActorName    string
	Notes        string
}

// StageDuration is a derived read over the ledger: how long an obligation
// sat in a stage. Never stored; recomputed from consecutive entries.
type StageDuration struct {
	Stage     StageID
	EnteredAt time.Time
	Days      float64
}

// StageDurations derives per-stage dwell times from a ledger ordered by
// ChangedAt ascending. The final (current) stage is measured against now.
func StageDurations(entries []HistoryEntry, now time.Time) []StageDuration {
	if len(entries) == 0 {
		return nil
	}
	durations := make([]StageDuration, 0, len(entries))
	for i, e := range entries {
		end := now
		if i+1 < len(entries) {
			end = entries[i+1].ChangedAt
		}
		durations = append(durations, StageDuration{
			Stage:     e.ToStage,
			EnteredAt: e.ChangedAt,
			Days:      end.Sub(e.ChangedAt).Hours() / 24,
		})
	}
	return durations
}
