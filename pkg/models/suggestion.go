package models

import "time"

// SuggestionType represents the kind of optimization suggested
type SuggestionType string

const (
	SuggestReduceCPURequest    SuggestionType = "REDUCE_CPU_REQUEST"
	SuggestReduceMemoryRequest SuggestionType = "REDUCE_MEMORY_REQUEST"
	SuggestScaleReplicas       SuggestionType = "SCALE_REPLICAS"
	SuggestNoChange            SuggestionType = "NO_CHANGE"
)

// Suggestion is one optimization suggestion for a workload. A workload can
// accumulate several actions (e.g. reduce both CPU and memory requests);
// they are kept in evaluation order so report output stays deterministic.
type Suggestion struct {
	ID       string
	Workload Workload

	// Observed state at evaluation time
	CPUUsageCores     float64
	CPUUtilization    float64
	MemoryUsageBytes  float64
	MemoryUtilization float64

	Actions []SuggestionType
	Reasons []string

	CreatedAt time.Time
}

// Actionable reports whether the suggestion asks for any change.
func (s *Suggestion) Actionable() bool {
	for _, a := range s.Actions {
		if a != SuggestNoChange {
			return true
		}
	}
	return false
}

// AuditEntry records that a suggestion was acted on
type AuditEntry struct {
	ID           string
	SuggestionID string
	Action       string // APPLIED, DISMISSED
	Status       string // SUCCESS, FAILED
	ErrorMessage string
	ExecutedBy   string
	ExecutedAt   time.Time
}
