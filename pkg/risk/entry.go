// Package risk derives the farm's risk register and safety score from the
// equipment, checklist and maintenance feeds. Everything here is a pure
// computation over already-fetched rows; nothing in this package touches
// the database.
package risk

import "time"

// Entry categories, in the order they appear in the register.
const (
	CategoryEquipment   = "EquipmentRisk"
	CategoryChecklist   = "ChecklistFailure"
	CategoryMaintenance = "OverdueMaintenance"
)

// Severities, ordered critical > high > medium > low.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Entry is one derived line of the risk register. Entries are recomputed
// on every aggregation and never persisted. ID is a deterministic
// composite of category prefix and source-record id, so re-aggregating
// unchanged inputs yields byte-identical output.
type Entry struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Severity string    `json:"severity"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes,omitempty"`
	Location string    `json:"location,omitempty"`
}

// Skipped reports a source record the aggregator could not use, typically
// because its date failed to parse. Skips are reportable, never fatal.
type Skipped struct {
	SourceID string `json:"sourceId"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}
