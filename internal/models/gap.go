package models

// GapEntry records one missing (property, field) pair found during a
// validation pass. Entries are transient: they are rendered into the report
// artifacts and aggregated into Property.HasCriticalGaps, not persisted.
type GapEntry struct {
	PropertyID string `json:"property_id"`
	FieldName  string `json:"field_name"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
}

// GapReport is the outcome of one validation pass over a record set.
type GapReport struct {
	RunID       string     `json:"run_id"`
	RecordCount int        `json:"record_count"`
	Entries     []GapEntry `json:"entries"`
	CriticalIDs []string   `json:"critical_ids"`
}

// HasCriticalGaps reports whether any critical-tier gap was found.
func (r *GapReport) HasCriticalGaps() bool {
	return len(r.CriticalIDs) > 0
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID         string `json:"run_id"`
	SourceFile    string `json:"source_file"`
	RecordCount   int    `json:"record_count"`
	CriticalCount int    `json:"critical_count"`
	GapCount      int    `json:"gap_count"`
	Enqueued      int    `json:"enqueued_batches"`
}
