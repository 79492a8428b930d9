package models

// IDSequence backs the per-series monotonic counters used for event IDs.
type IDSequence struct {
	Series string `gorm:"column:series;type:text;primaryKey"`
	Value  int64  `gorm:"column:value;not null;default:0"`
}

// TableName pins the name referenced by the atomic upsert in the sequence repo.
func (IDSequence) TableName() string {
	return "id_sequences"
}
