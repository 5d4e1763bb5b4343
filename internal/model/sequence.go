package model

import "time"

// Sequence is the counter behind one human-facing identifier stream.
type Sequence struct {
	Stream    string    `gorm:"type:varchar(64);primaryKey" json:"stream"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
