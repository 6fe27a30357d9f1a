package journal

import (
	"log"

	"callback-registry-api/internal/models"
	"callback-registry-api/internal/registry"

	"gorm.io/gorm"
)

// Recorder appends registry lifecycle events to the journal table for
// later inspection through the admin API.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder constructs a Recorder over the given database handle.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record persists a single event. A write failure is logged and dropped;
// the journal is diagnostic data and must never fail a request.
func (r *Recorder) Record(evt registry.Event) {
	rec := models.JournalRecord{
		Key:    evt.Key,
		Event:  string(evt.Type),
		Detail: evt.Detail,
		At:     evt.At.Unix(),
	}
	if err := r.db.Create(&rec).Error; err != nil {
		log.Printf("journal: failed to record %s event for %q: %v", evt.Type, evt.Key, err)
	}
}
