package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// WaitlistEntry queues a user for a full program. Position is assigned per
// program at join time and never reused.
type WaitlistEntry struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_waitlist_entries_user_program,priority:1"`
	ProgramID  uuid.UUID            `gorm:"column:program_id;type:uuid;not null;index;uniqueIndex:ux_waitlist_entries_user_program,priority:2"`
	Position   int                  `gorm:"column:position;not null"`
	Status     enums.WaitlistStatus `gorm:"column:status;type:waitlist_status;not null;default:'waiting'"`
	SelectedAt *time.Time           `gorm:"column:selected_at"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
