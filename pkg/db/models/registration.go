package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// Registration binds a user to a program for a season.
type Registration struct {
	ID          uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_registrations_user_program,priority:1"`
	ProgramID   uuid.UUID                `gorm:"column:program_id;type:uuid;not null;index;uniqueIndex:ux_registrations_user_program,priority:2"`
	SeasonID    uuid.UUID                `gorm:"column:season_id;type:uuid;not null;index"`
	Status      enums.RegistrationStatus `gorm:"column:status;type:registration_status;not null;default:'pending'"`
	ConfirmedAt *time.Time               `gorm:"column:confirmed_at"`
	CancelledAt *time.Time               `gorm:"column:cancelled_at"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Program *Program `gorm:"foreignKey:ProgramID"`
}
