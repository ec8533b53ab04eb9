package blackout

import (
	"time"

	"github.com/google/uuid"
)

// Blackout is an administratively forbidden date window. It targets either a
// department or an explicit set of employees; with neither target it is
// company-wide (see the untargeted policy on the service).
type Blackout struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StartDate    time.Time  `gorm:"type:date;not null;index:idx_blackouts_window"`
	EndDate      time.Time  `gorm:"type:date;not null;index:idx_blackouts_window"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null"`

	Targets []BlackoutTarget `gorm:"foreignKey:BlackoutID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlackoutTarget pins a blackout to a single employee.
type BlackoutTarget struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BlackoutID uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
}
