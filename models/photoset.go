package models

// PhotoSet status values. A set is created pending (or approved via the
// trusted direct-create path) and moves to exactly one terminal state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsValidStatus reports whether s is one of the three known statuses.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// PhotoSet represents one before/after submission event in the database.
// It corresponds to the 'photo_sets' table and owns its Photos.
type PhotoSet struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           *string `gorm:"" json:"title,omitempty"`       // Nullable
	Description     *string `gorm:"" json:"description,omitempty"` // Nullable
	ServiceCategory string  `gorm:"not null;index" json:"service_category"`
	Status          string  `gorm:"not null;default:pending;index" json:"status"`
	SubmittedAt     int64   `gorm:"not null;index" json:"submitted_at"` // Unix timestamp
	OwnerID         uint    `gorm:"not null;index" json:"owner_id"`

	// Photos are composition: they are created in the same transaction as
	// the set and deleted with it
	Photos []Photo `gorm:"foreignKey:PhotoSetID;constraint:OnDelete:CASCADE" json:"photos"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoSet) TableName() string {
	return "photo_sets"
}

// IsTerminal reports whether the set has left the approval queue.
func (ps *PhotoSet) IsTerminal() bool {
	return ps.Status == StatusApproved || ps.Status == StatusRejected
}
