package models

// Photo type values partition a set's photos into the two display buckets.
const (
	PhotoTypeBefore = "before"
	PhotoTypeAfter  = "after"
)

// Photo represents one processed image belonging to exactly one PhotoSet.
// It corresponds to the 'photos' table. URL and ContentType describe the
// transcoded object in blob storage, not the original upload; Filename and
// Size are kept for display.
type Photo struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PhotoSetID  uint   `gorm:"not null;index" json:"photo_set_id"`
	URL         string `gorm:"not null" json:"url"`
	Type        string `gorm:"not null;index" json:"type"` // before | after
	UploadedAt  int64  `gorm:"not null" json:"uploaded_at"` // Unix timestamp
	Filename    string `gorm:"not null" json:"filename"`    // original upload name
	Size        int64  `gorm:"not null" json:"size"`        // bytes of the processed file
	ContentType string `gorm:"not null" json:"content_type"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}
