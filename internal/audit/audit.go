package audit

import (
	"time"
)

// Fields is embedded in every entity. Soft delete is monotonic: once an
// entity is deleted it never becomes live again and is never removed
// from storage. The pair invariant holds at all times:
// IsDeleted == true iff DeletedAt != nil.
type Fields struct {
	CreatedAt time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`
}

func NewFields(now time.Time) Fields {
	return Fields{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt. Call it with the same clock value used for
// the owning field change so readers never see the two out of step.
func (f *Fields) Touch(now time.Time) {
	f.UpdatedAt = now
}

// SoftDelete marks the entity deleted. Repeat calls are a no-op; the
// original deletion timestamp is preserved.
func (f *Fields) SoftDelete(now time.Time) {
	if f.IsDeleted {
		return
	}
	f.IsDeleted = true
	f.DeletedAt = &now
	f.UpdatedAt = now
}

func (f Fields) Deleted() bool {
	return f.IsDeleted
}

// Clock provides the current timestamp for audit fields. Injected so
// services are deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }
