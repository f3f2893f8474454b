package models

import "time"

// DefaultProjectID is the reserved id of the project that is guaranteed to
// exist after initialization. Legacy single-project data is migrated into it.
const (
	DefaultProjectID   = "default"
	DefaultProjectName = "Default"
)

// Project is a named grouping of transactions. Projects are never hard
// deleted; DeletedAt marks them inactive while the stored bytes remain.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the project has been soft-deleted.
func (p Project) IsDeleted() bool {
	return p.DeletedAt != nil
}
