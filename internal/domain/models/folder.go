package models

import (
	"time"
)

// Folder is a node in an owner's folder tree. ParentID nil means the
// folder sits at the root of its owner's tree. ID, OwnerID and CreatedAt
// are never reassigned after construction.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Rename validates the new name and applies it. On failure the folder is
// left unchanged.
func (f *Folder) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	f.Name = name
	f.UpdatedAt = time.Now()
	return nil
}

// IsRoot reports whether the folder sits at the top level of its owner's tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
