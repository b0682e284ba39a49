package models

import (
	"strings"
	"time"
)

// File is an uploaded file's metadata. FolderID nil means the file lives
// in its owner's root listing. Path is the opaque blob-store key assigned
// at upload time; renaming never touches it.
type File struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	FolderID  *string   `json:"folder_id" db:"folder_id"` // NULL = root level
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Size      int64     `json:"size" db:"size"`
	MimeType  string    `json:"mime_type" db:"mime_type"`
	Path      string    `json:"path" db:"path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Rename validates the new name and applies it. The blob key (Path) is
// untouched, so renaming never moves bytes. On failure the file is left
// unchanged.
func (f *File) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	f.Name = name
	f.UpdatedAt = time.Now()
	return nil
}

// Extension returns the name's extension without the dot, or "" if none.
func (f *File) Extension() string {
	idx := strings.LastIndex(f.Name, ".")
	if idx < 0 || idx == len(f.Name)-1 {
		return ""
	}
	return f.Name[idx+1:]
}

// IsImage reports whether the file's MIME type is an image type.
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}
