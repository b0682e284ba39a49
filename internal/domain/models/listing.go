package models

import (
	"strings"
	"time"
)

// Sort columns accepted by list queries. Anything else falls back to name.
const (
	SortByName      = "name"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortBySize      = "size"
)

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListOptions carries pagination, ordering and the optional MIME filter
// for list queries.
type ListOptions struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
	MimeType  string
}

// ApplyDefaults normalizes options in place: positive bounded limit,
// non-negative offset, whitelisted sort column and direction.
func (o *ListOptions) ApplyDefaults() {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	switch o.SortBy {
	case SortByName, SortByCreatedAt, SortByUpdatedAt, SortBySize:
	default:
		o.SortBy = SortByName
	}
	switch strings.ToUpper(o.SortOrder) {
	case SortAsc:
		o.SortOrder = SortAsc
	case SortDesc:
		o.SortOrder = SortDesc
	default:
		o.SortOrder = SortAsc
	}
}

// LocalEntry is one entry of a local directory listing. It belongs to the
// local-browser namespace, which is independent of the owned folder tree.
type LocalEntry struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"isDirectory"`
	Size        int64     `json:"size"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// LocalListing is the response of a local directory listing.
type LocalListing struct {
	CurrentPath string       `json:"currentPath"`
	Items       []LocalEntry `json:"items"`
}
