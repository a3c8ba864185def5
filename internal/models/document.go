package models

import "time"

// PropertyDocument is a stored file attached to a folder, or to one of its
// properties when PropertyID is set.
type PropertyDocument struct {
	CreatedAt  time.Time        `json:"createdAt"`
	PropertyID *string          `json:"propertyId"`
	ID         string           `json:"id"`
	FolderID   string           `json:"folderId"`
	Name       string           `json:"name"`
	Category   DocumentCategory `json:"category"`
	FileURL    string           `json:"fileUrl"`
	FileType   string           `json:"fileType"`
}

// FolderLevel reports whether the document belongs to the folder itself.
func (d *PropertyDocument) FolderLevel() bool {
	return d.PropertyID == nil || *d.PropertyID == ""
}
