package models

import "time"

// ChecklistItem is one task to verify during a visit.
type ChecklistItem struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// Visit is a scheduled physical visit to a property.
// PropertyID may reference a deleted property; readers must tolerate that.
type Visit struct {
	CreatedAt      time.Time       `json:"createdAt"`
	ClientFeedback *string         `json:"clientFeedback"`
	ID             string          `json:"id"`
	PropertyID     string          `json:"propertyId"`
	FolderID       string          `json:"folderId"`
	UserID         string          `json:"userId"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	ContactName    string          `json:"contactName"`
	ContactPhone   string          `json:"contactPhone"`
	Notes          string          `json:"notes"`
	Status         VisitStatus     `json:"status"`
	Checklist      []ChecklistItem `json:"checklist"`
	Photos         []string        `json:"photos"`
}
