package models

import "time"

// SearchFolder groups properties, visits and documents under one
// acquisition thesis with its own budget and status.
type SearchFolder struct {
	StartDate       time.Time       `json:"startDate"`
	StatusUpdatedAt time.Time       `json:"statusUpdatedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Status          FolderStatus    `json:"status"`
	TransactionType TransactionType `json:"transactionType"`
	Color           string          `json:"color"`
	Budget          float64         `json:"budget"`
}

// FolderShare grants a user access to a folder they do not own.
type FolderShare struct {
	CreatedAt time.Time `json:"createdAt"`
	FolderID  string    `json:"folderId"`
	UserID    string    `json:"userId"`
	Role      ShareRole `json:"role"`
}

// FolderSummary is a folder with its derived dashboard metrics.
type FolderSummary struct {
	SearchFolder
	DaysElapsed   int `json:"daysElapsed"`
	PropertyCount int `json:"propertyCount"`
	ActiveAssets  int `json:"activeAssets"`
	VisitCount    int `json:"visitCount"`
}

// CascadeImpact counts the rows a folder deletion would remove.
type CascadeImpact struct {
	Properties   int `json:"properties"`
	Visits       int `json:"visits"`
	Documents    int `json:"documents"`
	PendingLinks int `json:"pendingLinks"`
}
