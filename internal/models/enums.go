package models

import "strings"

// PropertyStatus tracks where a property sits in the acquisition lifecycle.
// Any status may follow any other; no order is enforced.
type PropertyStatus string

const (
	PropertyWishlist  PropertyStatus = "Wishlist"
	PropertyContacted PropertyStatus = "Contacted"
	PropertyVisited   PropertyStatus = "Visited"
	PropertyOffered   PropertyStatus = "Offered"
	PropertyDiscarded PropertyStatus = "Discarded"
)

// PropertyStatuses lists every valid property status.
var PropertyStatuses = []PropertyStatus{
	PropertyWishlist, PropertyContacted, PropertyVisited, PropertyOffered, PropertyDiscarded,
}

// Valid reports whether s is a known property status.
func (s PropertyStatus) Valid() bool {
	for _, v := range PropertyStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// FolderStatus is the lifecycle of a search folder.
type FolderStatus string

const (
	FolderPending FolderStatus = "Pendiente"
	FolderOpen    FolderStatus = "Abierta"
	FolderClosed  FolderStatus = "Cerrada"
)

// Valid reports whether s is a known folder status.
func (s FolderStatus) Valid() bool {
	return s == FolderPending || s == FolderOpen || s == FolderClosed
}

// TransactionType is the kind of deal a folder is searching for.
type TransactionType string

const (
	TransactionPurchase TransactionType = "Compra"
	TransactionRental   TransactionType = "Alquiler"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionPurchase || t == TransactionRental
}

// VisitStatus is the state of a scheduled visit.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "Scheduled"
	VisitCompleted VisitStatus = "Completed"
	VisitCancelled VisitStatus = "Cancelled"
)

// Valid reports whether s is a known visit status.
func (s VisitStatus) Valid() bool {
	return s == VisitScheduled || s == VisitCompleted || s == VisitCancelled
}

// DocumentCategory groups stored documents.
type DocumentCategory string

const (
	DocumentLegal     DocumentCategory = "Legal"
	DocumentTechnical DocumentCategory = "Technical"
	DocumentFinancial DocumentCategory = "Financial"
	DocumentOther     DocumentCategory = "Other"
)

// Valid reports whether c is a known document category.
func (c DocumentCategory) Valid() bool {
	switch c {
	case DocumentLegal, DocumentTechnical, DocumentFinancial, DocumentOther:
		return true
	}
	return false
}

// ShareRole is the access a user has on a folder shared with them.
type ShareRole string

const (
	RoleOwner  ShareRole = "owner"
	RoleEditor ShareRole = "editor"
	RoleViewer ShareRole = "viewer"
)

// CanWrite reports whether the role allows mutations.
func (r ShareRole) CanWrite() bool {
	return r == RoleOwner || r == RoleEditor
}

// ParseShareRole normalizes a role name; unknown names map to viewer.
func ParseShareRole(s string) ShareRole {
	switch ShareRole(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner
	case RoleEditor:
		return RoleEditor
	default:
		return RoleViewer
	}
}
