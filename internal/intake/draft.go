package intake

import (
	"strings"

	"github.com/stwalsh4118/acquire/internal/geocoding"
	"github.com/stwalsh4118/acquire/internal/models"
)

// Provenance records where a draft field's value came from.
type Provenance string

const (
	ProvenanceEmpty    Provenance = "empty"
	ProvenanceAI       Provenance = "ai"
	ProvenanceMetadata Provenance = "metadata"
	ProvenanceStored   Provenance = "stored"
	ProvenanceUser     Provenance = "user"
)

// Draft field names, matching the property JSON keys.
const (
	fieldTitle         = "title"
	fieldURL           = "url"
	fieldAddress       = "address"
	fieldExactAddress  = "exactAddress"
	fieldFolder        = "folderId"
	fieldPrice         = "price"
	fieldFees          = "fees"
	fieldSqft          = "sqft"
	fieldCoveredSqft   = "coveredSqft"
	fieldUncoveredSqft = "uncoveredSqft"
	fieldEnvironments  = "environments"
	fieldRooms         = "rooms"
	fieldBathrooms     = "bathrooms"
	fieldToilets       = "toilets"
	fieldParking       = "parking"
	fieldAge           = "age"
	fieldFloor         = "floor"
	fieldStatus        = "status"
	fieldRating        = "rating"
	fieldNotes         = "notes"
	fieldImages        = "images"
	fieldLocation      = "location"
	fieldRenovations   = "renovationCosts"
)

// Analysis is the AI's qualitative read of a listing.
type Analysis struct {
	DealScore float64  `json:"dealScore"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
	Strategy  string   `json:"strategy"`
}

// Draft is the editable, not yet persisted form of a property.
type Draft struct {
	Property   models.Property       `json:"property"`
	Provenance map[string]Provenance `json:"provenance"`
	Address    geocoding.Result      `json:"address"`
	Analysis   *Analysis             `json:"analysis,omitempty"`
	Duplicates []DuplicateHint       `json:"duplicates"`
	Degraded   bool                  `json:"degraded"`

	// ImageLoading is set while the page preview is still being fetched.
	ImageLoading bool `json:"imageLoading"`
}

func newDraft() Draft {
	return Draft{
		Provenance: map[string]Provenance{},
		Address:    geocoding.Result{Status: geocoding.StatusIdle},
		Duplicates: []DuplicateHint{},
	}
}

// ProvenanceOf returns the provenance of field, ProvenanceEmpty when unset.
func (d *Draft) ProvenanceOf(field string) Provenance {
	if p, ok := d.Provenance[field]; ok {
		return p
	}
	return ProvenanceEmpty
}

func (d *Draft) mark(field string, p Provenance) {
	d.Provenance[field] = p
}

func (d Draft) clone() Draft {
	out := d
	out.Provenance = make(map[string]Provenance, len(d.Provenance))
	for k, v := range d.Provenance {
		out.Provenance[k] = v
	}
	out.Property.Images = append([]string(nil), d.Property.Images...)
	out.Property.RenovationCosts = append([]models.RenovationItem(nil), d.Property.RenovationCosts...)
	if d.Property.ExactAddress != nil {
		exact := *d.Property.ExactAddress
		out.Property.ExactAddress = &exact
	}
	if d.Property.Location != nil {
		loc := *d.Property.Location
		out.Property.Location = &loc
	}
	if d.Analysis != nil {
		a := *d.Analysis
		a.Pros = append([]string(nil), d.Analysis.Pros...)
		a.Cons = append([]string(nil), d.Analysis.Cons...)
		out.Analysis = &a
	}
	out.Duplicates = append([]DuplicateHint{}, d.Duplicates...)
	return out
}

// exactAddress returns the trimmed exact address, "" when unset.
func (d *Draft) exactAddress() string {
	if d.Property.ExactAddress == nil {
		return ""
	}
	return strings.TrimSpace(*d.Property.ExactAddress)
}

// Patch holds user edits to a draft. Nil fields are left alone; a non-nil
// slice replaces the whole list.
type Patch struct {
	FolderID        *string                 `json:"folderId"`
	Title           *string                 `json:"title"`
	URL             *string                 `json:"url"`
	Address         *string                 `json:"address"`
	ExactAddress    *string                 `json:"exactAddress"`
	Floor           *string                 `json:"floor"`
	Notes           *string                 `json:"notes"`
	Status          *models.PropertyStatus  `json:"status"`
	Location        *models.GeoPoint        `json:"location"`
	Price           *float64                `json:"price"`
	Fees            *float64                `json:"fees"`
	Sqft            *float64                `json:"sqft"`
	CoveredSqft     *float64                `json:"coveredSqft"`
	UncoveredSqft   *float64                `json:"uncoveredSqft"`
	Environments    *int                    `json:"environments"`
	Rooms           *int                    `json:"rooms"`
	Bathrooms       *int                    `json:"bathrooms"`
	Toilets         *int                    `json:"toilets"`
	Parking         *int                    `json:"parking"`
	Age             *int                    `json:"age"`
	Rating          *int                    `json:"rating"`
	Images          []string                `json:"images"`
	RenovationCosts []models.RenovationItem `json:"renovationCosts"`
}

func set[T any](d *Draft, field string, dst *T, v *T) {
	if v == nil {
		return
	}
	*dst = *v
	d.mark(field, ProvenanceUser)
}

// apply copies every non-nil field of p into the draft, except the exact
// address which the session handles together with validation.
func (p Patch) apply(d *Draft) {
	prop := &d.Property
	set(d, fieldFolder, &prop.FolderID, p.FolderID)
	set(d, fieldTitle, &prop.Title, p.Title)
	set(d, fieldURL, &prop.URL, p.URL)
	set(d, fieldAddress, &prop.Address, p.Address)
	set(d, fieldFloor, &prop.Floor, p.Floor)
	set(d, fieldNotes, &prop.Notes, p.Notes)
	set(d, fieldStatus, &prop.Status, p.Status)
	set(d, fieldPrice, &prop.Price, p.Price)
	set(d, fieldFees, &prop.Fees, p.Fees)
	set(d, fieldSqft, &prop.Sqft, p.Sqft)
	set(d, fieldCoveredSqft, &prop.CoveredSqft, p.CoveredSqft)
	set(d, fieldUncoveredSqft, &prop.UncoveredSqft, p.UncoveredSqft)
	set(d, fieldEnvironments, &prop.Environments, p.Environments)
	set(d, fieldRooms, &prop.Rooms, p.Rooms)
	set(d, fieldBathrooms, &prop.Bathrooms, p.Bathrooms)
	set(d, fieldToilets, &prop.Toilets, p.Toilets)
	set(d, fieldParking, &prop.Parking, p.Parking)
	set(d, fieldAge, &prop.Age, p.Age)
	if p.Rating != nil {
		prop.Rating = models.ClampRating(*p.Rating)
		d.mark(fieldRating, ProvenanceUser)
	}
	if p.Location != nil {
		loc := *p.Location
		prop.Location = &loc
		d.mark(fieldLocation, ProvenanceUser)
	}
	if p.Images != nil {
		prop.Images = append([]string{}, p.Images...)
		d.mark(fieldImages, ProvenanceUser)
	}
	if p.RenovationCosts != nil {
		prop.RenovationCosts = append([]models.RenovationItem{}, p.RenovationCosts...)
		d.mark(fieldRenovations, ProvenanceUser)
	}
}

// draftFromProperty seeds an edit draft; every non-empty field is stored.
func draftFromProperty(p models.Property) Draft {
	d := newDraft()
	d.Property = p
	stored := map[string]bool{
		fieldTitle:         p.Title != "",
		fieldURL:           p.URL != "",
		fieldAddress:       p.Address != "",
		fieldExactAddress:  p.HasExactAddress(),
		fieldFolder:        p.FolderID != "",
		fieldPrice:         p.Price != 0,
		fieldFees:          p.Fees != 0,
		fieldSqft:          p.Sqft != 0,
		fieldCoveredSqft:   p.CoveredSqft != 0,
		fieldUncoveredSqft: p.UncoveredSqft != 0,
		fieldEnvironments:  p.Environments != 0,
		fieldRooms:         p.Rooms != 0,
		fieldBathrooms:     p.Bathrooms != 0,
		fieldToilets:       p.Toilets != 0,
		fieldParking:       p.Parking != 0,
		fieldAge:           p.Age != 0,
		fieldFloor:         p.Floor != "",
		fieldStatus:        p.Status != "",
		fieldRating:        p.Rating != 0,
		fieldNotes:         p.Notes != "",
		fieldImages:        len(p.Images) > 0,
		fieldLocation:      p.Location != nil,
		fieldRenovations:   len(p.RenovationCosts) > 0,
	}
	for field, ok := range stored {
		if ok {
			d.mark(field, ProvenanceStored)
		}
	}
	return d
}
