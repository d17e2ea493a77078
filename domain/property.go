package domain

import (
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Property is a rental unit owned by exactly one owner. CleaningDuration is
// the minutes a full clean takes and feeds the cleaning-window feasibility
// check.
type Property struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	CleaningDuration int       `json:"cleaning_duration"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

type Properties []*Property

func (p *Properties) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(p)
}

func (p *Property) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(p)
}

func (p *Property) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(p)
}

// PropertyFormData is the payload accepted from UI forms when creating or
// updating a property.
type PropertyFormData struct {
	CleaningDuration int  `json:"cleaning_duration" validate:"required,min=15,max=1440"`
	Active           bool `json:"active"`
}

func (f *PropertyFormData) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(f)
}
