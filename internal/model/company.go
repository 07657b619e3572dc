package model

import (
	"maps"
	"slices"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CompanyStatusActive = "Active"
)

type CompanyMetadata struct {
	TeamSize    *int    `json:"team_size,omitempty"`
	Performance *string `json:"performance,omitempty"`
	Description *string `json:"description,omitempty"`
	HQLocation  *string `json:"hq_location,omitempty"`
	// snapshot of headline metrics shown on the company card
	Metrics map[string]float64 `json:"metrics"`
}

type Company struct {
	ID           uuid.UUID       `json:"company_id"`
	Name         string          `json:"name"`
	Industry     string          `json:"industry"`
	FoundingDate calendar.Date   `json:"founding_date"`
	Status       string          `json:"status"`
	Metadata     CompanyMetadata `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CompanyDraft is the editable subset of a company held while editing.
type CompanyDraft struct {
	Name         string          `json:"name"`
	Industry     string          `json:"industry"`
	FoundingDate calendar.Date   `json:"founding_date"`
	Status       string          `json:"status"`
	Metadata     CompanyMetadata `json:"metadata"`
}

func NewCompanyDraft(c Company) CompanyDraft {
	md := c.Metadata
	md.Metrics = maps.Clone(c.Metadata.Metrics)
	return CompanyDraft{
		Name:         c.Name,
		Industry:     c.Industry,
		FoundingDate: c.FoundingDate,
		Status:       c.Status,
		Metadata:     md,
	}
}

// Fields a CompanyPatch can reset to empty.
const (
	FieldFoundingDate = "founding_date"
	FieldTeamSize     = "team_size"
	FieldPerformance  = "performance"
	FieldDescription  = "description"
	FieldHQLocation   = "hq_location"
)

// MetadataFields are the clearable fields stored inside the metadata document.
var MetadataFields = []string{FieldTeamSize, FieldPerformance, FieldDescription, FieldHQLocation}

func IsClearable(field string) bool {
	return field == FieldFoundingDate || slices.Contains(MetadataFields, field)
}

// Patch turns the whole draft into a partial update. Empty optional fields are cleared.
func (d CompanyDraft) Patch() CompanyPatch {
	name, industry, status, founding := d.Name, d.Industry, d.Status, d.FoundingDate
	p := CompanyPatch{
		Name:     &name,
		Industry: &industry,
		Metadata: &MetadataPatch{
			TeamSize:    d.Metadata.TeamSize,
			Performance: d.Metadata.Performance,
			Description: d.Metadata.Description,
			HQLocation:  d.Metadata.HQLocation,
		},
	}
	if status != "" {
		p.Status = &status
	}
	if founding.IsZero() {
		p.Clear = append(p.Clear, FieldFoundingDate)
	} else {
		p.FoundingDate = &founding
	}
	if d.Metadata.TeamSize == nil {
		p.Clear = append(p.Clear, FieldTeamSize)
	}
	if d.Metadata.Performance == nil {
		p.Clear = append(p.Clear, FieldPerformance)
	}
	if d.Metadata.Description == nil {
		p.Clear = append(p.Clear, FieldDescription)
	}
	if d.Metadata.HQLocation == nil {
		p.Clear = append(p.Clear, FieldHQLocation)
	}
	return p
}

// CompanyPatch is a typed partial update: nil fields are left untouched, fields named in Clear
// are emptied.
type CompanyPatch struct {
	Name         *string        `json:"name,omitempty"`
	Industry     *string        `json:"industry,omitempty"`
	FoundingDate *calendar.Date `json:"founding_date,omitempty"`
	Status       *string        `json:"status,omitempty"`
	Metadata     *MetadataPatch `json:"metadata,omitempty"`
	Clear        []string       `json:"clear,omitempty"`
}

type MetadataPatch struct {
	TeamSize    *int    `json:"team_size,omitempty"`
	Performance *string `json:"performance,omitempty"`
	Description *string `json:"description,omitempty"`
	HQLocation  *string `json:"hq_location,omitempty"`
}

func (p CompanyPatch) IsEmpty() bool {
	return p.Name == nil && p.Industry == nil && p.FoundingDate == nil && p.Status == nil &&
		(p.Metadata == nil || *p.Metadata == MetadataPatch{}) && len(p.Clear) == 0
}

// ClearsFoundingDate reports whether the patch empties the founding date.
func (p CompanyPatch) ClearsFoundingDate() bool {
	return slices.Contains(p.Clear, FieldFoundingDate)
}

// ClearedMetadataKeys lists the metadata keys the patch removes.
func (p CompanyPatch) ClearedMetadataKeys() []string {
	keys := []string{}
	for _, field := range p.Clear {
		if slices.Contains(MetadataFields, field) {
			keys = append(keys, field)
		}
	}
	return keys
}

// Apply returns c with the patch applied, used to keep cached copies consistent.
func (p CompanyPatch) Apply(c Company) Company {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Industry != nil {
		c.Industry = *p.Industry
	}
	if p.FoundingDate != nil {
		c.FoundingDate = *p.FoundingDate
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Metadata != nil {
		if p.Metadata.TeamSize != nil {
			c.Metadata.TeamSize = p.Metadata.TeamSize
		}
		if p.Metadata.Performance != nil {
			c.Metadata.Performance = p.Metadata.Performance
		}
		if p.Metadata.Description != nil {
			c.Metadata.Description = p.Metadata.Description
		}
		if p.Metadata.HQLocation != nil {
			c.Metadata.HQLocation = p.Metadata.HQLocation
		}
	}
	for _, field := range p.Clear {
		switch field {
		case FieldFoundingDate:
			c.FoundingDate = calendar.Date{}
		case FieldTeamSize:
			c.Metadata.TeamSize = nil
		case FieldPerformance:
			c.Metadata.Performance = nil
		case FieldDescription:
			c.Metadata.Description = nil
		case FieldHQLocation:
			c.Metadata.HQLocation = nil
		}
	}
	return c
}

type OwnershipSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// CompanyOverview is the company dashboard view.
type CompanyOverview struct {
	Company        Company          `json:"company"`
	LatestMetrics  *MetricsRecord   `json:"latest_metrics"`
	StakeValue     decimal.Decimal  `json:"stake_value"`
	Ownership      []OwnershipSlice `json:"ownership"`
	RunwayProgress decimal.Decimal  `json:"runway_progress"`
	MetricsEntries int              `json:"metrics_entries"`
}
