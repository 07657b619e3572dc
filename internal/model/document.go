package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FileTypeDocument = "document"
	FileTypeReport   = "report"
)

type File struct {
	ID         uuid.UUID  `json:"file_id"`
	FundID     uuid.UUID  `json:"fund_id"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	Size       int64      `json:"size"`
	Type       string     `json:"type"`
	UploadedBy *uuid.UUID `json:"uploaded_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

type InvestorUpdate struct {
	ID             uuid.UUID `json:"id"`
	CompanyID      uuid.UUID `json:"company_id"`
	Title          string    `json:"title"`
	Content        *string   `json:"content"`
	ContentHTML    string    `json:"content_html,omitempty"`
	AttachmentPath *string   `json:"attachment_path"`
	CreatedAt      time.Time `json:"created_at"`
}
