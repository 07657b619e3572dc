package dbModel

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type File struct {
	FileID     uuid.UUID     `db:"file_id"`
	FundID     uuid.NullUUID `db:"fund_id"`
	Name       string        `db:"name"`
	Path       string        `db:"path"`
	Size       int64         `db:"size"`
	Type       string        `db:"type"`
	UploadedBy uuid.NullUUID `db:"uploaded_by"`
	CreatedAt  time.Time     `db:"created_at"`
}

type InvestorUpdate struct {
	ID             uuid.UUID      `db:"id"`
	CompanyID      uuid.NullUUID  `db:"company_id"`
	Title          string         `db:"title"`
	Content        sql.NullString `db:"content"`
	AttachmentPath sql.NullString `db:"attachment_path"`
	CreatedAt      time.Time      `db:"created_at"`
}
