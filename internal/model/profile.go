package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStaff = "staff"
	RoleVC    = "vc"
)

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
