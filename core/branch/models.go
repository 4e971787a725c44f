package branch

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
)

type Branch struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Address   null.String `json:"address" db:"address"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// NewBranch contains information needed to create a new Branch.
type NewBranch struct {
	Name    string         `json:"name" validate:"required"`
	Address core.OptString `json:"address"`
}

func (nb *NewBranch) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	return validate.Struct(nb)
}

// UpdateBranch defines what information may be provided to modify an existing
// Branch. Absent fields are left unchanged.
type UpdateBranch struct {
	Name    core.OptString `json:"name"`
	Address core.OptString `json:"address"`
}
