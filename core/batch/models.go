package batch

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
)

type Batch struct {
	ID         string          `json:"id" db:"id"`
	BatchCode  string          `json:"batchCode" db:"batch_code"`
	Name       string          `json:"name" db:"name"`
	Cost       decimal.Decimal `json:"cost" db:"cost"`
	CategoryID null.String     `json:"categoryId" db:"category_id"`
	BranchIDs  []string        `json:"branchIds" db:"-"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"` // UTC
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"` // UTC
}

type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewBatch contains information needed to create a new Batch.
type NewBatch struct {
	BatchCode  string          `json:"batchCode" validate:"required,alphanum_"`
	Name       string          `json:"name" validate:"required"`
	Cost       decimal.Decimal `json:"cost" validate:"gte=0"`
	CategoryID core.OptString  `json:"categoryId"`
	BranchIDs  []string        `json:"branchIds"`
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	nb.BatchCode = core.CleanString(nb.BatchCode)
	nb.Name = core.CleanString(nb.Name)
	return validate.Struct(nb)
}

// UpdateBatch defines what information may be provided to modify an existing
// Batch. Absent fields are left unchanged.
type UpdateBatch struct {
	BatchCode  core.OptString  `json:"batchCode"`
	Name       core.OptString  `json:"name"`
	Cost       core.OptDecimal `json:"cost"`
	CategoryID core.OptString  `json:"categoryId"`
	BranchIDs  *[]string       `json:"branchIds"`
}

func (ub *UpdateBatch) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ub); err != nil {
		return err
	}
	if ub.Cost.Set && ub.Cost.NullDecimal.Valid && ub.Cost.NullDecimal.Decimal.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "cost", Error: "cost cannot be negative"})
	}
	return nil
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}
