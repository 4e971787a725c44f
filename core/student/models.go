package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
)

type Student struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	PhoneNumber string          `json:"phoneNumber" db:"phone_number"`
	Institution string          `json:"institution" db:"institution"`
	Email       null.String     `json:"email" db:"email"`
	Photo       null.String     `json:"photo" db:"photo"`
	GPA         null.Float64    `json:"gpa" db:"gpa"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	BranchID    null.String     `json:"coachingBranchId" db:"branch_id"`
	Batches     []batch.Batch   `json:"batches" db:"-"`
	Payments    []Payment       `json:"payments" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"` // UTC
}

type Payment struct {
	ID                string          `json:"id" db:"id"`
	StudentID         string          `json:"studentId" db:"student_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Date              time.Time       `json:"date" db:"date"`
	Note              null.String     `json:"note" db:"note"`
	InstallmentNumber int             `json:"installmentNumber" db:"installment_number"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"` // UTC
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"` // UTC
}

// Due is a student's financial summary, always derived from the enrolled
// batches and payment rows at read time — it is never persisted or cached.
type Due struct {
	InitialDue decimal.Decimal `json:"initialDue"`
	Discount   decimal.Decimal `json:"discount"`
	TotalPaid  decimal.Decimal `json:"totalPaid"`
	FinalDue   decimal.Decimal `json:"finalDue"`
}

// CalculateDue computes the financial summary from the student's loaded
// associations: initialDue is the sum of enrolled batch costs, totalPaid the
// sum of all payment amounts, and finalDue = initialDue - discount -
// totalPaid floored at zero.
func (s Student) CalculateDue() Due {
	initialDue := decimal.Zero
	for _, b := range s.Batches {
		initialDue = initialDue.Add(b.Cost)
	}
	totalPaid := decimal.Zero
	for _, p := range s.Payments {
		totalPaid = totalPaid.Add(p.Amount)
	}
	finalDue := initialDue.Sub(s.Discount).Sub(totalPaid)
	if finalDue.IsNegative() {
		finalDue = decimal.Zero
	}
	return Due{
		InitialDue: initialDue,
		Discount:   s.Discount,
		TotalPaid:  totalPaid,
		FinalDue:   finalDue,
	}
}

// StudentWithDue merges a student's fields with its derived due summary,
// the shape returned by the read endpoints. The student's own discount field
// doubles as the summary's discount.
type StudentWithDue struct {
	Student
	InitialDue decimal.Decimal `json:"initialDue"`
	TotalPaid  decimal.Decimal `json:"totalPaid"`
	FinalDue   decimal.Decimal `json:"finalDue"`
}

func NewStudentWithDue(st Student) StudentWithDue {
	due := st.CalculateDue()
	return StudentWithDue{
		Student:    st,
		InitialDue: due.InitialDue,
		TotalPaid:  due.TotalPaid,
		FinalDue:   due.FinalDue,
	}
}

// NewStudent contains information needed to create a new Student, optionally
// with an initial enrollment set and an initial payment.
type NewStudent struct {
	Name        string          `json:"name" validate:"required"`
	PhoneNumber string          `json:"phoneNumber" validate:"required"`
	Institution string          `json:"institution" validate:"required"`
	Email       core.OptString  `json:"email"`
	Photo       core.OptString  `json:"photo"`
	GPA         core.OptFloat64 `json:"gpa"`
	BranchID    core.OptString  `json:"coachingBranchId"`
	Discount    core.OptDecimal `json:"discount"`
	BatchIDs    []string        `json:"batchIds"`

	InitialPaymentAmount core.OptDecimal `json:"initialPaymentAmount"`
	PaymentDate          core.OptTime    `json:"paymentDate"`
	PaymentNote          core.OptString  `json:"paymentNote"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.PhoneNumber = core.CleanString(ns.PhoneNumber)
	ns.Institution = core.CleanString(ns.Institution)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.Discount.Set && ns.Discount.NullDecimal.Valid && ns.Discount.NullDecimal.Decimal.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "discount", Error: "discount cannot be negative"})
	}
	return nil
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Absent fields are left unchanged; explicit null clears
// nullable fields. Payment data is never touched through this path.
type UpdateStudent struct {
	Name        core.OptString  `json:"name"`
	PhoneNumber core.OptString  `json:"phoneNumber"`
	Institution core.OptString  `json:"institution"`
	Email       core.OptString  `json:"email"`
	Photo       core.OptString  `json:"photo"`
	GPA         core.OptFloat64 `json:"gpa"`
	BranchID    core.OptString  `json:"coachingBranchId"`
	Discount    core.OptDecimal `json:"discount"`
	// BatchIDs, when present (even empty), replaces the enrollment set
	// wholesale; an empty array un-enrolls from everything.
	BatchIDs *[]string `json:"batchIds"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	if err := validate.Struct(us); err != nil {
		return err
	}
	if us.Discount.Set && us.Discount.NullDecimal.Valid && us.Discount.NullDecimal.Decimal.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "discount", Error: "discount cannot be negative"})
	}
	return nil
}

// NewPayment contains information needed to append a Payment to a student's
// ledger. The installment number is caller-supplied, not derived.
type NewPayment struct {
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	Date              core.OptTime    `json:"date"`
	Note              core.OptString  `json:"note"`
	InstallmentNumber int             `json:"installmentNumber" validate:"required,gte=1"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}

// UpdatePayment defines what information may be provided to modify an
// existing Payment. Restricted to privileged callers at the API boundary.
type UpdatePayment struct {
	Amount            core.OptDecimal `json:"amount"`
	Date              core.OptTime    `json:"date"`
	Note              core.OptString  `json:"note"`
	InstallmentNumber *int            `json:"installmentNumber"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.Amount.Set && (!up.Amount.NullDecimal.Valid || !up.Amount.NullDecimal.Decimal.IsPositive()) {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount must be a positive number"})
	}
	if up.InstallmentNumber != nil && *up.InstallmentNumber < 1 {
		return core.NewValidationError(nil, core.FieldError{Field: "installmentNumber", Error: "installment number must be at least 1"})
	}
	return nil
}

// QueryFilter applies AND semantics on its fields; Search does a
// case-insensitive match on one of name, phone number or institution.
type QueryFilter struct {
	Search      string `query:"search"`
	Institution string `query:"institution"`
	BatchID     string `query:"batchId"`
	BranchID    string `query:"branchId"`
	Page        int    `query:"page"`
	Limit       int    `query:"limit"`
}

func (qf *QueryFilter) Clean(defaultPageSize, maxPageSize int) {
	qf.Search = core.CleanString(qf.Search)
	qf.Institution = core.CleanString(qf.Institution)
	if qf.Page < 1 {
		qf.Page = 1
	}
	if qf.Limit < 1 {
		qf.Limit = defaultPageSize
	}
	if qf.Limit > maxPageSize {
		qf.Limit = maxPageSize
	}
}

// PaginatedStudents is one page of students, each merged with its due summary.
type PaginatedStudents struct {
	Data       []StudentWithDue `json:"data"`
	Pagination core.Pagination  `json:"pagination"`
}
