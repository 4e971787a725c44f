package student

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPhoneExists     = errors.New("a student with this phone number already exists")
)

const defaultInitialPaymentNote = "Initial payment"

type (
	Repository interface {
		CheckPhoneUniqueness(ctx context.Context, phoneNumber string, excludedStudents []Student, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		// GetStudent returns the student with its enrolled batches and
		// payments loaded.
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter
		// fields and returns one page plus the total match count.
		FilterStudents(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, int, error)
		UpdateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		// ReplaceEnrollments replaces the student's enrollment set wholesale.
		ReplaceEnrollments(ctx context.Context, studentID string, batchIDs []string, exec ...core.DBExecutor) error
		DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error

		InsertPayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (Payment, error)
		UpdatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		DeletePaymentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewStudent) (StudentWithDue, error)
		GetByID(ctx context.Context, id string) (StudentWithDue, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) (PaginatedStudents, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		CalculateDue(ctx context.Context, id string, exec ...core.DBExecutor) (Due, error)
		AddPayment(ctx context.Context, studentID string, np NewPayment) (Payment, error)
		UpdatePayment(ctx context.Context, paymentID string, up UpdatePayment) (Payment, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		batches batch.ServiceInterface
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(db core.DB, repo Repository, batchSvc batch.ServiceInterface) *Service {
	return &Service{db: db, repo: repo, batches: batchSvc}
}

// enrollmentIDs extracts the ids of the resolved batches. Enrollments are
// always persisted from this set, never from the raw request ids, so a
// repeated id in the request cannot produce a duplicate enrollment row.
func enrollmentIDs(batches []batch.Batch) []string {
	ids := make([]string, 0, len(batches))
	for _, b := range batches {
		ids = append(ids, b.ID)
	}
	return ids
}

func (svc *Service) checkUniqueness(ctx context.Context, phone string, exclStudents ...Student) error {
	if err := svc.repo.CheckPhoneUniqueness(ctx, phone, exclStudents); err != nil {
		if err == ErrPhoneExists {
			return core.NewConflictError(err)
		}
		return err
	}
	return nil
}

// Create creates a student, its enrollment set and an optional initial
// payment as a single unit of work: either all rows land or none do.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (StudentWithDue, error) {
	if err := svc.checkUniqueness(ctx, ns.PhoneNumber); err != nil {
		return StudentWithDue{}, err
	}

	now := time.Now().UTC()
	st := Student{
		ID:          uuid.New().String(),
		Name:        ns.Name,
		PhoneNumber: ns.PhoneNumber,
		Institution: ns.Institution,
		Email:       ns.Email.String,
		Photo:       ns.Photo.String,
		GPA:         ns.GPA.Float64,
		BranchID:    ns.BranchID.String,
		Discount:    decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ns.Discount.Set && ns.Discount.NullDecimal.Valid {
		st.Discount = ns.Discount.NullDecimal.Decimal
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return StudentWithDue{}, err
	}

	st, err = svc.repo.CreateStudent(ctx, st, tx)
	if err != nil {
		_ = tx.Rollback()
		if err == ErrPhoneExists {
			return StudentWithDue{}, core.NewConflictError(err)
		}
		return StudentWithDue{}, err
	}

	if len(ns.BatchIDs) > 0 {
		batches, err := svc.batches.ResolveByID(ctx, ns.BatchIDs, tx)
		if err != nil {
			_ = tx.Rollback()
			return StudentWithDue{}, err
		}
		if err = svc.repo.ReplaceEnrollments(ctx, st.ID, enrollmentIDs(batches), tx); err != nil {
			_ = tx.Rollback()
			return StudentWithDue{}, err
		}
		st.Batches = batches
	}

	if amt := ns.InitialPaymentAmount; amt.Set && amt.NullDecimal.Valid && amt.NullDecimal.Decimal.IsPositive() {
		pmt := Payment{
			ID:                uuid.New().String(),
			StudentID:         st.ID,
			Amount:            amt.NullDecimal.Decimal,
			Date:              now,
			Note:              null.StringFrom(defaultInitialPaymentNote),
			InstallmentNumber: 1,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if ns.PaymentDate.Set && ns.PaymentDate.Time.Valid {
			pmt.Date = ns.PaymentDate.Time.Time.UTC()
		}
		if ns.PaymentNote.Set && ns.PaymentNote.String.Valid {
			pmt.Note = ns.PaymentNote.String
		}
		pmt, err = svc.repo.InsertPayment(ctx, pmt, tx)
		if err != nil {
			_ = tx.Rollback()
			return StudentWithDue{}, err
		}
		st.Payments = append(st.Payments, pmt)
	}

	if err = tx.Commit(); err != nil {
		return StudentWithDue{}, err
	}
	return NewStudentWithDue(st), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (StudentWithDue, error) {
	st, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return StudentWithDue{}, err
	}
	return NewStudentWithDue(st), nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) (PaginatedStudents, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	students, totalCount, err := svc.repo.FilterStudents(ctx, filter, ordering)
	if err != nil {
		return PaginatedStudents{}, err
	}

	data := make([]StudentWithDue, 0, len(students))
	for _, st := range students {
		data = append(data, NewStudentWithDue(st))
	}
	return PaginatedStudents{
		Data:       data,
		Pagination: core.NewPagination(filter.Page, filter.Limit, totalCount),
	}, nil
}

// Update applies a partial update to the student's own fields and, when
// batchIds is present, replaces the enrollment set — both inside one unit of
// work. Payment rows are never touched through this path.
func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, err
	}

	st, err := svc.repo.GetStudent(ctx, id, tx)
	if err != nil {
		_ = tx.Rollback()
		return Student{}, err
	}

	if us.Name.Set && us.Name.String.Valid {
		if name := core.CleanString(us.Name.String.String); name != "" {
			st.Name = name
		}
	}
	if us.PhoneNumber.Set && us.PhoneNumber.String.Valid {
		if phone := core.CleanString(us.PhoneNumber.String.String); phone != "" && phone != st.PhoneNumber {
			if err := svc.checkUniqueness(ctx, phone, st); err != nil {
				_ = tx.Rollback()
				return Student{}, err
			}
			st.PhoneNumber = phone
		}
	}
	if us.Institution.Set && us.Institution.String.Valid {
		if inst := core.CleanString(us.Institution.String.String); inst != "" {
			st.Institution = inst
		}
	}
	if us.Email.Set {
		st.Email = us.Email.String
	}
	if us.Photo.Set {
		st.Photo = us.Photo.String
	}
	if us.GPA.Set {
		st.GPA = us.GPA.Float64
	}
	if us.BranchID.Set {
		st.BranchID = us.BranchID.String
	}
	if us.Discount.Set {
		st.Discount = decimal.Zero
		if us.Discount.NullDecimal.Valid {
			st.Discount = us.Discount.NullDecimal.Decimal
		}
	}
	st.UpdatedAt = time.Now().UTC()

	st, err = svc.repo.UpdateStudent(ctx, st, tx)
	if err != nil {
		_ = tx.Rollback()
		if err == ErrPhoneExists {
			return Student{}, core.NewConflictError(err)
		}
		return Student{}, err
	}

	if us.BatchIDs != nil {
		batches, err := svc.batches.ResolveByID(ctx, *us.BatchIDs, tx)
		if err != nil {
			_ = tx.Rollback()
			return Student{}, err
		}
		if err = svc.repo.ReplaceEnrollments(ctx, st.ID, enrollmentIDs(batches), tx); err != nil {
			_ = tx.Rollback()
			return Student{}, err
		}
		st.Batches = batches
	}

	if err = tx.Commit(); err != nil {
		return Student{}, err
	}
	return st, nil
}

// Delete removes the student's payments, enrollments and the student row in
// one unit of work so a partially deleted student is never observable.
func (svc *Service) Delete(ctx context.Context, id string) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = svc.repo.GetStudent(ctx, id, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err = svc.repo.DeletePaymentsByStudent(ctx, id, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = svc.repo.ReplaceEnrollments(ctx, id, nil, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = svc.repo.DeleteStudent(ctx, id, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CalculateDue recomputes the student's due summary. Pass the surrounding
// transaction as exec when calling from within a write operation so the
// computation sees that operation's uncommitted rows.
func (svc *Service) CalculateDue(ctx context.Context, id string, exec ...core.DBExecutor) (Due, error) {
	st, err := svc.repo.GetStudent(ctx, id, exec...)
	if err != nil {
		return Due{}, err
	}
	return st.CalculateDue(), nil
}

// AddPayment appends one payment row to the student's ledger. The remaining
// due is recomputed inside the payment's own transaction and the payment is
// rejected when it exceeds it; two callers paying concurrently can still
// both pass this check under read-committed isolation.
func (svc *Service) AddPayment(ctx context.Context, studentID string, np NewPayment) (Payment, error) {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Payment{}, err
	}

	st, err := svc.repo.GetStudent(ctx, studentID, tx)
	if err != nil {
		_ = tx.Rollback()
		return Payment{}, err
	}

	if due := st.CalculateDue(); np.Amount.GreaterThan(due.FinalDue) {
		_ = tx.Rollback()
		return Payment{}, core.NewValidationError(nil, core.FieldError{
			Field: "amount",
			Error: "payment exceeds the remaining due of " + due.FinalDue.String(),
		})
	}

	now := time.Now().UTC()
	pmt := Payment{
		ID:                uuid.New().String(),
		StudentID:         st.ID,
		Amount:            np.Amount,
		Date:              now,
		InstallmentNumber: np.InstallmentNumber,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if np.Date.Set && np.Date.Time.Valid {
		pmt.Date = np.Date.Time.Time.UTC()
	}
	if np.Note.Set && np.Note.String.Valid {
		pmt.Note = np.Note.String
	}

	pmt, err = svc.repo.InsertPayment(ctx, pmt, tx)
	if err != nil {
		_ = tx.Rollback()
		return Payment{}, err
	}
	if err = tx.Commit(); err != nil {
		return Payment{}, err
	}
	return pmt, nil
}

// UpdatePayment edits a payment row directly; every later due computation
// for the owning student reflects the change. Restricted to privileged
// callers at the API boundary.
func (svc *Service) UpdatePayment(ctx context.Context, paymentID string, up UpdatePayment) (Payment, error) {
	pmt, err := svc.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}

	if up.Amount.Set && up.Amount.NullDecimal.Valid {
		pmt.Amount = up.Amount.NullDecimal.Decimal
	}
	if up.Date.Set && up.Date.Time.Valid {
		pmt.Date = up.Date.Time.Time.UTC()
	}
	if up.Note.Set {
		pmt.Note = up.Note.String
	}
	if up.InstallmentNumber != nil {
		pmt.InstallmentNumber = *up.InstallmentNumber
	}
	pmt.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdatePayment(ctx, pmt)
}
