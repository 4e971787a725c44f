package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
	"github.com/pocketcoach/coaching/core/student"
)

const (
	studentColumns = "id, name, phone_number, institution, email, photo, gpa, discount, branch_id, created_at, updated_at"
	paymentColumns = "id, student_id, amount, date, note, installment_number, created_at, updated_at"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to the given not-found error.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps a psql unique-constraint violation to the given error.
func trapUniqueErr(err, unique error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return unique
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckPhoneUniqueness(ctx context.Context, phoneNumber string, excludedStudents []student.Student, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM student WHERE phone_number = $1 AND NOT (id = ANY ($2)))`
	ids := make([]string, 0, len(excludedStudents))
	for _, st := range excludedStudents {
		ids = append(ids, st.ID)
	}

	var exists bool
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &exists, q, phoneNumber, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	if exists {
		return student.ErrPhoneExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `INSERT INTO student (` + studentColumns + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		st.ID, st.Name, st.PhoneNumber, st.Institution, st.Email, st.Photo, st.GPA,
		st.Discount, st.BranchID, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, trapUniqueErr(err, student.ErrPhoneExists, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	exe := repo.getExec(exec)

	var st student.Student
	q := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
	if err := sqlx.GetContext(ctx, exe, &st, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}

	if err := repo.loadAssociations(ctx, exe, []*student.Student{&st}); err != nil {
		return student.Student{}, err
	}
	return st, nil
}

// loadAssociations populates Batches and Payments for the given students with
// one query per association.
func (repo studentRepository) loadAssociations(ctx context.Context, exe core.DBExecutor, students []*student.Student) error {
	if len(students) == 0 {
		return nil
	}
	byID := make(map[string]*student.Student, len(students))
	ids := make([]string, 0, len(students))
	for _, st := range students {
		st.Batches = []batch.Batch{}
		st.Payments = []student.Payment{}
		byID[st.ID] = st
		ids = append(ids, st.ID)
	}

	type enrolledBatch struct {
		batch.Batch
		StudentID string `db:"student_id"`
	}
	var batches []enrolledBatch
	bq := `SELECT sb.student_id, b.id, b.batch_code, b.name, b.cost, b.category_id, b.created_at, b.updated_at
	       FROM batch b
	       JOIN student_batch sb ON sb.batch_id = b.id
	       WHERE sb.student_id = ANY ($1)
	       ORDER BY b.created_at`
	if err := sqlx.SelectContext(ctx, exe, &batches, bq, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "loading enrolled batches")
	}
	for _, eb := range batches {
		st := byID[eb.StudentID]
		st.Batches = append(st.Batches, eb.Batch)
	}

	var payments []student.Payment
	payQ := `SELECT ` + paymentColumns + ` FROM student_payment
	        WHERE student_id = ANY ($1)
	        ORDER BY installment_number, date`
	if err := sqlx.SelectContext(ctx, exe, &payments, payQ, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "loading payments")
	}
	for _, p := range payments {
		st := byID[p.StudentID]
		st.Payments = append(st.Payments, p)
	}
	return nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, int, error) {
	exe := repo.getExec(exec)

	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE %s OR phone_number ILIKE %s OR institution ILIKE %s)",
			arg(val), arg(val), arg(val)))
	}
	if filter.Institution != "" {
		conds = append(conds, fmt.Sprintf("institution ILIKE %s", arg("%"+filter.Institution+"%")))
	}
	if filter.BranchID != "" {
		conds = append(conds, fmt.Sprintf("branch_id::text = %s", arg(filter.BranchID)))
	}
	if filter.BatchID != "" {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM student_batch sb WHERE sb.student_id = student.id AND sb.batch_id::text = %s)",
			arg(filter.BatchID)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var totalCount int
	if err := sqlx.GetContext(ctx, exe, &totalCount, "SELECT COUNT(*) FROM student"+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}

	orderBy := ""
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		orderBy = " ORDER BY " + strings.Join(orderList, ", ")
	}

	q := `SELECT ` + studentColumns + ` FROM student` + where + orderBy +
		fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filter.Limit), arg((filter.Page-1)*filter.Limit))

	var students []student.Student
	if err := sqlx.SelectContext(ctx, exe, &students, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying students")
	}

	ptrs := make([]*student.Student, len(students))
	for i := range students {
		ptrs[i] = &students[i]
	}
	if err := repo.loadAssociations(ctx, exe, ptrs); err != nil {
		return nil, 0, err
	}
	return students, totalCount, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `UPDATE student
	      SET name = $2, phone_number = $3, institution = $4, email = $5, photo = $6,
	          gpa = $7, discount = $8, branch_id = $9, updated_at = $10
	      WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		st.ID, st.Name, st.PhoneNumber, st.Institution, st.Email, st.Photo, st.GPA,
		st.Discount, st.BranchID, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, trapUniqueErr(err, student.ErrPhoneExists, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo studentRepository) ReplaceEnrollments(ctx context.Context, studentID string, batchIDs []string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	if _, err := exe.ExecContext(ctx, `DELETE FROM student_batch WHERE student_id = $1`, studentID); err != nil {
		return errors.Wrap(err, "clearing enrollments")
	}
	if len(batchIDs) == 0 {
		return nil
	}
	q := `INSERT INTO student_batch (student_id, batch_id) SELECT $1, unnest($2::uuid[])`
	if _, err := exe.ExecContext(ctx, q, studentID, pq.Array(batchIDs)); err != nil {
		return errors.Wrap(err, "inserting enrollments")
	}
	return nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) InsertPayment(ctx context.Context, p student.Payment, exec ...core.DBExecutor) (student.Payment, error) {
	q := `INSERT INTO student_payment (` + paymentColumns + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		p.ID, p.StudentID, p.Amount, p.Date, p.Note, p.InstallmentNumber, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return student.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo studentRepository) GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (student.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Payment{}, student.ErrPaymentNotFound
	}

	var p student.Payment
	q := `SELECT ` + paymentColumns + ` FROM student_payment WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &p, q, id); err != nil {
		return student.Payment{}, trapNoRowsErr(err, student.ErrPaymentNotFound, "finding payment by ID")
	}
	return p, nil
}

func (repo studentRepository) UpdatePayment(ctx context.Context, p student.Payment, exec ...core.DBExecutor) (student.Payment, error) {
	q := `UPDATE student_payment
	      SET amount = $2, date = $3, note = $4, installment_number = $5, updated_at = $6
	      WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		p.ID, p.Amount, p.Date, p.Note, p.InstallmentNumber, p.UpdatedAt,
	)
	if err != nil {
		return student.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Payment{}, student.ErrPaymentNotFound
	}
	return p, nil
}

func (repo studentRepository) DeletePaymentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM student_payment WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting payments")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
