package student_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
	"github.com/pocketcoach/coaching/core/student"
	dummydb "github.com/pocketcoach/coaching/storage/database/dummy"
)

type testEnv struct {
	db       *dummydb.DB
	repo     student.Repository
	batchSvc batch.ServiceInterface
	svc      student.ServiceInterface
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewStudentRepository(db)
	batchSvc := batch.NewService(db, dummydb.NewBatchRepository(db))
	return &testEnv{
		db:       db,
		repo:     repo,
		batchSvc: batchSvc,
		svc:      student.NewService(db, repo, batchSvc),
	}
}

func (env *testEnv) createBatch(t *testing.T, code, cost string) batch.Batch {
	t.Helper()
	bat, err := env.batchSvc.Create(context.Background(), batch.NewBatch{
		BatchCode: code,
		Name:      "Batch " + code,
		Cost:      dec(cost),
	})
	if err != nil {
		t.Fatalf("creating batch %s failed: %v", code, err)
	}
	return bat
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func optDec(v string) core.OptDecimal {
	return core.OptDecimal{NullDecimal: decimal.NewNullDecimal(dec(v)), Set: true}
}

func optStr(v string) core.OptString {
	return core.OptString{String: null.StringFrom(v), Set: true}
}

func checkDec(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestStudent_CalculateDue(t *testing.T) {
	tests := []struct {
		name     string
		batches  []string // costs
		discount string
		payments []string // amounts
		want     student.Due
	}{
		{
			name: "no enrollments and no payments yields zeros", discount: "0",
			want: student.Due{InitialDue: dec("0"), Discount: dec("0"), TotalPaid: dec("0"), FinalDue: dec("0")},
		},
		{
			name: "initial due is the sum of batch costs", batches: []string{"5000", "3000"}, discount: "0",
			want: student.Due{InitialDue: dec("8000"), Discount: dec("0"), TotalPaid: dec("0"), FinalDue: dec("8000")},
		},
		{
			name: "discount and payments reduce the final due",
			batches: []string{"5000", "3000"}, discount: "1000", payments: []string{"2000", "1500"},
			want: student.Due{InitialDue: dec("8000"), Discount: dec("1000"), TotalPaid: dec("3500"), FinalDue: dec("3500")},
		},
		{
			name:    "final due is floored at zero",
			batches: []string{"1000"}, discount: "500", payments: []string{"800"},
			want: student.Due{InitialDue: dec("1000"), Discount: dec("500"), TotalPaid: dec("800"), FinalDue: dec("0")},
		},
		{
			name: "discount alone can cover the whole due", batches: []string{"700"}, discount: "700",
			want: student.Due{InitialDue: dec("700"), Discount: dec("700"), TotalPaid: dec("0"), FinalDue: dec("0")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := student.Student{Discount: dec(tt.discount)}
			for _, cost := range tt.batches {
				st.Batches = append(st.Batches, batch.Batch{Cost: dec(cost)})
			}
			for _, amt := range tt.payments {
				st.Payments = append(st.Payments, student.Payment{Amount: dec(amt)})
			}

			got := st.CalculateDue()
			checkDec(t, "InitialDue", got.InitialDue, tt.want.InitialDue)
			checkDec(t, "Discount", got.Discount, tt.want.Discount)
			checkDec(t, "TotalPaid", got.TotalPaid, tt.want.TotalPaid)
			checkDec(t, "FinalDue", got.FinalDue, tt.want.FinalDue)

			// recomputing never mutates state
			again := st.CalculateDue()
			checkDec(t, "FinalDue (recomputed)", again.FinalDue, got.FinalDue)
		})
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "JEE01", "5000")
	b2 := env.createBatch(t, "NEET01", "3000")

	st, err := env.svc.Create(ctx, student.NewStudent{
		Name:                 "Asha Rahman",
		PhoneNumber:          "01711111111",
		Institution:          "City College",
		Discount:             optDec("1000"),
		BatchIDs:             []string{b1.ID, b2.ID},
		InitialPaymentAmount: optDec("3500"),
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	checkDec(t, "InitialDue", st.InitialDue, dec("8000"))
	checkDec(t, "TotalPaid", st.TotalPaid, dec("3500"))
	checkDec(t, "FinalDue", st.FinalDue, dec("3500"))
	if len(st.Batches) != 2 {
		t.Errorf("len(Batches) = %d, want 2", len(st.Batches))
	}
	if len(st.Payments) != 1 {
		t.Fatalf("len(Payments) = %d, want 1", len(st.Payments))
	}
	pmt := st.Payments[0]
	if pmt.InstallmentNumber != 1 {
		t.Errorf("InstallmentNumber = %d, want 1", pmt.InstallmentNumber)
	}
	if pmt.Note.String != "Initial payment" {
		t.Errorf("Note = %q, want %q", pmt.Note.String, "Initial payment")
	}

	// the snapshot survives a reload
	reloaded, err := env.svc.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	checkDec(t, "FinalDue (reloaded)", reloaded.FinalDue, dec("3500"))
}

func TestService_Create_withoutInitialPayment(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "HSC01", "4000")

	st, err := env.svc.Create(ctx, student.NewStudent{
		Name:        "Rahim Uddin",
		PhoneNumber: "01722222222",
		Institution: "Dhanmondi School",
		BatchIDs:    []string{b1.ID},
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	if len(st.Payments) != 0 {
		t.Errorf("len(Payments) = %d, want 0", len(st.Payments))
	}
	checkDec(t, "FinalDue", st.FinalDue, dec("4000"))
	checkDec(t, "Discount", st.Discount, dec("0"))
}

func TestService_Create_duplicateBatchIDs(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "DUP01", "1000")

	st, err := env.svc.Create(ctx, student.NewStudent{
		Name:        "Twice",
		PhoneNumber: "01811122233",
		Institution: "X",
		BatchIDs:    []string{b1.ID, b1.ID},
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	if len(st.Batches) != 1 {
		t.Errorf("len(Batches) = %d, want 1", len(st.Batches))
	}
	checkDec(t, "InitialDue", st.InitialDue, dec("1000"))

	// the stored enrollment set holds the batch once
	reloaded, err := env.svc.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	if len(reloaded.Batches) != 1 {
		t.Errorf("len(Batches) = %d after reload, want 1", len(reloaded.Batches))
	}
	checkDec(t, "InitialDue (reloaded)", reloaded.InitialDue, dec("1000"))

	ids := []string{b1.ID, b1.ID}
	if _, err = env.svc.Update(ctx, st.ID, student.UpdateStudent{BatchIDs: &ids}); err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}
	reloaded, err = env.svc.GetByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	if len(reloaded.Batches) != 1 {
		t.Errorf("len(Batches) = %d after update, want 1", len(reloaded.Batches))
	}
}

func TestService_Create_duplicatePhone(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	ns := student.NewStudent{Name: "First", PhoneNumber: "01733333333", Institution: "X"}
	if _, err := env.svc.Create(ctx, ns); err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	ns.Name = "Second"
	_, err := env.svc.Create(ctx, ns)
	if _, ok := errors.Cause(err).(*core.ConflictError); !ok {
		t.Fatalf("svc.Create() error = %v, want ConflictError", err)
	}

	page, err := env.svc.Filter(ctx, student.QueryFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("svc.Filter() failed: %v", err)
	}
	if page.Pagination.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", page.Pagination.TotalCount)
	}
}

func TestService_Create_unknownBatchRollsBack(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "SSC01", "2000")

	_, err := env.svc.Create(ctx, student.NewStudent{
		Name:        "Ghost",
		PhoneNumber: "01744444444",
		Institution: "X",
		BatchIDs:    []string{b1.ID, "4cd1f6a2-93ae-4c2b-93e0-1c1e5ef4a111"},
	})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Fatalf("svc.Create() error = %v, want ValidationError", err)
	}

	// the student row must not have landed
	page, err := env.svc.Filter(ctx, student.QueryFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("svc.Filter() failed: %v", err)
	}
	if page.Pagination.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", page.Pagination.TotalCount)
	}
}

// failingPaymentsRepo makes the initial payment insert fail so the whole
// create must roll back.
type failingPaymentsRepo struct {
	student.Repository
}

func (repo failingPaymentsRepo) InsertPayment(ctx context.Context, p student.Payment, exec ...core.DBExecutor) (student.Payment, error) {
	return student.Payment{}, errors.New("payments table on fire")
}

func TestService_Create_paymentFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "ENG01", "2500")
	svc := student.NewService(env.db, failingPaymentsRepo{env.repo}, env.batchSvc)

	_, err := svc.Create(ctx, student.NewStudent{
		Name:                 "Unlucky",
		PhoneNumber:          "01755555555",
		Institution:          "X",
		BatchIDs:             []string{b1.ID},
		InitialPaymentAmount: optDec("500"),
	})
	if err == nil {
		t.Fatal("svc.Create() succeeded, want error")
	}

	page, err := env.svc.Filter(ctx, student.QueryFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("svc.Filter() failed: %v", err)
	}
	if page.Pagination.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0: student row leaked out of a failed create", page.Pagination.TotalCount)
	}
}

func TestService_Update_partialSemantics(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	created, err := env.svc.Create(ctx, student.NewStudent{
		Name:        "Nabila",
		PhoneNumber: "01766666666",
		Institution: "Uttara Model",
		Email:       optStr("nabila@example.com"),
		Discount:    optDec("300"),
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	// absent fields stay untouched
	st, err := env.svc.Update(ctx, created.ID, student.UpdateStudent{Name: optStr("Nabila Akter")})
	if err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}
	if st.Name != "Nabila Akter" {
		t.Errorf("Name = %q, want %q", st.Name, "Nabila Akter")
	}
	if st.Email.String != "nabila@example.com" {
		t.Errorf("Email = %q, want unchanged", st.Email.String)
	}
	checkDec(t, "Discount", st.Discount, dec("300"))

	// explicit null clears nullable fields and zeroes the discount
	st, err = env.svc.Update(ctx, created.ID, student.UpdateStudent{
		Email:    core.OptString{Set: true},
		Discount: core.OptDecimal{Set: true},
	})
	if err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}
	if st.Email.Valid {
		t.Errorf("Email still set to %q, want cleared", st.Email.String)
	}
	checkDec(t, "Discount (cleared)", st.Discount, dec("0"))
}

func TestService_Update_replacesEnrollments(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	a := env.createBatch(t, "MA01", "1000")
	b := env.createBatch(t, "MB01", "2000")
	c := env.createBatch(t, "MC01", "4000")

	created, err := env.svc.Create(ctx, student.NewStudent{
		Name:        "Tanvir",
		PhoneNumber: "01777777777",
		Institution: "X",
		BatchIDs:    []string{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	checkDec(t, "InitialDue", created.InitialDue, dec("3000"))

	ids := []string{b.ID, c.ID}
	if _, err = env.svc.Update(ctx, created.ID, student.UpdateStudent{BatchIDs: &ids}); err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}

	st, err := env.svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	if len(st.Batches) != 2 {
		t.Fatalf("len(Batches) = %d, want 2", len(st.Batches))
	}
	got := map[string]bool{st.Batches[0].ID: true, st.Batches[1].ID: true}
	if !got[b.ID] || !got[c.ID] {
		t.Errorf("enrollment set = %v, want {%s, %s}", got, b.ID, c.ID)
	}
	checkDec(t, "InitialDue (replaced)", st.InitialDue, dec("6000"))

	// empty set un-enrolls from everything; nil leaves enrollments alone
	empty := []string{}
	if _, err = env.svc.Update(ctx, created.ID, student.UpdateStudent{BatchIDs: &empty}); err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}
	st, err = env.svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	if len(st.Batches) != 0 {
		t.Errorf("len(Batches) = %d, want 0", len(st.Batches))
	}
}

func TestService_Update_phoneConflictRollsBack(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	if _, err := env.svc.Create(ctx, student.NewStudent{Name: "A", PhoneNumber: "01788888888", Institution: "X"}); err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	other, err := env.svc.Create(ctx, student.NewStudent{Name: "B", PhoneNumber: "01799999999", Institution: "X"})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	_, err = env.svc.Update(ctx, other.ID, student.UpdateStudent{
		Name:        optStr("B renamed"),
		PhoneNumber: optStr("01788888888"),
	})
	if _, ok := errors.Cause(err).(*core.ConflictError); !ok {
		t.Fatalf("svc.Update() error = %v, want ConflictError", err)
	}

	// the partial rename must not survive the failed update
	st, err := env.svc.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	if st.Name != "B" {
		t.Errorf("Name = %q, want %q", st.Name, "B")
	}
	if st.PhoneNumber != "01799999999" {
		t.Errorf("PhoneNumber = %q, want unchanged", st.PhoneNumber)
	}
}

func TestService_Delete_cascades(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "DEL01", "1500")

	created, err := env.svc.Create(ctx, student.NewStudent{
		Name:                 "Doomed",
		PhoneNumber:          "01811111111",
		Institution:          "X",
		BatchIDs:             []string{b1.ID},
		InitialPaymentAmount: optDec("500"),
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	pmtID := created.Payments[0].ID

	if err = env.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("svc.Delete() failed: %v", err)
	}

	if _, err = env.svc.GetByID(ctx, created.ID); errors.Cause(err) != student.ErrNotFound {
		t.Errorf("svc.GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err = env.repo.GetPayment(ctx, pmtID); errors.Cause(err) != student.ErrPaymentNotFound {
		t.Errorf("repo.GetPayment() error = %v, want ErrPaymentNotFound", err)
	}
	// the batch itself must survive
	if _, err = env.batchSvc.GetByID(ctx, b1.ID); err != nil {
		t.Errorf("batchSvc.GetByID() error = %v, want batch kept", err)
	}
}

func TestService_Delete_notFound(t *testing.T) {
	env := setup(t)
	err := env.svc.Delete(context.Background(), "97a2d1c0-8c3f-44ad-b3e7-bb3d8e4f3a20")
	if errors.Cause(err) != student.ErrNotFound {
		t.Errorf("svc.Delete() error = %v, want ErrNotFound", err)
	}
}

func TestService_AddPayment(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "PAY01", "3000")

	created, err := env.svc.Create(ctx, student.NewStudent{
		Name:        "Payer",
		PhoneNumber: "01822222222",
		Institution: "X",
		BatchIDs:    []string{b1.ID},
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	pmt, err := env.svc.AddPayment(ctx, created.ID, student.NewPayment{
		Amount:            dec("1200"),
		InstallmentNumber: 1,
		Note:              optStr("bKash"),
	})
	if err != nil {
		t.Fatalf("svc.AddPayment() failed: %v", err)
	}
	if pmt.Note.String != "bKash" {
		t.Errorf("Note = %q, want %q", pmt.Note.String, "bKash")
	}

	st, err := env.svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	checkDec(t, "TotalPaid", st.TotalPaid, dec("1200"))
	checkDec(t, "FinalDue", st.FinalDue, dec("1800"))
}

func TestService_AddPayment_overpaymentRejected(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "PAY02", "1000")

	created, err := env.svc.Create(ctx, student.NewStudent{
		Name:                 "Overpayer",
		PhoneNumber:          "01833333333",
		Institution:          "X",
		BatchIDs:             []string{b1.ID},
		InitialPaymentAmount: optDec("800"),
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	_, err = env.svc.AddPayment(ctx, created.ID, student.NewPayment{Amount: dec("300"), InstallmentNumber: 2})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Fatalf("svc.AddPayment() error = %v, want ValidationError", err)
	}

	// paying exactly the remaining due is fine
	if _, err = env.svc.AddPayment(ctx, created.ID, student.NewPayment{Amount: dec("200"), InstallmentNumber: 2}); err != nil {
		t.Fatalf("svc.AddPayment() failed: %v", err)
	}
	st, err := env.svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	checkDec(t, "FinalDue", st.FinalDue, dec("0"))

	// a fully settled ledger accepts nothing further
	_, err = env.svc.AddPayment(ctx, created.ID, student.NewPayment{Amount: dec("1"), InstallmentNumber: 3})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("svc.AddPayment() error = %v, want ValidationError", err)
	}
}

func TestService_UpdatePayment(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "PAY03", "2000")

	created, err := env.svc.Create(ctx, student.NewStudent{
		Name:                 "Edited",
		PhoneNumber:          "01844444444",
		Institution:          "X",
		BatchIDs:             []string{b1.ID},
		InitialPaymentAmount: optDec("500"),
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	pmtID := created.Payments[0].ID

	pmt, err := env.svc.UpdatePayment(ctx, pmtID, student.UpdatePayment{Amount: optDec("700")})
	if err != nil {
		t.Fatalf("svc.UpdatePayment() failed: %v", err)
	}
	checkDec(t, "Amount", pmt.Amount, dec("700"))
	if pmt.Note.String != "Initial payment" {
		t.Errorf("Note = %q, want unchanged", pmt.Note.String)
	}

	// the edit flows into every later due computation
	due, err := env.svc.CalculateDue(ctx, created.ID)
	if err != nil {
		t.Fatalf("svc.CalculateDue() failed: %v", err)
	}
	checkDec(t, "TotalPaid", due.TotalPaid, dec("700"))
	checkDec(t, "FinalDue", due.FinalDue, dec("1300"))

	_, err = env.svc.UpdatePayment(ctx, "9f0e1d2c-3b4a-4596-8778-695a4b3c2d1e", student.UpdatePayment{Amount: optDec("1")})
	if errors.Cause(err) != student.ErrPaymentNotFound {
		t.Errorf("svc.UpdatePayment() error = %v, want ErrPaymentNotFound", err)
	}
}

func TestService_Filter(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	b1 := env.createBatch(t, "FL01", "1000")

	names := []struct{ name, phone, inst string }{
		{"Alpha One", "01911111111", "City College"},
		{"Beta Two", "01922222222", "City College"},
		{"Gamma Three", "01933333333", "Metro School"},
	}
	var alphaID string
	for i, n := range names {
		ns := student.NewStudent{Name: n.name, PhoneNumber: n.phone, Institution: n.inst}
		if i == 0 {
			ns.BatchIDs = []string{b1.ID}
		}
		st, err := env.svc.Create(ctx, ns)
		if err != nil {
			t.Fatalf("svc.Create(%s) failed: %v", n.name, err)
		}
		if i == 0 {
			alphaID = st.ID
		}
	}

	tests := []struct {
		name      string
		filter    student.QueryFilter
		wantTotal int
	}{
		{name: "no filter", filter: student.QueryFilter{Page: 1, Limit: 10}, wantTotal: 3},
		{name: "search by name", filter: student.QueryFilter{Search: "alpha", Page: 1, Limit: 10}, wantTotal: 1},
		{name: "search by phone", filter: student.QueryFilter{Search: "01922", Page: 1, Limit: 10}, wantTotal: 1},
		{name: "institution", filter: student.QueryFilter{Institution: "city", Page: 1, Limit: 10}, wantTotal: 2},
		{name: "batch", filter: student.QueryFilter{BatchID: b1.ID, Page: 1, Limit: 10}, wantTotal: 1},
		{name: "search AND institution", filter: student.QueryFilter{Search: "beta", Institution: "metro", Page: 1, Limit: 10}, wantTotal: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.svc.Filter(ctx, tt.filter)
			if err != nil {
				t.Fatalf("svc.Filter() failed: %v", err)
			}
			if page.Pagination.TotalCount != tt.wantTotal {
				t.Errorf("TotalCount = %d, want %d", page.Pagination.TotalCount, tt.wantTotal)
			}
		})
	}

	t.Run("pagination math", func(t *testing.T) {
		page, err := env.svc.Filter(ctx, student.QueryFilter{Page: 1, Limit: 2})
		if err != nil {
			t.Fatalf("svc.Filter() failed: %v", err)
		}
		pg := page.Pagination
		if pg.TotalPages != 2 || !pg.HasNextPage || pg.HasPrevPage {
			t.Errorf("Pagination = %+v, want 2 pages with a next page only", pg)
		}
		if len(page.Data) != 2 {
			t.Errorf("len(Data) = %d, want 2", len(page.Data))
		}
	})

	t.Run("due rides along in listings", func(t *testing.T) {
		page, err := env.svc.Filter(ctx, student.QueryFilter{BatchID: b1.ID, Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("svc.Filter() failed: %v", err)
		}
		if len(page.Data) != 1 || page.Data[0].ID != alphaID {
			t.Fatalf("Data = %+v, want the enrolled student only", page.Data)
		}
		checkDec(t, "FinalDue", page.Data[0].FinalDue, dec("1000"))
	})
}
