package batch_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
	dummydb "github.com/pocketcoach/coaching/storage/database/dummy"
)

func setup(t *testing.T) (*dummydb.DB, batch.ServiceInterface) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return db, batch.NewService(db, dummydb.NewBatchRepository(db))
}

func optStr(v string) core.OptString {
	return core.OptString{String: null.StringFrom(v), Set: true}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	bat, err := svc.Create(ctx, batch.NewBatch{
		BatchCode: "JEE_2026",
		Name:      "JEE Morning",
		Cost:      decimal.NewFromInt(5000),
		BranchIDs: []string{"0b6f2a1e-7d44-4c2f-9f3a-2f8f4f1a9b10"},
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}
	if bat.ID == "" {
		t.Error("ID not assigned")
	}

	got, err := svc.GetByID(ctx, bat.ID)
	if err != nil {
		t.Fatalf("svc.GetByID() failed: %v", err)
	}
	if len(got.BranchIDs) != 1 {
		t.Errorf("len(BranchIDs) = %d, want 1", len(got.BranchIDs))
	}

	// duplicate code is a conflict
	_, err = svc.Create(ctx, batch.NewBatch{BatchCode: "JEE_2026", Name: "Clone", Cost: decimal.Zero})
	if _, ok := errors.Cause(err).(*core.ConflictError); !ok {
		t.Errorf("svc.Create() error = %v, want ConflictError", err)
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	bat, err := svc.Create(ctx, batch.NewBatch{BatchCode: "NEET01", Name: "NEET", Cost: decimal.NewFromInt(3000)})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	cost := decimal.NewFromInt(3500)
	branchIDs := []string{"9f3a2b1c-4d5e-46f7-8899-aabbccddeeff"}
	got, err := svc.Update(ctx, bat.ID, batch.UpdateBatch{
		Name:      optStr("NEET Evening"),
		Cost:      core.OptDecimal{NullDecimal: decimal.NewNullDecimal(cost), Set: true},
		BranchIDs: &branchIDs,
	})
	if err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}
	if got.Name != "NEET Evening" {
		t.Errorf("Name = %q, want %q", got.Name, "NEET Evening")
	}
	if got.BatchCode != "NEET01" {
		t.Errorf("BatchCode = %q, want unchanged", got.BatchCode)
	}
	if !got.Cost.Equal(cost) {
		t.Errorf("Cost = %s, want %s", got.Cost, cost)
	}
	if len(got.BranchIDs) != 1 {
		t.Errorf("len(BranchIDs) = %d, want 1", len(got.BranchIDs))
	}
}

func TestService_ResolveByID(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	bat, err := svc.Create(ctx, batch.NewBatch{BatchCode: "SSC01", Name: "SSC", Cost: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	batches, err := svc.ResolveByID(ctx, []string{bat.ID})
	if err != nil {
		t.Fatalf("svc.ResolveByID() failed: %v", err)
	}
	if len(batches) != 1 {
		t.Errorf("len(batches) = %d, want 1", len(batches))
	}

	_, err = svc.ResolveByID(ctx, []string{bat.ID, "1d9c8b7a-6f5e-4d3c-8b1a-0f9e8d7c6b5a"})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("svc.ResolveByID() error = %v, want ValidationError", err)
	}

	// repeated ids collapse to one batch
	batches, err = svc.ResolveByID(ctx, []string{bat.ID, bat.ID})
	if err != nil {
		t.Fatalf("svc.ResolveByID() failed: %v", err)
	}
	if len(batches) != 1 {
		t.Errorf("len(batches) = %d, want 1", len(batches))
	}

	if batches, err = svc.ResolveByID(ctx, nil); err != nil || batches != nil {
		t.Errorf("svc.ResolveByID(nil) = (%v, %v), want (nil, nil)", batches, err)
	}
}

func TestService_Categories(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)

	cat, err := svc.CreateCategory(ctx, batch.NewCategory{Name: "Engineering"})
	if err != nil {
		t.Fatalf("svc.CreateCategory() failed: %v", err)
	}

	got, err := svc.UpdateCategory(ctx, cat.ID, batch.NewCategory{Name: "Engineering Prep"})
	if err != nil {
		t.Fatalf("svc.UpdateCategory() failed: %v", err)
	}
	if got.Name != "Engineering Prep" {
		t.Errorf("Name = %q, want %q", got.Name, "Engineering Prep")
	}

	if err = svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("svc.DeleteCategory() failed: %v", err)
	}
	if _, err = svc.GetCategoryByID(ctx, cat.ID); errors.Cause(err) != batch.ErrCategoryNotFound {
		t.Errorf("svc.GetCategoryByID() error = %v, want ErrCategoryNotFound", err)
	}
}
