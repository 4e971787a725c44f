package branch_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/branch"
	dummydb "github.com/pocketcoach/coaching/storage/database/dummy"
)

func setup(t *testing.T) branch.ServiceInterface {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return branch.NewService(dummydb.NewBranchRepository(db))
}

func TestService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	br, err := svc.Create(ctx, branch.NewBranch{
		Name:    "Mirpur",
		Address: core.OptString{String: null.StringFrom("Mirpur 10, Dhaka"), Set: true},
	})
	if err != nil {
		t.Fatalf("svc.Create() failed: %v", err)
	}

	got, err := svc.Update(ctx, br.ID, branch.UpdateBranch{
		Name: core.OptString{String: null.StringFrom("Mirpur-10"), Set: true},
	})
	if err != nil {
		t.Fatalf("svc.Update() failed: %v", err)
	}
	if got.Name != "Mirpur-10" {
		t.Errorf("Name = %q, want %q", got.Name, "Mirpur-10")
	}
	if got.Address.String != "Mirpur 10, Dhaka" {
		t.Errorf("Address = %q, want unchanged", got.Address.String)
	}

	branches, err := svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("svc.QueryAll() failed: %v", err)
	}
	if len(branches) != 1 {
		t.Errorf("len(branches) = %d, want 1", len(branches))
	}

	if err = svc.Delete(ctx, br.ID); err != nil {
		t.Fatalf("svc.Delete() failed: %v", err)
	}
	if _, err = svc.GetByID(ctx, br.ID); errors.Cause(err) != branch.ErrNotFound {
		t.Errorf("svc.GetByID() error = %v, want ErrNotFound", err)
	}
}
