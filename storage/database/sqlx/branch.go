package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/branch"
)

const branchColumns = "id, name, address, created_at, updated_at"

type branchRepository struct {
	exec core.DBExecutor
}

var _ branch.Repository = (*branchRepository)(nil) // interface compliance check

func NewBranchRepository(exec core.DBExecutor) *branchRepository {
	return &branchRepository{exec: exec}
}

func (repo branchRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo branchRepository) CreateBranch(ctx context.Context, br branch.Branch, exec ...core.DBExecutor) (branch.Branch, error) {
	q := `INSERT INTO branch (` + branchColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.getExec(exec).ExecContext(ctx, q, br.ID, br.Name, br.Address, br.CreatedAt, br.UpdatedAt)
	if err != nil {
		return branch.Branch{}, errors.Wrap(err, "inserting branch")
	}
	return br, nil
}

func (repo branchRepository) GetBranch(ctx context.Context, id string, exec ...core.DBExecutor) (branch.Branch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return branch.Branch{}, branch.ErrNotFound
	}
	var br branch.Branch
	q := `SELECT ` + branchColumns + ` FROM branch WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &br, q, id); err != nil {
		return branch.Branch{}, trapNoRowsErr(err, branch.ErrNotFound, "finding branch by ID")
	}
	return br, nil
}

func (repo branchRepository) QueryBranches(ctx context.Context, exec ...core.DBExecutor) ([]branch.Branch, error) {
	var branches []branch.Branch
	q := `SELECT ` + branchColumns + ` FROM branch ORDER BY name`
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &branches, q); err != nil {
		return nil, errors.Wrap(err, "querying branches")
	}
	return branches, nil
}

func (repo branchRepository) UpdateBranch(ctx context.Context, br branch.Branch, exec ...core.DBExecutor) (branch.Branch, error) {
	q := `UPDATE branch SET name = $2, address = $3, updated_at = $4 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, br.ID, br.Name, br.Address, br.UpdatedAt)
	if err != nil {
		return branch.Branch{}, errors.Wrap(err, "updating branch")
	}
	if n, err := res.RowsAffected(); err != nil {
		return branch.Branch{}, errors.Wrap(err, "updating branch")
	} else if n == 0 {
		return branch.Branch{}, branch.ErrNotFound
	}
	return br, nil
}

func (repo branchRepository) DeleteBranch(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return branch.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM branch WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting branch")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting branch")
	} else if n == 0 {
		return branch.ErrNotFound
	}
	return nil
}
