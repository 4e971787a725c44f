package dummydb

import (
	"context"
	"sort"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/branch"
)

type branchRepository struct {
	db *DB
}

var _ branch.Repository = (*branchRepository)(nil) // interface compliance check

func NewBranchRepository(db *DB) *branchRepository {
	return &branchRepository{db: db}
}

func (repo *branchRepository) CreateBranch(ctx context.Context, br branch.Branch, exec ...core.DBExecutor) (branch.Branch, error) {
	repo.db.branch.Lock()
	defer repo.db.branch.Unlock()

	repo.db.branch.branches[br.ID] = br
	return br, nil
}

func (repo *branchRepository) GetBranch(ctx context.Context, id string, exec ...core.DBExecutor) (branch.Branch, error) {
	repo.db.branch.RLock()
	defer repo.db.branch.RUnlock()

	if br, ok := repo.db.branch.branches[id]; ok {
		return br, nil
	}
	return branch.Branch{}, branch.ErrNotFound
}

func (repo *branchRepository) QueryBranches(ctx context.Context, exec ...core.DBExecutor) ([]branch.Branch, error) {
	repo.db.branch.RLock()
	branches := make([]branch.Branch, 0, len(repo.db.branch.branches))
	for _, br := range repo.db.branch.branches {
		branches = append(branches, br)
	}
	repo.db.branch.RUnlock()

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

func (repo *branchRepository) UpdateBranch(ctx context.Context, br branch.Branch, exec ...core.DBExecutor) (branch.Branch, error) {
	repo.db.branch.Lock()
	defer repo.db.branch.Unlock()

	if _, ok := repo.db.branch.branches[br.ID]; !ok {
		return branch.Branch{}, branch.ErrNotFound
	}
	repo.db.branch.branches[br.ID] = br
	return br, nil
}

func (repo *branchRepository) DeleteBranch(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.branch.Lock()
	defer repo.db.branch.Unlock()

	if _, ok := repo.db.branch.branches[id]; !ok {
		return branch.ErrNotFound
	}
	delete(repo.db.branch.branches, id)
	return nil
}
