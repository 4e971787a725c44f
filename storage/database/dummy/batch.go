package dummydb

import (
	"context"
	"sort"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
)

type batchRepository struct {
	db *DB
}

var _ batch.Repository = (*batchRepository)(nil) // interface compliance check

func NewBatchRepository(db *DB) *batchRepository {
	return &batchRepository{db: db}
}

func (repo *batchRepository) CheckBatchCodeUniqueness(ctx context.Context, code string, excludedBatches []batch.Batch, exec ...core.DBExecutor) error {
	repo.db.batch.RLock()
	defer repo.db.batch.RUnlock()

	excluded := make(map[string]bool, len(excludedBatches))
	for _, bat := range excludedBatches {
		excluded[bat.ID] = true
	}
	for _, bat := range repo.db.batch.batches {
		if bat.BatchCode == code && !excluded[bat.ID] {
			return batch.ErrBatchCodeExists
		}
	}
	return nil
}

func (repo *batchRepository) CreateBatch(ctx context.Context, bat batch.Batch, exec ...core.DBExecutor) (batch.Batch, error) {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	for _, existing := range repo.db.batch.batches {
		if existing.BatchCode == bat.BatchCode {
			return batch.Batch{}, batch.ErrBatchCodeExists
		}
	}
	stored := bat
	stored.BranchIDs = nil
	repo.db.batch.batches[bat.ID] = stored
	return bat, nil
}

func (repo *batchRepository) GetBatch(ctx context.Context, id string, exec ...core.DBExecutor) (batch.Batch, error) {
	repo.db.batch.RLock()
	defer repo.db.batch.RUnlock()

	if bat, ok := repo.db.batch.batches[id]; ok {
		bat.BranchIDs = append([]string{}, bat.BranchIDs...)
		return bat, nil
	}
	return batch.Batch{}, batch.ErrNotFound
}

func (repo *batchRepository) GetBatchesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]batch.Batch, error) {
	repo.db.batch.RLock()
	defer repo.db.batch.RUnlock()

	var batches []batch.Batch
	for _, id := range ids {
		if bat, ok := repo.db.batch.batches[id]; ok {
			batches = append(batches, bat)
		}
	}
	return batches, nil
}

func (repo *batchRepository) QueryBatches(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]batch.Batch, error) {
	repo.db.batch.RLock()
	batches := make([]batch.Batch, 0, len(repo.db.batch.batches))
	for _, bat := range repo.db.batch.batches {
		bat.BranchIDs = append([]string{}, bat.BranchIDs...)
		batches = append(batches, bat)
	}
	repo.db.batch.RUnlock()

	ascending := len(ordering) > 0 && ordering[0].Ascending
	sort.Slice(batches, func(i, j int) bool {
		if ascending {
			return batches[i].CreatedAt.Before(batches[j].CreatedAt)
		}
		return batches[j].CreatedAt.Before(batches[i].CreatedAt)
	})
	return batches, nil
}

func (repo *batchRepository) UpdateBatch(ctx context.Context, bat batch.Batch, exec ...core.DBExecutor) (batch.Batch, error) {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	existing, ok := repo.db.batch.batches[bat.ID]
	if !ok {
		return batch.Batch{}, batch.ErrNotFound
	}
	for _, other := range repo.db.batch.batches {
		if other.BatchCode == bat.BatchCode && other.ID != bat.ID {
			return batch.Batch{}, batch.ErrBatchCodeExists
		}
	}
	stored := bat
	stored.BranchIDs = existing.BranchIDs
	repo.db.batch.batches[bat.ID] = stored
	return bat, nil
}

func (repo *batchRepository) ReplaceBatchBranches(ctx context.Context, batchID string, branchIDs []string, exec ...core.DBExecutor) error {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	bat, ok := repo.db.batch.batches[batchID]
	if !ok {
		return batch.ErrNotFound
	}
	bat.BranchIDs = append([]string(nil), branchIDs...)
	repo.db.batch.batches[batchID] = bat
	return nil
}

func (repo *batchRepository) DeleteBatch(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	if _, ok := repo.db.batch.batches[id]; !ok {
		return batch.ErrNotFound
	}
	delete(repo.db.batch.batches, id)
	return nil
}

func (repo *batchRepository) CreateCategory(ctx context.Context, cat batch.Category, exec ...core.DBExecutor) (batch.Category, error) {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	repo.db.batch.categories[cat.ID] = cat
	return cat, nil
}

func (repo *batchRepository) GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (batch.Category, error) {
	repo.db.batch.RLock()
	defer repo.db.batch.RUnlock()

	if cat, ok := repo.db.batch.categories[id]; ok {
		return cat, nil
	}
	return batch.Category{}, batch.ErrCategoryNotFound
}

func (repo *batchRepository) QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]batch.Category, error) {
	repo.db.batch.RLock()
	cats := make([]batch.Category, 0, len(repo.db.batch.categories))
	for _, cat := range repo.db.batch.categories {
		cats = append(cats, cat)
	}
	repo.db.batch.RUnlock()

	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *batchRepository) UpdateCategory(ctx context.Context, cat batch.Category, exec ...core.DBExecutor) (batch.Category, error) {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	if _, ok := repo.db.batch.categories[cat.ID]; !ok {
		return batch.Category{}, batch.ErrCategoryNotFound
	}
	repo.db.batch.categories[cat.ID] = cat
	return cat, nil
}

func (repo *batchRepository) DeleteCategory(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.batch.Lock()
	defer repo.db.batch.Unlock()

	if _, ok := repo.db.batch.categories[id]; !ok {
		return batch.ErrCategoryNotFound
	}
	delete(repo.db.batch.categories, id)
	return nil
}
