package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
)

const (
	batchColumns    = "id, batch_code, name, cost, category_id, created_at, updated_at"
	categoryColumns = "id, name, created_at, updated_at"
)

type batchRepository struct {
	exec core.DBExecutor
}

var _ batch.Repository = (*batchRepository)(nil) // interface compliance check

func NewBatchRepository(exec core.DBExecutor) *batchRepository {
	return &batchRepository{exec: exec}
}

func (repo batchRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo batchRepository) CheckBatchCodeUniqueness(ctx context.Context, code string, excludedBatches []batch.Batch, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM batch WHERE batch_code = $1 AND NOT (id = ANY ($2)))`
	ids := make([]string, 0, len(excludedBatches))
	for _, bat := range excludedBatches {
		ids = append(ids, bat.ID)
	}

	var exists bool
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &exists, q, code, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking batch code uniqueness")
	}
	if exists {
		return batch.ErrBatchCodeExists
	}
	return nil
}

func (repo batchRepository) CreateBatch(ctx context.Context, bat batch.Batch, exec ...core.DBExecutor) (batch.Batch, error) {
	q := `INSERT INTO batch (` + batchColumns + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		bat.ID, bat.BatchCode, bat.Name, bat.Cost, bat.CategoryID, bat.CreatedAt, bat.UpdatedAt,
	)
	if err != nil {
		return batch.Batch{}, trapUniqueErr(err, batch.ErrBatchCodeExists, "inserting batch")
	}
	return bat, nil
}

func (repo batchRepository) GetBatch(ctx context.Context, id string, exec ...core.DBExecutor) (batch.Batch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return batch.Batch{}, batch.ErrNotFound
	}
	exe := repo.getExec(exec)

	var bat batch.Batch
	q := `SELECT ` + batchColumns + ` FROM batch WHERE id = $1`
	if err := sqlx.GetContext(ctx, exe, &bat, q, id); err != nil {
		return batch.Batch{}, trapNoRowsErr(err, batch.ErrNotFound, "finding batch by ID")
	}

	if err := repo.loadBranchIDs(ctx, exe, []*batch.Batch{&bat}); err != nil {
		return batch.Batch{}, err
	}
	return bat, nil
}

func (repo batchRepository) GetBatchesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]batch.Batch, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	var batches []batch.Batch
	q := `SELECT ` + batchColumns + ` FROM batch WHERE id = ANY ($1)`
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &batches, q, pq.Array(valid)); err != nil {
		return nil, errors.Wrap(err, "finding batches by ID")
	}
	return batches, nil
}

func (repo batchRepository) QueryBatches(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]batch.Batch, error) {
	exe := repo.getExec(exec)

	orderBy := ""
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		orderBy = " ORDER BY " + strings.Join(orderList, ", ")
	}

	var batches []batch.Batch
	q := `SELECT ` + batchColumns + ` FROM batch` + orderBy
	if err := sqlx.SelectContext(ctx, exe, &batches, q); err != nil {
		return nil, errors.Wrap(err, "querying batches")
	}

	ptrs := make([]*batch.Batch, len(batches))
	for i := range batches {
		ptrs[i] = &batches[i]
	}
	if err := repo.loadBranchIDs(ctx, exe, ptrs); err != nil {
		return nil, err
	}
	return batches, nil
}

func (repo batchRepository) loadBranchIDs(ctx context.Context, exe core.DBExecutor, batches []*batch.Batch) error {
	if len(batches) == 0 {
		return nil
	}
	byID := make(map[string]*batch.Batch, len(batches))
	ids := make([]string, 0, len(batches))
	for _, bat := range batches {
		bat.BranchIDs = []string{}
		byID[bat.ID] = bat
		ids = append(ids, bat.ID)
	}

	var links []struct {
		BatchID  string `db:"batch_id"`
		BranchID string `db:"branch_id"`
	}
	q := `SELECT batch_id, branch_id FROM batch_branch WHERE batch_id = ANY ($1)`
	if err := sqlx.SelectContext(ctx, exe, &links, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "loading batch branches")
	}
	for _, link := range links {
		bat := byID[link.BatchID]
		bat.BranchIDs = append(bat.BranchIDs, link.BranchID)
	}
	return nil
}

func (repo batchRepository) UpdateBatch(ctx context.Context, bat batch.Batch, exec ...core.DBExecutor) (batch.Batch, error) {
	q := `UPDATE batch
	      SET batch_code = $2, name = $3, cost = $4, category_id = $5, updated_at = $6
	      WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q,
		bat.ID, bat.BatchCode, bat.Name, bat.Cost, bat.CategoryID, bat.UpdatedAt,
	)
	if err != nil {
		return batch.Batch{}, trapUniqueErr(err, batch.ErrBatchCodeExists, "updating batch")
	}
	if n, err := res.RowsAffected(); err != nil {
		return batch.Batch{}, errors.Wrap(err, "updating batch")
	} else if n == 0 {
		return batch.Batch{}, batch.ErrNotFound
	}
	return bat, nil
}

func (repo batchRepository) ReplaceBatchBranches(ctx context.Context, batchID string, branchIDs []string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	if _, err := exe.ExecContext(ctx, `DELETE FROM batch_branch WHERE batch_id = $1`, batchID); err != nil {
		return errors.Wrap(err, "clearing batch branches")
	}
	if len(branchIDs) == 0 {
		return nil
	}
	q := `INSERT INTO batch_branch (batch_id, branch_id) SELECT $1, unnest($2::uuid[])`
	if _, err := exe.ExecContext(ctx, q, batchID, pq.Array(branchIDs)); err != nil {
		return errors.Wrap(err, "inserting batch branches")
	}
	return nil
}

func (repo batchRepository) DeleteBatch(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return batch.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM batch WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting batch")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting batch")
	} else if n == 0 {
		return batch.ErrNotFound
	}
	return nil
}

func (repo batchRepository) CreateCategory(ctx context.Context, cat batch.Category, exec ...core.DBExecutor) (batch.Category, error) {
	q := `INSERT INTO category (` + categoryColumns + `) VALUES ($1, $2, $3, $4)`
	_, err := repo.getExec(exec).ExecContext(ctx, q, cat.ID, cat.Name, cat.CreatedAt, cat.UpdatedAt)
	if err != nil {
		return batch.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo batchRepository) GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (batch.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return batch.Category{}, batch.ErrCategoryNotFound
	}
	var cat batch.Category
	q := `SELECT ` + categoryColumns + ` FROM category WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &cat, q, id); err != nil {
		return batch.Category{}, trapNoRowsErr(err, batch.ErrCategoryNotFound, "finding category by ID")
	}
	return cat, nil
}

func (repo batchRepository) QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]batch.Category, error) {
	var cats []batch.Category
	q := `SELECT ` + categoryColumns + ` FROM category ORDER BY name`
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &cats, q); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (repo batchRepository) UpdateCategory(ctx context.Context, cat batch.Category, exec ...core.DBExecutor) (batch.Category, error) {
	q := `UPDATE category SET name = $2, updated_at = $3 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, cat.ID, cat.Name, cat.UpdatedAt)
	if err != nil {
		return batch.Category{}, errors.Wrap(err, "updating category")
	}
	if n, err := res.RowsAffected(); err != nil {
		return batch.Category{}, errors.Wrap(err, "updating category")
	} else if n == 0 {
		return batch.Category{}, batch.ErrCategoryNotFound
	}
	return cat, nil
}

func (repo batchRepository) DeleteCategory(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return batch.ErrCategoryNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM category WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting category")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting category")
	} else if n == 0 {
		return batch.ErrCategoryNotFound
	}
	return nil
}
