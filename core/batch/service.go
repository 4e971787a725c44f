package batch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pocketcoach/coaching/core"
)

var (
	// errors
	ErrNotFound         = errors.New("batch not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBatchCodeExists  = errors.New("a batch with this code already exists")
)

type (
	Repository interface {
		CheckBatchCodeUniqueness(ctx context.Context, code string, excludedBatches []Batch, exec ...core.DBExecutor) error
		CreateBatch(ctx context.Context, bat Batch, exec ...core.DBExecutor) (Batch, error)
		GetBatch(ctx context.Context, id string, exec ...core.DBExecutor) (Batch, error)
		// GetBatchesByID resolves ids to existing batches; unknown ids are
		// simply missing from the result.
		GetBatchesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]Batch, error)
		QueryBatches(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Batch, error)
		UpdateBatch(ctx context.Context, bat Batch, exec ...core.DBExecutor) (Batch, error)
		ReplaceBatchBranches(ctx context.Context, batchID string, branchIDs []string, exec ...core.DBExecutor) error
		DeleteBatch(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
		GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (Category, error)
		QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]Category, error)
		UpdateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
		DeleteCategory(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nb NewBatch) (Batch, error)
		GetByID(ctx context.Context, id string) (Batch, error)
		ResolveByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]Batch, error)
		QueryAll(ctx context.Context) ([]Batch, error)
		Update(ctx context.Context, id string, ub UpdateBatch) (Batch, error)
		Delete(ctx context.Context, id string) error

		CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
		GetCategoryByID(ctx context.Context, id string) (Category, error)
		QueryCategories(ctx context.Context) ([]Category, error)
		UpdateCategory(ctx context.Context, id string, nc NewCategory) (Category, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, code string, exclBatches ...Batch) error {
	if err := svc.repo.CheckBatchCodeUniqueness(ctx, code, exclBatches); err != nil {
		if err == ErrBatchCodeExists {
			return core.NewConflictError(err)
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nb NewBatch) (Batch, error) {
	if err := svc.checkUniqueness(ctx, nb.BatchCode); err != nil {
		return Batch{}, err
	}

	now := time.Now().UTC()
	bat := Batch{
		ID:        uuid.New().String(),
		BatchCode: nb.BatchCode,
		Name:      nb.Name,
		Cost:      nb.Cost,
		BranchIDs: nb.BranchIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nb.CategoryID.Set {
		bat.CategoryID = nb.CategoryID.String
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, err
	}
	bat, err = svc.repo.CreateBatch(ctx, bat, tx)
	if err != nil {
		_ = tx.Rollback()
		return Batch{}, err
	}
	if len(bat.BranchIDs) > 0 {
		if err = svc.repo.ReplaceBatchBranches(ctx, bat.ID, bat.BranchIDs, tx); err != nil {
			_ = tx.Rollback()
			return Batch{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return Batch{}, err
	}
	return bat, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Batch, error) {
	return svc.repo.GetBatch(ctx, id)
}

// ResolveByID resolves the given ids to existing batches inside an optional
// transaction. Duplicate ids are collapsed; unknown ids are reported as a
// ValidationError instead of being silently dropped.
func (svc *Service) ResolveByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]Batch, error) {
	seen := make(map[string]struct{}, len(ids))
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return nil, nil
	}
	batches, err := svc.repo.GetBatchesByID(ctx, uniq, exec...)
	if err != nil {
		return nil, err
	}
	if len(batches) != len(uniq) {
		found := make(map[string]struct{}, len(batches))
		for _, b := range batches {
			found[b.ID] = struct{}{}
		}
		var unknown []string
		for _, id := range uniq {
			if _, ok := found[id]; !ok {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return nil, core.NewValidationError(ErrNotFound, core.FieldError{
				Field: "batchIds",
				Error: "unknown batch ids: " + strings.Join(unknown, ", "),
			})
		}
	}
	return batches, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Batch, error) {
	return svc.repo.QueryBatches(ctx, []core.DBOrdering{{Field: "created_at"}})
}

func (svc *Service) Update(ctx context.Context, id string, ub UpdateBatch) (Batch, error) {
	bat, err := svc.repo.GetBatch(ctx, id)
	if err != nil {
		return Batch{}, err
	}

	if ub.BatchCode.Set && ub.BatchCode.String.Valid {
		code := core.CleanString(ub.BatchCode.String.String)
		if code != bat.BatchCode {
			if err := svc.checkUniqueness(ctx, code, bat); err != nil {
				return Batch{}, err
			}
			bat.BatchCode = code
		}
	}
	if ub.Name.Set && ub.Name.String.Valid {
		bat.Name = core.CleanString(ub.Name.String.String)
	}
	if ub.Cost.Set && ub.Cost.NullDecimal.Valid {
		bat.Cost = ub.Cost.NullDecimal.Decimal
	}
	if ub.CategoryID.Set {
		bat.CategoryID = ub.CategoryID.String
	}
	bat.UpdatedAt = time.Now().UTC()

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, err
	}
	bat, err = svc.repo.UpdateBatch(ctx, bat, tx)
	if err != nil {
		_ = tx.Rollback()
		return Batch{}, err
	}
	if ub.BranchIDs != nil {
		if err = svc.repo.ReplaceBatchBranches(ctx, bat.ID, *ub.BranchIDs, tx); err != nil {
			_ = tx.Rollback()
			return Batch{}, err
		}
		bat.BranchIDs = *ub.BranchIDs
	}
	if err = tx.Commit(); err != nil {
		return Batch{}, err
	}
	return bat, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteBatch(ctx, id)
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	now := time.Now().UTC()
	cat := Category{
		ID:        uuid.New().String(),
		Name:      nc.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCategory(ctx, cat)
}

func (svc *Service) GetCategoryByID(ctx context.Context, id string) (Category, error) {
	return svc.repo.GetCategory(ctx, id)
}

func (svc *Service) QueryCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) UpdateCategory(ctx context.Context, id string, nc NewCategory) (Category, error) {
	cat, err := svc.repo.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	cat.Name = nc.Name
	cat.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCategory(ctx, cat)
}

func (svc *Service) DeleteCategory(ctx context.Context, id string) error {
	return svc.repo.DeleteCategory(ctx, id)
}
