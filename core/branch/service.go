package branch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pocketcoach/coaching/core"
)

var ErrNotFound = errors.New("branch not found")

type (
	Repository interface {
		CreateBranch(ctx context.Context, br Branch, exec ...core.DBExecutor) (Branch, error)
		GetBranch(ctx context.Context, id string, exec ...core.DBExecutor) (Branch, error)
		QueryBranches(ctx context.Context, exec ...core.DBExecutor) ([]Branch, error)
		UpdateBranch(ctx context.Context, br Branch, exec ...core.DBExecutor) (Branch, error)
		DeleteBranch(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nb NewBranch) (Branch, error)
		GetByID(ctx context.Context, id string) (Branch, error)
		QueryAll(ctx context.Context) ([]Branch, error)
		Update(ctx context.Context, id string, ub UpdateBranch) (Branch, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nb NewBranch) (Branch, error) {
	now := time.Now().UTC()
	br := Branch{
		ID:        uuid.New().String(),
		Name:      nb.Name,
		Address:   nb.Address.String,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBranch(ctx, br)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Branch, error) {
	return svc.repo.GetBranch(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Branch, error) {
	return svc.repo.QueryBranches(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, ub UpdateBranch) (Branch, error) {
	br, err := svc.repo.GetBranch(ctx, id)
	if err != nil {
		return Branch{}, err
	}
	if ub.Name.Set && ub.Name.String.Valid {
		br.Name = core.CleanString(ub.Name.String.String)
	}
	if ub.Address.Set {
		br.Address = ub.Address.String
	}
	br.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBranch(ctx, br)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteBranch(ctx, id)
}
