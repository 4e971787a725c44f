package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is the query surface shared by a root DB handle and an open
	// transaction. Repository methods take a trailing optional DBExecutor so
	// services can thread a unit of work through every call that must
	// participate in it.
	DBExecutor interface {
		sqlx.QueryerContext
		sqlx.ExecerContext
	}

	DB interface {
		DBExecutor

		BeginTx(ctx context.Context, opts *sql.TxOptions) (DBTransactor, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Pagination describes one page of a result set.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	PageSize    int  `json:"pageSize"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPagination(page, pageSize, totalCount int) Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (totalCount + pageSize - 1) / pageSize
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		PageSize:    pageSize,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
