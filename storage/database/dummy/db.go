package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
	"github.com/pocketcoach/coaching/core/branch"
	"github.com/pocketcoach/coaching/core/student"
)

type (
	// DB is the in-memory database used in tests and local development.
	// Repositories operate on the tables directly and ignore the DBExecutor
	// they are handed; the embedded executor is never called.
	DB struct {
		core.DBExecutor

		student *studentTable
		batch   *batchTable
		branch  *branchTable

		txmu sync.Mutex // one open transaction at a time
	}

	studentTable struct {
		sync.RWMutex
		students    map[string]student.Student
		payments    map[string]student.Payment
		enrollments map[string][]string // student ID -> batch IDs
	}

	batchTable struct {
		sync.RWMutex
		batches    map[string]batch.Batch
		categories map[string]batch.Category
	}

	branchTable struct {
		sync.RWMutex
		branches map[string]branch.Branch
	}
)

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{
			students:    make(map[string]student.Student),
			payments:    make(map[string]student.Payment),
			enrollments: make(map[string][]string),
		},
		batch: &batchTable{
			batches:    make(map[string]batch.Batch),
			categories: make(map[string]batch.Category),
		},
		branch: &branchTable{branches: make(map[string]branch.Branch)},
	}
	return db, nil
}

// BeginTx serializes units of work: the transactor holds a snapshot of every
// table and restores it on Rollback, so partially applied writes are undone
// the way a real transaction would undo them.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	db.txmu.Lock()
	return &transactor{db: db, snap: db.snapshot()}, nil
}

type snapshot struct {
	students    map[string]student.Student
	payments    map[string]student.Payment
	enrollments map[string][]string
	batches     map[string]batch.Batch
	categories  map[string]batch.Category
	branches    map[string]branch.Branch
}

func (db *DB) snapshot() snapshot {
	db.student.RLock()
	db.batch.RLock()
	db.branch.RLock()
	defer db.student.RUnlock()
	defer db.batch.RUnlock()
	defer db.branch.RUnlock()

	snap := snapshot{
		students:    make(map[string]student.Student, len(db.student.students)),
		payments:    make(map[string]student.Payment, len(db.student.payments)),
		enrollments: make(map[string][]string, len(db.student.enrollments)),
		batches:     make(map[string]batch.Batch, len(db.batch.batches)),
		categories:  make(map[string]batch.Category, len(db.batch.categories)),
		branches:    make(map[string]branch.Branch, len(db.branch.branches)),
	}
	for id, st := range db.student.students {
		snap.students[id] = st
	}
	for id, pmt := range db.student.payments {
		snap.payments[id] = pmt
	}
	for id, batchIDs := range db.student.enrollments {
		snap.enrollments[id] = append([]string(nil), batchIDs...)
	}
	for id, bat := range db.batch.batches {
		bat.BranchIDs = append([]string(nil), bat.BranchIDs...)
		snap.batches[id] = bat
	}
	for id, cat := range db.batch.categories {
		snap.categories[id] = cat
	}
	for id, br := range db.branch.branches {
		snap.branches[id] = br
	}
	return snap
}

func (db *DB) restore(snap snapshot) {
	db.student.Lock()
	db.batch.Lock()
	db.branch.Lock()
	defer db.student.Unlock()
	defer db.batch.Unlock()
	defer db.branch.Unlock()

	db.student.students = snap.students
	db.student.payments = snap.payments
	db.student.enrollments = snap.enrollments
	db.batch.batches = snap.batches
	db.batch.categories = snap.categories
	db.branch.branches = snap.branches
}

type transactor struct {
	core.DBExecutor

	db   *DB
	snap snapshot
	done bool
}

func (tx *transactor) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	tx.db.txmu.Unlock()
	return nil
}

func (tx *transactor) Rollback() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	tx.db.restore(tx.snap)
	tx.db.txmu.Unlock()
	return nil
}
