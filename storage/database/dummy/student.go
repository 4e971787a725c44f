package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/pocketcoach/coaching/core"
	"github.com/pocketcoach/coaching/core/batch"
	"github.com/pocketcoach/coaching/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckPhoneUniqueness(ctx context.Context, phoneNumber string, excludedStudents []student.Student, exec ...core.DBExecutor) error {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	excluded := make(map[string]bool, len(excludedStudents))
	for _, st := range excludedStudents {
		excluded[st.ID] = true
	}
	for _, st := range repo.db.student.students {
		if st.PhoneNumber == phoneNumber && !excluded[st.ID] {
			return student.ErrPhoneExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	for _, existing := range repo.db.student.students {
		if existing.PhoneNumber == st.PhoneNumber {
			return student.Student{}, student.ErrPhoneExists
		}
	}
	st.Batches = nil
	st.Payments = nil
	repo.db.student.students[st.ID] = st
	return st, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.student.RLock()
	st, ok := repo.db.student.students[id]
	repo.db.student.RUnlock()
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.loadAssociations(&st)
	return st, nil
}

func (repo *studentRepository) loadAssociations(st *student.Student) {
	repo.db.student.RLock()
	batchIDs := append([]string(nil), repo.db.student.enrollments[st.ID]...)
	st.Payments = []student.Payment{}
	for _, pmt := range repo.db.student.payments {
		if pmt.StudentID == st.ID {
			st.Payments = append(st.Payments, pmt)
		}
	}
	repo.db.student.RUnlock()

	sort.Slice(st.Payments, func(i, j int) bool {
		if st.Payments[i].InstallmentNumber != st.Payments[j].InstallmentNumber {
			return st.Payments[i].InstallmentNumber < st.Payments[j].InstallmentNumber
		}
		return st.Payments[i].Date.Before(st.Payments[j].Date)
	})

	repo.db.batch.RLock()
	st.Batches = []batch.Batch{}
	for _, id := range batchIDs {
		if bat, ok := repo.db.batch.batches[id]; ok {
			st.Batches = append(st.Batches, bat)
		}
	}
	repo.db.batch.RUnlock()
	sort.Slice(st.Batches, func(i, j int) bool { return st.Batches[i].CreatedAt.Before(st.Batches[j].CreatedAt) })
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, int, error) {
	repo.db.student.RLock()
	var matches []student.Student
	for _, st := range repo.db.student.students {
		if filter.Search != "" &&
			!containsFold(st.Name, filter.Search) &&
			!containsFold(st.PhoneNumber, filter.Search) &&
			!containsFold(st.Institution, filter.Search) {
			continue
		}
		if filter.Institution != "" && !containsFold(st.Institution, filter.Institution) {
			continue
		}
		if filter.BranchID != "" && (!st.BranchID.Valid || st.BranchID.String != filter.BranchID) {
			continue
		}
		if filter.BatchID != "" {
			enrolled := false
			for _, id := range repo.db.student.enrollments[st.ID] {
				if id == filter.BatchID {
					enrolled = true
					break
				}
			}
			if !enrolled {
				continue
			}
		}
		matches = append(matches, st)
	}
	repo.db.student.RUnlock()

	ascending := len(ordering) > 0 && ordering[0].Ascending
	sort.Slice(matches, func(i, j int) bool {
		if ascending {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[j].CreatedAt.Before(matches[i].CreatedAt)
	})

	totalCount := len(matches)
	offset := (filter.Page - 1) * filter.Limit
	if offset >= totalCount {
		return []student.Student{}, totalCount, nil
	}
	end := offset + filter.Limit
	if end > totalCount {
		end = totalCount
	}
	page := matches[offset:end]
	for i := range page {
		repo.loadAssociations(&page[i])
	}
	return page, totalCount, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if _, ok := repo.db.student.students[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	for _, existing := range repo.db.student.students {
		if existing.PhoneNumber == st.PhoneNumber && existing.ID != st.ID {
			return student.Student{}, student.ErrPhoneExists
		}
	}
	stored := st
	stored.Batches = nil
	stored.Payments = nil
	repo.db.student.students[st.ID] = stored
	return st, nil
}

func (repo *studentRepository) ReplaceEnrollments(ctx context.Context, studentID string, batchIDs []string, exec ...core.DBExecutor) error {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if len(batchIDs) == 0 {
		delete(repo.db.student.enrollments, studentID)
		return nil
	}
	repo.db.student.enrollments[studentID] = append([]string(nil), batchIDs...)
	return nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if _, ok := repo.db.student.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.student.students, id)
	return nil
}

func (repo *studentRepository) InsertPayment(ctx context.Context, pmt student.Payment, exec ...core.DBExecutor) (student.Payment, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if _, ok := repo.db.student.students[pmt.StudentID]; !ok {
		return student.Payment{}, student.ErrNotFound
	}
	repo.db.student.payments[pmt.ID] = pmt
	return pmt, nil
}

func (repo *studentRepository) GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (student.Payment, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	if pmt, ok := repo.db.student.payments[id]; ok {
		return pmt, nil
	}
	return student.Payment{}, student.ErrPaymentNotFound
}

func (repo *studentRepository) UpdatePayment(ctx context.Context, pmt student.Payment, exec ...core.DBExecutor) (student.Payment, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if _, ok := repo.db.student.payments[pmt.ID]; !ok {
		return student.Payment{}, student.ErrPaymentNotFound
	}
	repo.db.student.payments[pmt.ID] = pmt
	return pmt, nil
}

func (repo *studentRepository) DeletePaymentsByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	deleted := 0
	for id, pmt := range repo.db.student.payments {
		if pmt.StudentID == studentID {
			delete(repo.db.student.payments, id)
			deleted++
		}
	}
	return deleted, nil
}
