package core

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                  string
		page, pageSize, total int
		want                  Pagination
	}{
		{
			name: "exact fit", page: 1, pageSize: 5, total: 10,
			want: Pagination{CurrentPage: 1, TotalPages: 2, TotalCount: 10, PageSize: 5, HasNextPage: true},
		},
		{
			name: "remainder adds a page", page: 2, pageSize: 4, total: 9,
			want: Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 9, PageSize: 4, HasNextPage: true, HasPrevPage: true},
		},
		{
			name: "empty result", page: 1, pageSize: 10, total: 0,
			want: Pagination{CurrentPage: 1, TotalPages: 0, TotalCount: 0, PageSize: 10},
		},
		{
			name: "zero page size is floored", page: 1, pageSize: 0, total: 3,
			want: Pagination{CurrentPage: 1, TotalPages: 3, TotalCount: 3, PageSize: 1, HasNextPage: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPagination(tt.page, tt.pageSize, tt.total); got != tt.want {
				t.Errorf("NewPagination() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
