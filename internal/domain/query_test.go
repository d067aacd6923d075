package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPageDerivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		offset    int
		limit     int
		total     int
		wantPage  int
		wantPages int
	}{
		{"first page", 0, 2, 5, 1, 3},
		{"second page", 2, 2, 5, 2, 3},
		{"offset not aligned to limit", 3, 2, 5, 2, 3},
		{"empty result reports one page", 0, 20, 0, 1, 1},
		{"zero limit does not divide by zero", 10, 0, 7, 1, 1},
		{"exact multiple", 0, 10, 30, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := NewPage([]int{}, tt.total, PageRequest{Offset: tt.offset, Limit: tt.limit})
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPages, page.Pages)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.limit, page.PageSize)
		})
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	t.Parallel()
	page := NewPage[string](nil, 0, PageRequest{Limit: 5})
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestPageFromNumber(t *testing.T) {
	t.Parallel()
	assert.Equal(t, PageRequest{Offset: 0, Limit: 20}, PageFromNumber(1, 20))
	assert.Equal(t, PageRequest{Offset: 40, Limit: 20}, PageFromNumber(3, 20))
	assert.Equal(t, PageRequest{Offset: 0, Limit: 50}, PageFromNumber(0, 50))
}

func TestTaskQueryNormalizeAndValidate(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	q := TaskQuery{
		Filter: TaskFilter{TagIDs: []uuid.UUID{a, b, a}},
		Page:   PageRequest{Limit: 20},
	}.Normalize()

	assert.Equal(t, DefaultTaskSort, q.Sort)
	assert.Equal(t, []uuid.UUID{a, b}, q.Filter.TagIDs)
	assert.NoError(t, q.Validate())

	invalid := []TaskQuery{
		{Sort: TaskSort{Field: "updated_at", Order: SortAsc}, Page: PageRequest{Limit: 1}},
		{Sort: TaskSort{Field: SortByTitle, Order: "sideways"}, Page: PageRequest{Limit: 1}},
		{Sort: DefaultTaskSort, Page: PageRequest{Limit: 0}},
		{Sort: DefaultTaskSort, Page: PageRequest{Limit: 101}},
		{Sort: DefaultTaskSort, Page: PageRequest{Offset: -1, Limit: 10}},
		{Sort: DefaultTaskSort, Page: PageRequest{Limit: 10}, Filter: TaskFilter{Priority: ptr(Priority(7))}},
		{Sort: DefaultTaskSort, Page: PageRequest{Limit: 10}, Filter: TaskFilter{Search: string(make([]byte, 201))}},
	}
	for i, q := range invalid {
		assert.ErrorIs(t, q.Validate(), ErrValidation, "case %d", i)
	}
}
