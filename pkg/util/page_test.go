package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, perPage, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{30, 10, 3},
		{-5, 10, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.perPage), "total=%d", tc.total)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 1, ClampPage(-7, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 3, ClampPage(3, 3))
	assert.Equal(t, 3, ClampPage(99, 3))
}

func TestNewPageEnvelope(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := NewPage(items, 2, 5, 25)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PerPage)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 5, page.Pages)
	assert.True(t, page.HasPrev)
	assert.True(t, page.HasNext)

	first := NewPage(items, 1, 5, 25)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	last := NewPage(items, 5, 5, 25)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)

	empty := NewPage[int](nil, 1, 10, 0)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 1, empty.Pages)
	assert.False(t, empty.HasPrev)
	assert.False(t, empty.HasNext)
}

func TestPaginateSlice(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	first := PaginateSlice(items, 1, 10)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 0, first.Items[0])
	assert.Equal(t, 3, first.Pages)

	last := PaginateSlice(items, 3, 10)
	assert.Len(t, last.Items, 5)
	assert.Equal(t, 20, last.Items[0])
	assert.False(t, last.HasNext)

	// Out-of-range page requests clamp instead of erroring.
	over := PaginateSlice(items, 9, 10)
	assert.Equal(t, 3, over.Page)
	assert.Len(t, over.Items, 5)

	under := PaginateSlice(items, 0, 10)
	assert.Equal(t, 1, under.Page)
	assert.Len(t, under.Items, 10)

	empty := PaginateSlice([]int{}, 4, 10)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.Pages)
	assert.Empty(t, empty.Items)
}
