package pstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_AddDedupes(t *testing.T) {
	assert := assert.New(t)

	s := Set{}
	s.Add(State{Cursor: 1, PathID: "a"})
	s.Add(State{Cursor: 1, PathID: "a"})
	s.Add(State{Cursor: 1, PathID: "b"})

	assert.Equal(2, s.Len())
	assert.True(s.HasCursor(1))
	assert.False(s.HasCursor(2))
}

func TestUnion(t *testing.T) {
	testCases := []struct {
		name     string
		sets     []Set
		expected []State
	}{
		{
			name:     "empty plus empty",
			sets:     []Set{{}, {}},
			expected: nil,
		},
		{
			name: "disjoint cursors",
			sets: []Set{
				Singleton(State{Cursor: 0, PathID: "root"}),
				Singleton(State{Cursor: 1, PathID: "root"}),
			},
			expected: []State{{Cursor: 0, PathID: "root"}, {Cursor: 1, PathID: "root"}},
		},
		{
			name: "overlapping cursor, distinct paths merge",
			sets: []Set{
				Singleton(State{Cursor: 2, PathID: "a"}),
				Singleton(State{Cursor: 2, PathID: "b"}),
			},
			expected: []State{{Cursor: 2, PathID: "a"}, {Cursor: 2, PathID: "b"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			got := Union(tc.sets...)
			assert.ElementsMatch(tc.expected, got.States())
		})
	}
}

func TestEqual(t *testing.T) {
	assert := assert.New(t)

	a := Of(State{Cursor: 0, PathID: "x"}, State{Cursor: 1, PathID: "y"})
	b := Of(State{Cursor: 1, PathID: "y"}, State{Cursor: 0, PathID: "x"})
	c := Of(State{Cursor: 0, PathID: "x"})

	assert.True(Equal(a, b))
	assert.False(Equal(a, c))
}

func TestIsEmpty(t *testing.T) {
	assert := assert.New(t)

	assert.True(Set{}.IsEmpty())
	assert.True(Set{0: {}}.IsEmpty())
	assert.False(Singleton(State{Cursor: 0, PathID: "root"}).IsEmpty())
}
