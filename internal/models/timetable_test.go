package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimetableShape(t *testing.T) {
	days := []string{"Monday", "Tuesday"}
	tt := NewTimetable(days, 3)
	days[0] = "Mutated"

	assert.Equal(t, []string{"Monday", "Tuesday"}, tt.Days)
	require.Len(t, tt.Grid, 2)
	for _, day := range tt.Days {
		require.Len(t, tt.Grid[day], 3)
	}
	assert.Equal(t, 6, tt.FreeSlots())
}

func TestTimetableAssign(t *testing.T) {
	tt := NewTimetable([]string{"Monday"}, 2)
	tt.Assign("Monday", 1, Entry{Teacher: "Alice", Subject: "Math"})
	tt.Assign("Sunday", 0, Entry{Teacher: "Bob", Subject: "Art"})
	tt.Assign("Monday", 5, Entry{Teacher: "Bob", Subject: "Art"})

	slot, ok := tt.At("Monday", 1)
	require.True(t, ok)
	require.False(t, slot.Free())
	assert.Equal(t, "Alice", slot.Entry.Teacher)
	assert.Equal(t, 1, tt.FreeSlots())

	_, ok = tt.At("Monday", 2)
	assert.False(t, ok)
}
