package cohort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }

func TestDuplicates(t *testing.T) {
	tests := []struct {
		name string
		refs []StudentRef
		want []int
	}{
		{
			name: "no duplicates",
			refs: []StudentRef{{StudentID: 1}, {StudentID: 2}, {StudentID: 3}},
			want: nil,
		},
		{
			name: "single duplicate",
			refs: []StudentRef{{StudentID: 1}, {StudentID: 2}, {StudentID: 2}},
			want: []int{2},
		},
		{
			name: "triple occurrence reported once",
			refs: []StudentRef{{StudentID: 5}, {StudentID: 5}, {StudentID: 5}},
			want: []int{5},
		},
		{
			name: "multiple duplicates keep first-occurrence order",
			refs: []StudentRef{{StudentID: 3}, {StudentID: 1}, {StudentID: 3}, {StudentID: 1}},
			want: []int{3, 1},
		},
		{
			name: "empty input",
			refs: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Duplicates(tt.refs))
		})
	}
}

func TestReconcilePreservesOutcomeForRetainedStudents(t *testing.T) {
	existing := []Assignment[*float64]{
		{StudentID: 1, ClassID: 10, ClassName: "X-A", Outcome: score(80)},
		{StudentID: 2, ClassID: 10, ClassName: "X-A", Outcome: nil},
	}
	desired := []StudentRef{
		{StudentID: 1, ClassID: 10, ClassName: "X-A"},
		{StudentID: 3, ClassID: 11, ClassName: "X-B"},
	}

	got := Reconcile(existing, desired, nil)

	require.Len(t, got, 2)
	require.NotNil(t, got[0].Outcome)
	assert.Equal(t, 80.0, *got[0].Outcome)
	assert.Equal(t, 3, got[1].StudentID)
	assert.Nil(t, got[1].Outcome)

	// Student 2 was dropped together with their (empty) outcome.
	for _, a := range got {
		assert.NotEqual(t, 2, a.StudentID)
	}
}

func TestReconcileRecapturesClassSnapshot(t *testing.T) {
	// Student 1 moved from X-A to XI-A since the activity was created. The
	// submitted ref carries the new snapshot and must win over the stored one.
	existing := []Assignment[*float64]{
		{StudentID: 1, ClassID: 10, ClassName: "X-A", Outcome: score(95)},
	}
	desired := []StudentRef{
		{StudentID: 1, ClassID: 20, ClassName: "XI-A"},
	}

	got := Reconcile(existing, desired, nil)

	require.Len(t, got, 1)
	assert.Equal(t, 20, got[0].ClassID)
	assert.Equal(t, "XI-A", got[0].ClassName)
	require.NotNil(t, got[0].Outcome)
	assert.Equal(t, 95.0, *got[0].Outcome)
}

func TestReconcileEmptyExisting(t *testing.T) {
	desired := []StudentRef{
		{StudentID: 7, ClassID: 1, ClassName: "XII-IPA-1"},
		{StudentID: 8, ClassID: 1, ClassName: "XII-IPA-1"},
	}

	got := Reconcile(nil, desired, (*float64)(nil))

	require.Len(t, got, 2)
	assert.Nil(t, got[0].Outcome)
	assert.Nil(t, got[1].Outcome)
}

func TestReconcileEmptyDesiredDropsEverything(t *testing.T) {
	existing := []Assignment[*float64]{
		{StudentID: 1, Outcome: score(50)},
	}

	got := Reconcile(existing, nil, (*float64)(nil))
	assert.Empty(t, got)
}

func TestReconcileWithStatusOutcome(t *testing.T) {
	existing := []Assignment[string]{
		{StudentID: 1, ClassID: 4, ClassName: "X-B", Outcome: "PAID"},
	}
	desired := []StudentRef{
		{StudentID: 1, ClassID: 4, ClassName: "X-B"},
		{StudentID: 2, ClassID: 4, ClassName: "X-B"},
	}

	got := Reconcile(existing, desired, "UNPAID")

	require.Len(t, got, 2)
	assert.Equal(t, "PAID", got[0].Outcome)
	assert.Equal(t, "UNPAID", got[1].Outcome)
}

func TestReconcilePreservesDesiredOrder(t *testing.T) {
	existing := []Assignment[*float64]{
		{StudentID: 2, Outcome: score(70)},
		{StudentID: 1, Outcome: score(60)},
	}
	desired := []StudentRef{
		{StudentID: 1}, {StudentID: 2}, {StudentID: 3},
	}

	got := Reconcile(existing, desired, (*float64)(nil))

	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].StudentID, got[1].StudentID, got[2].StudentID})
}
