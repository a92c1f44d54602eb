package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderWithDeadline(num string, src Source, deadline string) Order {
	o := Order{OrderNumber: num, DataSource: src}
	if deadline != "" {
		o.LaunchDeadline = day(deadline)
	}
	return o
}

func TestMerge_SortedDescendingNilLast(t *testing.T) {
	active := []Order{
		orderWithDeadline("F1", SourceActive, "2025-01-10"),
		orderWithDeadline("F2", SourceActive, ""),
		orderWithDeadline("F3", SourceActive, "2025-03-01"),
	}
	historical := []Order{
		orderWithDeadline("F4", SourceHistorical, "2025-02-01"),
		orderWithDeadline("F5", SourceHistorical, ""),
	}

	merged := Merge(active, historical, MergeOptions{})
	require.Len(t, merged, 5)

	var nums []string
	for _, o := range merged {
		nums = append(nums, o.OrderNumber)
	}
	assert.Equal(t, []string{"F3", "F4", "F1", "F2", "F5"}, nums)
}

func TestMerge_Unsorted(t *testing.T) {
	active := []Order{orderWithDeadline("F1", SourceActive, "2025-01-10")}
	historical := []Order{orderWithDeadline("F2", SourceHistorical, "2025-12-01")}

	merged := Merge(active, historical, MergeOptions{Unsorted: true})

	require.Len(t, merged, 2)
	assert.Equal(t, "F1", merged[0].OrderNumber)
	assert.Equal(t, "F2", merged[1].OrderNumber)
}

func TestMerge_KeepsCrossSourceDuplicates(t *testing.T) {
	active := []Order{orderWithDeadline("F1", SourceActive, "2025-01-10")}
	historical := []Order{orderWithDeadline("F1", SourceHistorical, "2025-01-10")}

	merged := Merge(active, historical, MergeOptions{})

	require.Len(t, merged, 2)
	assert.Equal(t, SourceActive, merged[0].DataSource)
	assert.Equal(t, SourceHistorical, merged[1].DataSource)
}

func TestMerge_EmptySides(t *testing.T) {
	one := []Order{orderWithDeadline("F1", SourceActive, "2025-01-10")}

	assert.Equal(t, one, Merge(one, nil, MergeOptions{}))
	assert.Len(t, Merge(nil, one, MergeOptions{}), 1)

	empty := Merge(nil, nil, MergeOptions{})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	active := []Order{
		orderWithDeadline("F1", SourceActive, "2025-01-10"),
		orderWithDeadline("F2", SourceActive, "2025-03-01"),
	}

	Merge(active, nil, MergeOptions{})

	assert.Equal(t, "F1", active[0].OrderNumber)
}
