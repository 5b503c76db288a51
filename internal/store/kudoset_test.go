package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep200/github-kudos/internal/model"
)

func TestKudoSet_OneEntryPerID(t *testing.T) {
	tests := []struct {
		name  string
		input []int64
		want  int
	}{
		{name: "empty", input: nil, want: 0},
		{name: "distinct", input: []int64{1, 2, 3}, want: 3},
		{name: "duplicates", input: []int64{1, 1, 2, 1, 2}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kudos := make([]model.Kudo, 0, len(tt.input))
			for _, id := range tt.input {
				kudos = append(kudos, model.Kudo{RepoID: id})
			}
			require.Equal(t, tt.want, NewKudoSet(kudos...).Len())
		})
	}
}

func TestKudoSet_InsertRemoveAreCopies(t *testing.T) {
	base := NewKudoSet(model.Kudo{RepoID: 1})

	grown := base.Insert(model.Kudo{RepoID: 2})
	shrunk := grown.Remove(1)

	require.Equal(t, 1, base.Len())
	require.Equal(t, 2, grown.Len())
	require.Equal(t, 1, shrunk.Len())
	require.True(t, shrunk.Has(2))
	require.False(t, shrunk.Has(1))
}

func TestKudoSet_ZeroValue(t *testing.T) {
	var s KudoSet

	require.Equal(t, 0, s.Len())
	require.False(t, s.Has(1))
	require.Empty(t, s.Values())
	require.Equal(t, 1, s.Insert(model.Kudo{RepoID: 1}).Len())
	require.Equal(t, 0, s.Remove(1).Len())
}

func TestKudoSet_ValuesSorted(t *testing.T) {
	s := NewKudoSet(model.Kudo{RepoID: 3}, model.Kudo{RepoID: 1}, model.Kudo{RepoID: 2})

	values := s.Values()
	require.Equal(t, []int64{1, 2, 3}, []int64{values[0].RepoID, values[1].RepoID, values[2].RepoID})
}

func TestKudoSet_MapIsSnapshot(t *testing.T) {
	s := NewKudoSet(model.Kudo{RepoID: 1})

	m := s.Map()
	delete(m, 1)

	require.True(t, s.Has(1))
}
