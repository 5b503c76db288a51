package store

import (
	"sort"

	"github.com/thep200/github-kudos/internal/model"
)

// KudoSet maps repository ids to kudos. It is immutable: Insert and Remove
// return a new set and leave the receiver untouched. The zero value is an
// empty set.
type KudoSet struct {
	m map[int64]model.Kudo
}

// NewKudoSet folds kudos into a set keyed by repository id. When an id shows
// up more than once the last one in input order wins.
func NewKudoSet(kudos ...model.Kudo) KudoSet {
	m := make(map[int64]model.Kudo, len(kudos))
	for _, k := range kudos {
		m[k.RepoID] = k
	}
	return KudoSet{m: m}
}

func (s KudoSet) Len() int {
	return len(s.m)
}

func (s KudoSet) Has(repoID int64) bool {
	_, ok := s.m[repoID]
	return ok
}

func (s KudoSet) Get(repoID int64) (model.Kudo, bool) {
	k, ok := s.m[repoID]
	return k, ok
}

// Insert returns a copy of the set with kudo stored under its repository id.
func (s KudoSet) Insert(kudo model.Kudo) KudoSet {
	m := make(map[int64]model.Kudo, len(s.m)+1)
	for id, k := range s.m {
		m[id] = k
	}
	m[kudo.RepoID] = kudo
	return KudoSet{m: m}
}

// Remove returns a copy of the set without repoID.
func (s KudoSet) Remove(repoID int64) KudoSet {
	m := make(map[int64]model.Kudo, len(s.m))
	for id, k := range s.m {
		if id != repoID {
			m[id] = k
		}
	}
	return KudoSet{m: m}
}

// Values lists the kudos ordered by repository id.
func (s KudoSet) Values() []model.Kudo {
	out := make([]model.Kudo, 0, len(s.m))
	for _, k := range s.m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RepoID < out[j].RepoID })
	return out
}

// Map returns a snapshot the caller may modify freely.
func (s KudoSet) Map() map[int64]model.Kudo {
	m := make(map[int64]model.Kudo, len(s.m))
	for id, k := range s.m {
		m[id] = k
	}
	return m
}
