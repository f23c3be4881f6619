package memory

import (
	"sort"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
)

func find[T any](m map[string]*T, kind, id string, clone func(*T) *T) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, apperrors.NotFound(kind, id)
	}
	return clone(v), nil
}

// collect returns clones of the values matching keep, ordered by less
func collect[T any](m map[string]*T, keep func(*T) bool, clone func(*T) *T, less func(a, b *T) bool) []*T {
	out := make([]*T, 0)
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, clone(v))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
