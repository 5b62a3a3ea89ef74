package core

import "fmt"

// Resolver serves injectable kinds from a Store.
type Resolver struct {
	store *Store
}

// NewResolver returns a Resolver reading st.
func NewResolver(st *Store) *Resolver {
	return &Resolver{store: st}
}

// Supports reports whether k is one of the injectable kinds.
func (r *Resolver) Supports(k Kind) bool {
	return k.Injectable()
}

// Resolve returns the value of k published in s. It fails with
// ErrResolution outside the CaseStart..CaseEnd window of s, and with
// ErrResolution and ErrUnsupportedKind for a kind Supports rejects.
func (r *Resolver) Resolve(k Kind, s *Scope) (any, error) {
	if !r.Supports(k) {
		return nil, fmt.Errorf("%w: %w: %s", ErrResolution, ErrUnsupportedKind, k)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s requested without a scope", ErrResolution, k)
	}
	v, ok := r.store.Get(s, k)
	if !ok {
		return nil, fmt.Errorf("%w: no %s published in %s; handles exist only between CaseStart and CaseEnd",
			ErrResolution, k, s)
	}
	return v, nil
}
