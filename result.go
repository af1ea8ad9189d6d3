package btcfolio

// Result is the outcome of a best-effort fetch.
//
// A failed Result still carries a usable Value (the default the caller asked
// for), so a partial run can go on while reporting what was defaulted.
type Result[T any] struct {
	Value T
	Err   error
}

// Try calls fetch and falls back to def when it fails.
func Try[T any](def T, fetch func() (T, error)) Result[T] {
	v, err := fetch()
	if err != nil {
		return Result[T]{Value: def, Err: err}
	}
	return Result[T]{Value: v}
}

// OK reports whether the value was actually fetched.
func (r Result[T]) OK() bool { return r.Err == nil }

// Defaulted reports whether Value is a fallback.
func (r Result[T]) Defaulted() bool { return r.Err != nil }
