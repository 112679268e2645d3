package errors

// RecoverPanic converts a recovered panic value into an error so consumer
// loops can keep running after a handler panics.
func RecoverPanic(r interface{}) error {
	switch v := r.(type) {
	case error:
		return ErrInternal.WithMessage("panic recovered").WithCause(v)
	default:
		return ErrInternal.WithMessage("panic recovered: %v", v)
	}
}
