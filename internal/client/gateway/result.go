package gateway

// Result is the normalized outcome of a call. Exactly one of Success or Err
// is meaningful: Success implies Err == nil.
type Result[T any] struct {
	Data    T
	Success bool
	Err     *Error
}

// Message is the user-facing error text, or "" on success.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}

// Error returns r.Err as an error value, nil on success.
func (r Result[T]) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

func ok[T any](data T) Result[T] {
	return Result[T]{Data: data, Success: true}
}

func fail[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

// Empty is the payload type of endpoints whose body is ignored.
type Empty struct{}
