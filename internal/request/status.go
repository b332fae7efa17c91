// Package request tracks the lifecycle of one asynchronous server call.
package request

// Status is the loading/error/data slot of a single request. Data may outlive
// the cycle that produced it: a refetch keeps the previous value visible until
// the new response lands. IsLoading and IsError are never both true.
type Status[T any] struct {
	IsLoading    bool
	IsError      bool
	ErrorMessage string
	Data         *T
}

func Idle[T any]() Status[T] {
	return Status[T]{}
}

func Loading[T any]() Status[T] {
	return Status[T]{IsLoading: true}
}

func Succeeded[T any](v T) Status[T] {
	return Status[T]{Data: &v}
}

func Failed[T any](message string) Status[T] {
	return Status[T]{IsError: true, ErrorMessage: message}
}

// Resolve builds the terminal status of a request from its outcome.
func Resolve[T any](v *T, err error) Status[T] {
	if err != nil {
		return Failed[T](err.Error())
	}
	return Status[T]{Data: v}
}

// Refetch marks a new cycle as in flight and keeps the current data.
func (s Status[T]) Refetch() Status[T] {
	return Status[T]{IsLoading: true, Data: s.Data}
}

func (s Status[T]) WithoutData() Status[T] {
	s.Data = nil
	return s
}

func (s Status[T]) WithData(v T) Status[T] {
	s.Data = &v
	return s
}

// Value returns the data and whether any is present.
func (s Status[T]) Value() (T, bool) {
	if s.Data == nil {
		var zero T
		return zero, false
	}
	return *s.Data, true
}

func (s Status[T]) HasData() bool {
	return s.Data != nil
}
