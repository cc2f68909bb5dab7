package provider

import "context"

// RequestResponse takes one input and returns one output, such as running a
// command to completion.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Stream takes one input and returns many outputs, such as the chunks a
// running command writes to its pipes.
type Stream[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (Iterator[O], error)
}
