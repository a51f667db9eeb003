package shared

import "context"

// UnitOfWork runs a function inside a single storage transaction. Every
// repository call made with the context passed to fn joins that transaction;
// if fn returns an error, all of its writes are rolled back together.
type UnitOfWork interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
