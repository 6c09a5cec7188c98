package client

import (
	"context"

	"github.com/lokis-perfume/storefront/client/internal/shardqueue"
)

// mutationQueue is the ordered job runner behind SubmitMutation and Await.
type mutationQueue interface {
	Submit(ctx context.Context, key string, job shardqueue.Job) error
	Barrier(ctx context.Context, key string) error
	Stop()
}
