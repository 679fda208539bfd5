package repository

import (
	"context"

	"github.com/noah-isme/exam-logistics-api/pkg/jobs"
)

const taskKindInvalidate = "invalidate"

// QueuedCache reads and writes through the underlying cache but hands
// invalidation to a background queue, so a slow or flapping Redis never
// stalls the exam write path and a failed delete is retried instead of
// leaving stale entries behind a warning log.
type QueuedCache struct {
	*CacheRepository
	queue *jobs.Queue
}

// NewQueuedCache wraps the cache repository with asynchronous invalidation.
func NewQueuedCache(cache *CacheRepository, queue *jobs.Queue) *QueuedCache {
	return &QueuedCache{CacheRepository: cache, queue: queue}
}

// DeleteByPattern enqueues the invalidation instead of performing it inline.
func (c *QueuedCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return c.queue.Enqueue(jobs.Task{Kind: taskKindInvalidate, Payload: pattern})
}

// InvalidationHandler is the queue handler performing the actual delete.
func (c *CacheRepository) InvalidationHandler() jobs.Handler {
	return func(ctx context.Context, task jobs.Task) error {
		pattern, ok := task.Payload.(string)
		if !ok {
			return nil
		}
		return c.DeleteByPattern(ctx, pattern)
	}
}
