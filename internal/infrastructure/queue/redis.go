package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
)

// ErrEmpty is returned by Dequeue when no job is waiting
var ErrEmpty = errors.New("queue is empty")

// ImportJob is the message enqueued when a meeting import is submitted
type ImportJob struct {
	MeetingID  uuid.UUID `json:"meeting_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Attempt    int       `json:"attempt"`
}

// ImportQueue hands import jobs from the API to the worker
type ImportQueue interface {
	Enqueue(ctx context.Context, job *ImportJob) error
	Dequeue(ctx context.Context) (*ImportJob, error)
	Length(ctx context.Context) (int64, error)
}

// RedisQueue is a FIFO import queue backed by a Redis list
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue connects to Redis and binds the queue to its list key
func NewRedisQueue(cfg *config.Config) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisQueue{
		client: client,
		key:    cfg.Redis.Queue,
	}, nil
}

// Enqueue pushes a job onto the tail of the queue
func (q *RedisQueue) Enqueue(ctx context.Context, job *ImportJob) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal import job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue import job: %w", err)
	}
	return nil
}

// Dequeue pops the oldest job, returning ErrEmpty when nothing is queued
func (q *RedisQueue) Dequeue(ctx context.Context) (*ImportJob, error) {
	payload, err := q.client.LPop(ctx, q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue import job: %w", err)
	}

	var job ImportJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import job: %w", err)
	}
	return &job, nil
}

// Length returns the number of waiting jobs
func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	return n, nil
}

// Close closes the underlying Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
