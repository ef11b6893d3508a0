package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventoryExpiryScan reports stocked batches that are about to expire.
	TaskInventoryExpiryScan = "inventory:expiry_scan"
	// TaskReceiptListWarmup pre-fills the warehouse receipt list cache.
	TaskReceiptListWarmup = "receipt:list_warmup"
)

// ExpiryScanPayload configures an expiry scan run.
type ExpiryScanPayload struct {
	WindowDays int `json:"window_days"`
	Limit      int `json:"limit,omitempty"`
}

// ReceiptWarmupPayload lists the date buckets to warm.
type ReceiptWarmupPayload struct {
	Buckets []string `json:"buckets"`
}

// DefaultWarmupBuckets are the list filters most screens open with.
var DefaultWarmupBuckets = []string{"", "0", "7", "30"}

// NewExpiryScanTask constructs an expiry scan task.
func NewExpiryScanTask(windowDays int) (*asynq.Task, error) {
	data, err := json.Marshal(ExpiryScanPayload{WindowDays: windowDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryExpiryScan, data), nil
}

// NewReceiptWarmupTask constructs a receipt list warmup task.
func NewReceiptWarmupTask(buckets []string) (*asynq.Task, error) {
	if len(buckets) == 0 {
		buckets = DefaultWarmupBuckets
	}
	data, err := json.Marshal(ReceiptWarmupPayload{Buckets: buckets})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptListWarmup, data), nil
}

// NewTask builds the task registered under taskType with its default payload.
func NewTask(taskType string, expiryWindowDays int) (*asynq.Task, error) {
	switch taskType {
	case TaskInventoryExpiryScan:
		return NewExpiryScanTask(expiryWindowDays)
	case TaskReceiptListWarmup:
		return NewReceiptWarmupTask(nil)
	default:
		return nil, &UnknownTaskError{Type: taskType}
	}
}

// UnknownTaskError reports a task type the worker does not handle.
type UnknownTaskError struct {
	Type string
}

func (e *UnknownTaskError) Error() string {
	return "jobs: unknown task type " + e.Type
}
