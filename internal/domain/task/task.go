package task

import (
	"encoding/json"
	"fmt"
)

// Task is anything that can be pushed to a sitemap stream.
// TaskType doubles as the stream suffix.
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

func encode(task Task) ([]byte, error) {
	return json.Marshal(task)
}

// Decode reads a task back from its stream payload.
func Decode[T any](payload []byte) (*T, error) {
	t := new(T)
	if err := json.Unmarshal(payload, t); err != nil {
		return nil, fmt.Errorf("failed to decode task payload: %w", err)
	}
	return t, nil
}
