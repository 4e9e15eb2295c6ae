package interpreter

import (
	"context"
	"sync"
)

// QueueInput answers prompts from values in order. Once the queue is empty
// every further prompt reads "".
func QueueInput(values ...string) InputFunc {
	var mu sync.Mutex
	queue := append([]string(nil), values...)
	return func(ctx context.Context, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		mu.Lock()
		defer mu.Unlock()
		if len(queue) == 0 {
			return "", nil
		}
		next := queue[0]
		queue = queue[1:]
		return next, nil
	}
}
