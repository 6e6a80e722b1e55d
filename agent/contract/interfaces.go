package contract

import "context"

// Assistant is the conversational surface exposed to the runtime.
type Assistant interface {
	Invoke(ctx context.Context, threadID string, prompt string) (InvokeResult, error)
}
