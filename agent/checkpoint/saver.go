// Package checkpoint persists conversation threads between turns. A
// thread holds the accumulated message history and the agent currently
// owning the conversation, keyed by the caller's session identifier.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

var (
	ErrThreadNotFound = errors.New("thread state not found")
	ErrNilThreadState = errors.New("thread state is nil")
	ErrInvalidThread  = errors.New("thread id is empty")
)

// ThreadState is one conversation thread.
type ThreadState struct {
	ThreadID    string              `json:"thread_id"`
	ActiveAgent contractx.AgentName `json:"active_agent"`
	Messages    []*schema.Message   `json:"messages,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewThreadState starts a fresh thread owned by the default agent.
func NewThreadState(threadID string, now time.Time) *ThreadState {
	return &ThreadState{
		ThreadID:    threadID,
		ActiveAgent: contractx.DefaultAgent,
		UpdatedAt:   now.UTC(),
	}
}

func (t *ThreadState) Validate() error {
	if t == nil {
		return ErrNilThreadState
	}
	if strings.TrimSpace(t.ThreadID) == "" {
		return ErrInvalidThread
	}
	if !t.ActiveAgent.Valid() {
		return fmt.Errorf("%w: unknown active agent %q", contractx.ErrValidation, t.ActiveAgent)
	}
	return nil
}

// Saver is the persistence contract used by the swarm.
type Saver interface {
	Load(ctx context.Context, threadID string) (*ThreadState, error)
	Save(ctx context.Context, st *ThreadState) error
	Delete(ctx context.Context, threadID string) error
}

// MemorySaver keeps thread state in process memory. It mirrors the
// behavior of a framework in-memory checkpointer: no eviction, no
// durability, safe for concurrent use.
type MemorySaver struct {
	mu      sync.RWMutex
	threads map[string]*ThreadState
}

func NewMemorySaver() *MemorySaver {
	return &MemorySaver{threads: make(map[string]*ThreadState)}
}

func (s *MemorySaver) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidThread
	}

	s.mu.RLock()
	st, ok := s.threads[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrThreadNotFound
	}
	return cloneThreadState(st)
}

func (s *MemorySaver) Save(ctx context.Context, st *ThreadState) error {
	if err := st.Validate(); err != nil {
		return err
	}
	st.UpdatedAt = time.Now().UTC()

	clone, err := cloneThreadState(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.threads[st.ThreadID] = clone
	s.mu.Unlock()
	return nil
}

func (s *MemorySaver) Delete(ctx context.Context, threadID string) error {
	if strings.TrimSpace(threadID) == "" {
		return ErrInvalidThread
	}
	s.mu.Lock()
	delete(s.threads, threadID)
	s.mu.Unlock()
	return nil
}

// cloneThreadState deep-copies through JSON so callers cannot mutate the
// stored history behind the saver's back.
func cloneThreadState(st *ThreadState) (*ThreadState, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("clone thread state: %w", err)
	}
	var out ThreadState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("clone thread state: %w", err)
	}
	return &out, nil
}
