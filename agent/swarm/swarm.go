// Package swarm assembles the three mortgage agents into a handoff
// topology: each agent may answer directly, call its business tools, or
// transfer the conversation to another agent. Thread state is
// checkpointed between turns.
package swarm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	checkpointx "github.com/harborlend/mortgage-assistant/agent/checkpoint"
	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
	kbx "github.com/harborlend/mortgage-assistant/agent/kb"
	llmx "github.com/harborlend/mortgage-assistant/agent/llm"
	promptx "github.com/harborlend/mortgage-assistant/agent/prompt"
)

var (
	ErrInvalidThread  = errors.New("thread id is empty")
	ErrInvalidPrompt  = errors.New("prompt is empty")
	ErrUnknownAgent   = errors.New("active agent is not part of the swarm")
	ErrStepsExhausted = errors.New("conversation exceeded the step budget")
)

const defaultMaxSteps = 8

type Config struct {
	MaxSteps int `envconfig:"MAX_STEPS" split_words:"true" default:"8"`
}

// Swarm drives the multi-agent conversation loop.
type Swarm struct {
	agents   map[contractx.AgentName]*swarmAgent
	saver    checkpointx.Saver
	maxSteps int

	now   func() time.Time
	newID func() string
}

var _ contractx.Assistant = (*Swarm)(nil)

// New builds the three agents from the model config and assembles them
// around the checkpoint saver. A nil kbTool disables knowledge-base
// search for the general agent.
func New(
	ctx context.Context,
	llmCfg llmx.Config,
	saver checkpointx.Saver,
	kbTool *kbx.Tool,
	cfg Config,
) (*Swarm, error) {
	if err := llmCfg.Validate(); err != nil {
		return nil, err
	}
	if saver == nil {
		return nil, errors.New("checkpoint saver is required")
	}

	prompts := promptx.LoadPromptSet(time.Now())
	specs := []struct {
		name   contractx.AgentName
		prompt string
		kb     *kbx.Tool
	}{
		{contractx.AgentGeneral, prompts.General, kbTool},
		{contractx.AgentExisting, prompts.Existing, nil},
		{contractx.AgentApplication, prompts.Application, nil},
	}

	agents := make(map[contractx.AgentName]*swarmAgent, len(specs))
	for _, spec := range specs {
		gw := llmCfg.GatewayFor(spec.name)
		chatModel, err := gw.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for agent=%s: %v", contractx.ErrModelInvoke, spec.name, err)
		}
		ag, err := newSwarmAgent(ctx, spec.name, chatModel, spec.prompt, spec.kb)
		if err != nil {
			return nil, err
		}
		agents[spec.name] = ag
	}

	return assemble(agents, saver, cfg), nil
}

func assemble(agents map[contractx.AgentName]*swarmAgent, saver checkpointx.Saver, cfg Config) *Swarm {
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Swarm{
		agents:   agents,
		saver:    saver,
		maxSteps: maxSteps,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Invoke runs one assistant turn: load or create the thread, append the
// user message, and loop the active agent through tool calls and
// handoffs until a plain assistant reply lands.
func (s *Swarm) Invoke(ctx context.Context, threadID string, prompt string) (contractx.InvokeResult, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return contractx.InvokeResult{}, ErrInvalidThread
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return contractx.InvokeResult{}, ErrInvalidPrompt
	}

	st, err := s.loadOrCreateThread(ctx, threadID)
	if err != nil {
		return contractx.InvokeResult{}, err
	}

	s.appendMessage(st, schema.UserMessage(prompt))

	for step := 0; step < s.maxSteps; step++ {
		ag, ok := s.agents[st.ActiveAgent]
		if !ok {
			return contractx.InvokeResult{}, fmt.Errorf("%w: %s", ErrUnknownAgent, st.ActiveAgent)
		}

		out, err := ag.generate(ctx, st.Messages)
		if err != nil {
			return contractx.InvokeResult{}, err
		}
		s.appendMessage(st, out)

		if len(out.ToolCalls) == 0 {
			if strings.TrimSpace(out.Content) == "" {
				return contractx.InvokeResult{}, fmt.Errorf("%w: agent=%s returned an empty reply", contractx.ErrSchemaViolation, ag.name)
			}
			if err := s.saver.Save(ctx, st); err != nil {
				return contractx.InvokeResult{}, err
			}
			return contractx.InvokeResult{
				Messages:    st.Messages,
				ActiveAgent: st.ActiveAgent,
			}, nil
		}

		for _, call := range out.ToolCalls {
			if target, ok := handoffTarget(call.Function.Name); ok {
				log.Info().
					Str("thread_id", threadID).
					Str("from", string(st.ActiveAgent)).
					Str("to", string(target)).
					Msg("agent handoff")
				s.appendMessage(st, schema.ToolMessage(
					fmt.Sprintf("Transferred to %s", target), call.ID,
				))
				st.ActiveAgent = target
				continue
			}

			content, err := ag.executeTool(ctx, call)
			if err != nil {
				return contractx.InvokeResult{}, err
			}
			s.appendMessage(st, schema.ToolMessage(content, call.ID))
		}
	}

	return contractx.InvokeResult{}, fmt.Errorf("%w: thread=%s", ErrStepsExhausted, threadID)
}

func (s *Swarm) loadOrCreateThread(ctx context.Context, threadID string) (*checkpointx.ThreadState, error) {
	st, err := s.saver.Load(ctx, threadID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, checkpointx.ErrThreadNotFound) {
		return nil, err
	}
	return checkpointx.NewThreadState(threadID, s.now()), nil
}

// appendMessage tags the message with a stable identifier and adds it to
// the thread history.
func (s *Swarm) appendMessage(st *checkpointx.ThreadState, msg *schema.Message) {
	if msg == nil {
		return
	}
	if msg.Extra == nil {
		msg.Extra = make(map[string]any, 1)
	}
	if _, ok := msg.Extra[contractx.MessageIDKey]; !ok {
		msg.Extra[contractx.MessageIDKey] = s.newID()
	}
	st.Messages = append(st.Messages, msg)
}
