package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
	kbx "github.com/harborlend/mortgage-assistant/agent/kb"
	toolsx "github.com/harborlend/mortgage-assistant/agent/tools"
)

// swarmAgent is one configured (model, tools, prompt) unit. The chat
// model runs inside a compiled graph; tool execution and handoff
// routing happen in the swarm driver.
type swarmAgent struct {
	name         contractx.AgentName
	systemPrompt string
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	executor     toolsx.Executor
	kbTool       *kbx.Tool
	allowedTools map[string]struct{}
}

func newSwarmAgent(
	ctx context.Context,
	name contractx.AgentName,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	kbTool *kbx.Tool,
) (*swarmAgent, error) {
	infos, executor := toolsx.BuildForAgent(name)
	if name == contractx.AgentGeneral && kbTool != nil {
		infos = append(infos, kbTool.Info())
	}
	infos = append(infos, handoffInfosFor(name)...)

	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, name, err)
	}

	runner, err := compileAgentGraph(ctx, name, toolModel)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		if info == nil || strings.TrimSpace(info.Name) == "" {
			continue
		}
		allowed[info.Name] = struct{}{}
	}

	return &swarmAgent{
		name:         name,
		systemPrompt: systemPrompt,
		runner:       runner,
		executor:     executor,
		kbTool:       kbTool,
		allowedTools: allowed,
	}, nil
}

func compileAgentGraph(
	ctx context.Context,
	name contractx.AgentName,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	graph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node for agent=%s: %w", name, err)
	}
	if err := graph.AddEdge(compose.START, "model"); err != nil {
		return nil, fmt.Errorf("add edge start->model for agent=%s: %w", name, err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end for agent=%s: %w", name, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(fmt.Sprintf("swarm.%s", name)))
	if err != nil {
		return nil, fmt.Errorf("compile agent graph for agent=%s: %w", name, err)
	}
	return runner, nil
}

// generate runs one model turn against the thread history, with the
// agent's system prompt prepended.
func (a *swarmAgent) generate(ctx context.Context, history []*schema.Message) (*schema.Message, error) {
	input := make([]*schema.Message, 0, len(history)+1)
	input = append(input, schema.SystemMessage(a.systemPrompt))
	input = append(input, history...)

	out, err := a.runner.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: agent=%s invoke: %v", contractx.ErrModelInvoke, a.name, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: agent=%s returned nil message", contractx.ErrSchemaViolation, a.name)
	}
	return out, nil
}

// executeTool runs one non-handoff tool call and returns the payload for
// the tool message. Tool failures degrade to an error payload so the
// conversation keeps going.
func (a *swarmAgent) executeTool(ctx context.Context, call schema.ToolCall) (string, error) {
	tool := strings.TrimSpace(call.Function.Name)
	if tool == "" {
		return "", fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}
	if _, ok := a.allowedTools[tool]; !ok {
		return "", fmt.Errorf("%w: tool=%s is not bound to agent=%s", contractx.ErrToolUnavailable, tool, a.name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return "", fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
		}
	}

	if tool == kbx.ToolKnowledgeBase {
		return a.searchKnowledgeBase(ctx, args)
	}
	return a.executor(ctx, tool, args)
}

func (a *swarmAgent) searchKnowledgeBase(ctx context.Context, args map[string]any) (string, error) {
	if a.kbTool == nil {
		return errorPayload("knowledge base is not available"), nil
	}
	query, _ := args["query"].(string)
	result, err := a.kbTool.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base search failed")
		return errorPayload(err.Error()), nil
	}
	return result, nil
}

func errorPayload(msg string) string {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return string(raw)
}
