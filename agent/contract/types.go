package contract

import (
	"github.com/cloudwego/eino/schema"
)

// AgentName identifies one configured agent inside the swarm.
type AgentName string

const (
	AgentGeneral     AgentName = "general_mortgage_agent"
	AgentExisting    AgentName = "existing_mortgage_agent"
	AgentApplication AgentName = "mortgage_application_agent"
)

// DefaultAgent is the swarm entry agent for new conversation threads.
const DefaultAgent = AgentGeneral

// MessageIDKey is the Extra key carrying a message's stable identifier.
const MessageIDKey = "message_id"

func (a AgentName) Valid() bool {
	switch a {
	case AgentGeneral, AgentExisting, AgentApplication:
		return true
	}
	return false
}

// InvokeResult is the accumulated outcome of one assistant turn: the full
// message history of the thread and the agent that owns the conversation
// after any handoffs.
type InvokeResult struct {
	Messages    []*schema.Message
	ActiveAgent AgentName
}
