package swarm

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

const handoffPrefix = "transfer_to_"

var handoffDescriptions = map[contractx.AgentName]string{
	contractx.AgentExisting:    "Transfer user to the existing mortgage agent for current mortgage details including outstanding principal, interest rates, maturity dates, payment schedules, and upcoming payment information.",
	contractx.AgentApplication: "Transfer user to the mortgage application agent for new mortgage applications, document status tracking, application details, and historical mortgage rate information.",
	contractx.AgentGeneral:     "Transfer user to the general mortgage agent to answer general questions about mortgages from the knowledge base, like how to refinance, or the difference between 15-year and 30-year mortgages.",
}

func handoffToolName(target contractx.AgentName) string {
	return handoffPrefix + string(target)
}

// handoffTarget reports whether a tool call is a handoff and, if so, to
// which agent.
func handoffTarget(tool string) (contractx.AgentName, bool) {
	name := strings.TrimPrefix(tool, handoffPrefix)
	if name == tool {
		return "", false
	}
	target := contractx.AgentName(name)
	if !target.Valid() {
		return "", false
	}
	return target, true
}

// handoffInfosFor returns the transfer tools an agent may call: one per
// other agent in the swarm.
func handoffInfosFor(agent contractx.AgentName) []*schema.ToolInfo {
	targets := []contractx.AgentName{
		contractx.AgentGeneral,
		contractx.AgentExisting,
		contractx.AgentApplication,
	}

	infos := make([]*schema.ToolInfo, 0, len(targets)-1)
	for _, target := range targets {
		if target == agent {
			continue
		}
		infos = append(infos, &schema.ToolInfo{
			Name: handoffToolName(target),
			Desc: handoffDescriptions[target],
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"reason": {Type: schema.String, Desc: "Why the conversation is being transferred"},
			}),
		})
	}
	return infos
}
