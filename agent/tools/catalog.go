// Package tools carries the business-data tools exposed to the swarm
// agents. Every tool returns demo fixtures or synthetic data and cannot
// fail; unknown tools degrade to an error payload instead of an error.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

const (
	ToolGetMortgageDetails    = "get_mortgage_details"
	ToolGetApplicationDetails = "get_application_details"
	ToolGetRateHistory        = "get_mortgage_rate_history"
	ToolGetDocStatus          = "get_mortgage_app_doc_status"
	ToolCreateCustomerID      = "create_customer_id"
	ToolCreateLoanApplication = "create_loan_application"
)

// Executor runs one tool call and returns the JSON payload to feed back
// into the conversation as the tool message content.
type Executor func(ctx context.Context, tool string, args map[string]any) (string, error)

// BuildForAgent returns the tool catalog and executor for one agent.
func BuildForAgent(agent contractx.AgentName) ([]*schema.ToolInfo, Executor) {
	return InfosForAgent(agent), NewExecutor()
}

// InfosForAgent lists the business tools each agent may call. Handoff
// tools and the knowledge-base tool are contributed elsewhere.
func InfosForAgent(agent contractx.AgentName) []*schema.ToolInfo {
	switch agent {
	case contractx.AgentExisting:
		return []*schema.ToolInfo{
			{
				Name: ToolGetMortgageDetails,
				Desc: "Retrieves the mortgage status for a given customer ID, including account number, outstanding principal, interest rate, maturity date, payments remaining, and next payment details.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"customer_id": {Type: schema.String, Desc: "Customer identifier", Required: true},
				}),
			},
		}
	case contractx.AgentApplication:
		return []*schema.ToolInfo{
			{
				Name: ToolGetApplicationDetails,
				Desc: "Retrieves the details about an application for a new mortgage: application ID, date, status, type, amount, tentative rate, and term in years.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"customer_id": {Type: schema.String, Desc: "Customer identifier", Required: true},
				}),
			},
			{
				Name: ToolGetRateHistory,
				Desc: "Retrieves the history of mortgage interest rates going back a given number of business days, defaults to 30. Each entry contains the date and the rate to 2 decimal places.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"day_count": {Type: schema.Integer, Desc: "Number of business days of history"},
					"type":      {Type: schema.String, Desc: "Mortgage product: 15-year-fixed or 30-year-fixed"},
				}),
			},
			{
				Name: ToolGetDocStatus,
				Desc: "Retrieves the list of required documents for a mortgage application in process, along with their statuses (COMPLETED or MISSING).",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"customer_id": {Type: schema.String, Desc: "Customer identifier", Required: true},
				}),
			},
			{
				Name: ToolCreateCustomerID,
				Desc: "Creates a new customer ID for a customer that does not have one yet.",
			},
			{
				Name: ToolCreateLoanApplication,
				Desc: "Creates a new loan application from the customer's name, age, annual income, and annual expense.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"customer_id":    {Type: schema.String, Desc: "Customer identifier", Required: true},
					"name":           {Type: schema.String, Desc: "Customer name", Required: true},
					"age":            {Type: schema.Integer, Desc: "Customer age"},
					"annual_income":  {Type: schema.Number, Desc: "Annual income"},
					"annual_expense": {Type: schema.Number, Desc: "Annual expense"},
				}),
			},
		}
	default:
		return nil
	}
}

// NewExecutor builds the shared tool executor. One executor serves every
// request hitting an agent, so the rate-history rng is mutex-guarded.
func NewExecutor() Executor {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var mu sync.Mutex
	return func(ctx context.Context, tool string, args map[string]any) (string, error) {
		now := time.Now()
		log.Debug().Str("tool", tool).Msg("executing tool")

		switch tool {
		case ToolGetMortgageDetails:
			return marshalResult(tool, mortgageDetails(stringArg(args, "customer_id"), now))
		case ToolGetApplicationDetails:
			return marshalResult(tool, applicationDetails(stringArg(args, "customer_id"), now))
		case ToolGetRateHistory:
			product := stringArg(args, "type")
			if product == "" {
				product = ProductFifteenYearFixed
			}
			mu.Lock()
			history := rateHistory(now, rng, intArg(args, "day_count"), product)
			mu.Unlock()
			return marshalResult(tool, history)
		case ToolGetDocStatus:
			return marshalResult(tool, documentChecklist())
		case ToolCreateCustomerID:
			return marshalResult(tool, map[string]string{"customer_id": createCustomerID()})
		case ToolCreateLoanApplication:
			app := createLoanApplication(
				stringArg(args, "customer_id"),
				stringArg(args, "name"),
				intArg(args, "age"),
				floatArg(args, "annual_income"),
				floatArg(args, "annual_expense"),
				now,
			)
			log.Info().Str("customer_id", app.CustomerID).Msg("created loan application")
			return marshalResult(tool, app)
		default:
			return marshalResult(tool, map[string]string{
				"error": fmt.Sprintf("tool=%s is unavailable", tool),
			})
		}
	}
}

func marshalResult(tool string, result any) (string, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("%w: marshal result for tool=%s: %v", contractx.ErrValidation, tool, err)
	}
	return string(raw), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}
