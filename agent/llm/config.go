package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
	modelgwx "github.com/harborlend/mortgage-assistant/pkg/modelgw"
)

// Config selects the foundation model per agent, with a shared default.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"us.anthropic.claude-3-5-haiku-20241022-v1:0"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`

	GeneralModel           string  `envconfig:"GENERAL_MODEL" split_words:"true"`
	ExistingModel          string  `envconfig:"EXISTING_MODEL" split_words:"true"`
	ApplicationModel       string  `envconfig:"APPLICATION_MODEL" split_words:"true"`
	GeneralTemperature     float32 `envconfig:"GENERAL_TEMPERATURE" split_words:"true" default:"-1"`
	ExistingTemperature    float32 `envconfig:"EXISTING_TEMPERATURE" split_words:"true" default:"-1"`
	ApplicationTemperature float32 `envconfig:"APPLICATION_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: inference gateway base url is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: inference gateway api key is required", contractx.ErrValidation)
	}
	return nil
}

// GatewayFor resolves the model gateway config for one agent, applying
// per-agent overrides over the shared defaults.
func (c Config) GatewayFor(agent contractx.AgentName) modelgwx.Config {
	modelID := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(model string, temperature float32) {
		if v := strings.TrimSpace(model); v != "" {
			modelID = v
		}
		if temperature >= 0 {
			temp = temperature
		}
	}

	switch agent {
	case contractx.AgentGeneral:
		override(c.GeneralModel, c.GeneralTemperature)
	case contractx.AgentExisting:
		override(c.ExistingModel, c.ExistingTemperature)
	case contractx.AgentApplication:
		override(c.ApplicationModel, c.ApplicationTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return modelgwx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelID,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
