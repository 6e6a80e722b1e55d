package prompt

import (
	_ "embed"
	"strings"
	"time"
)

var (
	//go:embed template/general.txt
	generalRaw string

	//go:embed template/existing.txt
	existingRaw string

	//go:embed template/application.txt
	applicationRaw string
)

// PromptSet holds the per-agent system prompts.
type PromptSet struct {
	General     string
	Existing    string
	Application string
}

// LoadPromptSet returns trimmed prompt strings. The general prompt is
// interpolated with the current date at load time.
func LoadPromptSet(now time.Time) PromptSet {
	general := strings.ReplaceAll(generalRaw, "{current_date}", now.Format("2006-01-02"))
	return PromptSet{
		General:     strings.TrimSpace(general),
		Existing:    strings.TrimSpace(existingRaw),
		Application: strings.TrimSpace(applicationRaw),
	}
}
