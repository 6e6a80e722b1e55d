package runtime

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

// MessageRecord is the JSON-friendly projection of one framework message.
type MessageRecord struct {
	Type     string         `json:"type"`
	Content  string         `json:"content"`
	ID       string         `json:"id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Usage    *UsageRecord   `json:"usage,omitempty"`
}

// UsageRecord mirrors the model's token accounting when present.
type UsageRecord struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

var roleTypes = map[schema.RoleType]string{
	schema.User:      "human",
	schema.Assistant: "ai",
	schema.System:    "system",
	schema.Tool:      "tool",
}

// ConvertMessages flattens framework messages into plain records.
// Messages without a recognizable type are silently skipped; metadata
// and usage are copied only when the model reported them.
func ConvertMessages(messages []*schema.Message) []MessageRecord {
	records := make([]MessageRecord, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		msgType, ok := roleTypes[msg.Role]
		if !ok {
			continue
		}

		record := MessageRecord{
			Type:    msgType,
			Content: msg.Content,
		}
		if id, ok := msg.Extra[contractx.MessageIDKey].(string); ok {
			record.ID = id
		}
		if meta := msg.ResponseMeta; meta != nil {
			if meta.FinishReason != "" {
				record.Metadata = map[string]any{"finish_reason": meta.FinishReason}
			}
			if usage := meta.Usage; usage != nil {
				record.Usage = &UsageRecord{
					InputTokens:  usage.PromptTokens,
					OutputTokens: usage.CompletionTokens,
					TotalTokens:  usage.TotalTokens,
				}
			}
		}

		records = append(records, record)
	}
	return records
}
