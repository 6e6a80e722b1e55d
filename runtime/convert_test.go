package runtime

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

func TestConvertMessagesRoles(t *testing.T) {
	t.Parallel()

	records := ConvertMessages([]*schema.Message{
		schema.SystemMessage("be helpful"),
		schema.UserMessage("hello"),
		{Role: schema.Assistant, Content: "hi there"},
		schema.ToolMessage(`{"ok":true}`, "call-1"),
	})

	want := []string{"system", "human", "ai", "tool"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, typ := range want {
		if records[i].Type != typ {
			t.Fatalf("record %d: got type %s, want %s", i, records[i].Type, typ)
		}
	}
}

func TestConvertMessagesSkipsUnknownRoles(t *testing.T) {
	t.Parallel()

	records := ConvertMessages([]*schema.Message{
		nil,
		{Role: schema.RoleType("alien"), Content: "???"},
		schema.UserMessage("kept"),
	})

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Type != "human" || records[0].Content != "kept" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestConvertMessagesCopiesIDAndMeta(t *testing.T) {
	t.Parallel()

	msg := &schema.Message{
		Role:    schema.Assistant,
		Content: "done",
		Extra:   map[string]any{contractx.MessageIDKey: "msg-123"},
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage: &schema.TokenUsage{
				PromptTokens:     120,
				CompletionTokens: 30,
				TotalTokens:      150,
			},
		},
	}

	records := ConvertMessages([]*schema.Message{msg})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0]
	if record.ID != "msg-123" {
		t.Fatalf("unexpected id: %s", record.ID)
	}
	if record.Metadata["finish_reason"] != "stop" {
		t.Fatalf("unexpected metadata: %+v", record.Metadata)
	}
	if record.Usage == nil {
		t.Fatal("expected usage to be copied")
	}
	if record.Usage.InputTokens != 120 || record.Usage.OutputTokens != 30 || record.Usage.TotalTokens != 150 {
		t.Fatalf("unexpected usage: %+v", record.Usage)
	}
}

func TestConvertMessagesOmitsAbsentMeta(t *testing.T) {
	t.Parallel()

	records := ConvertMessages([]*schema.Message{schema.UserMessage("plain")})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != "" || records[0].Metadata != nil || records[0].Usage != nil {
		t.Fatalf("expected bare record, got %+v", records[0])
	}
}
