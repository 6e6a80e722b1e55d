package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
)

type fakeAssistant struct {
	mu       sync.Mutex
	threadID string
	prompt   string
	result   contractx.InvokeResult
	err      error
}

func (f *fakeAssistant) Invoke(ctx context.Context, threadID string, prompt string) (contractx.InvokeResult, error) {
	f.mu.Lock()
	f.threadID = threadID
	f.prompt = prompt
	f.mu.Unlock()
	if f.err != nil {
		return contractx.InvokeResult{}, f.err
	}
	return f.result, nil
}

func newTestServer(assistant contractx.Assistant) *Server {
	return NewServer(assistant, ServerConfig{Addr: ":0"})
}

func postInvocation(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestInvocationsHappyPath(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{result: contractx.InvokeResult{
		Messages: []*schema.Message{
			schema.UserMessage("when is my payment due?"),
			{Role: schema.Assistant, Content: "Your next payment is due in two weeks."},
		},
		ActiveAgent: contractx.AgentExisting,
	}}
	server := newTestServer(assistant)

	rec := postInvocation(t, server, `{"prompt":"when is my payment due?","actor_id":"u-1","session_id":77}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if assistant.threadID != "77" {
		t.Fatalf("unexpected thread id: %s", assistant.threadID)
	}
	if assistant.prompt != "when is my payment due?" {
		t.Fatalf("unexpected prompt: %s", assistant.prompt)
	}

	var resp InvocationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ActiveAgent != string(contractx.AgentExisting) {
		t.Fatalf("unexpected active agent: %s", resp.ActiveAgent)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Type != "human" || resp.Messages[1].Type != "ai" {
		t.Fatalf("unexpected message types: %+v", resp.Messages)
	}
}

func TestInvocationsDefaultsEmptyBody(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{}
	server := newTestServer(assistant)

	rec := postInvocation(t, server, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if assistant.prompt != "no prompt" {
		t.Fatalf("expected default prompt, got %q", assistant.prompt)
	}

	session, err := strconv.Atoi(assistant.threadID)
	if err != nil {
		t.Fatalf("thread id is not numeric: %s", assistant.threadID)
	}
	if session < 1 || session > maxRandomSession {
		t.Fatalf("random session %d outside [1, %d]", session, maxRandomSession)
	}
}

func TestInvocationsMalformedBodyDegradesToDefaults(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{}
	server := newTestServer(assistant)

	rec := postInvocation(t, server, `{"prompt": nope`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if assistant.prompt != "no prompt" {
		t.Fatalf("expected default prompt, got %q", assistant.prompt)
	}
}

func TestInvocationsNonPositiveSessionGetsRandomID(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{}
	server := newTestServer(assistant)
	server.newSessionID = func() int { return 4242 }

	rec := postInvocation(t, server, `{"prompt":"hi","session_id":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if assistant.threadID != "4242" {
		t.Fatalf("unexpected thread id: %s", assistant.threadID)
	}
}

func TestInvocationsMistypedSessionKeepsPrompt(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{}
	server := newTestServer(assistant)

	rec := postInvocation(t, server, `{"prompt":"refinance options","session_id":"abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if assistant.prompt != "refinance options" {
		t.Fatalf("prompt discarded with mistyped session_id: %q", assistant.prompt)
	}

	session, err := strconv.Atoi(assistant.threadID)
	if err != nil {
		t.Fatalf("thread id is not numeric: %s", assistant.threadID)
	}
	if session < 1 || session > maxRandomSession {
		t.Fatalf("random session %d outside [1, %d]", session, maxRandomSession)
	}
}

func TestInvocationsNumericStringSession(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{}
	server := newTestServer(assistant)

	rec := postInvocation(t, server, `{"prompt":"hi","session_id":"55"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if assistant.threadID != "55" {
		t.Fatalf("unexpected thread id: %s", assistant.threadID)
	}
}

func TestInvocationsConcurrentRequests(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{}
	server := newTestServer(assistant)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				req := httptest.NewRequest(http.MethodPost, "/invocations", strings.NewReader(`{}`))
				rec := httptest.NewRecorder()
				server.Handler().ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("unexpected status: %d", rec.Code)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestInvocationsAssistantError(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{err: errors.New("model backend down")}
	server := newTestServer(assistant)

	rec := postInvocation(t, server, `{"prompt":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !strings.Contains(resp.Error, "model backend down") {
		t.Fatalf("unexpected error body: %s", resp.Error)
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAssistant{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["status"] != "Healthy" {
		t.Fatalf("unexpected ping body: %+v", resp)
	}
}

func TestInvocationsMethodNotAllowed(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeAssistant{})

	req := httptest.NewRequest(http.MethodGet, "/invocations", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
