// Package kb wires the managed knowledge-base retrieval tool. The
// knowledge-base id lives in the SSM parameter store; queries go to the
// Bedrock agent runtime Retrieve API. Setup failures disable the tool
// and the assistant continues without it.
package kb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	bartypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

const (
	ToolKnowledgeBase = "amazon_knowledge_base"

	defaultParameterName = "/app/mortgage_assistant/agentcore/kb_id"
	defaultResultCount   = 4
)

type Config struct {
	ParameterName string `envconfig:"PARAMETER_NAME" split_words:"true" default:"/app/mortgage_assistant/agentcore/kb_id"`
	ResultCount   int32  `envconfig:"RESULT_COUNT" split_words:"true" default:"4"`
}

// ParameterStore resolves configuration values by name.
type ParameterStore interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Retriever returns evidence snippets for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// Tool is the enabled knowledge-base search tool.
type Tool struct {
	retriever Retriever
}

// NewTool wraps a retriever; used directly by tests and by Setup.
func NewTool(retriever Retriever) *Tool {
	return &Tool{retriever: retriever}
}

func (t *Tool) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolKnowledgeBase,
		Desc: "Use this knowledge base to answer general questions about mortgages, like how to refinance, or the difference between 15-year and 30-year mortgages.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Question about mortgages", Required: true},
		}),
	}
}

// Search runs a retrieval query and joins the snippets with blank lines.
func (t *Tool) Search(ctx context.Context, query string) (string, error) {
	snippets, err := t.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", fmt.Errorf("knowledge base retrieve: %w", err)
	}
	return strings.Join(snippets, "\n\n"), nil
}

// Setup resolves the knowledge-base id and builds the retrieval tool.
// Any failure is logged and yields a nil tool: the assistant keeps
// running without knowledge-base search.
func Setup(ctx context.Context, cfg Config) *Tool {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to setup knowledge base: aws config")
		return nil
	}

	params := &ssmParameterStore{client: ssm.NewFromConfig(awsCfg)}
	name := strings.TrimSpace(cfg.ParameterName)
	if name == "" {
		name = defaultParameterName
	}
	kbID, err := params.GetParameter(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("parameter", name).Msg("failed to setup knowledge base: parameter lookup")
		return nil
	}
	if strings.TrimSpace(kbID) == "" {
		log.Warn().Str("parameter", name).Msg("failed to setup knowledge base: empty knowledge base id")
		return nil
	}

	count := cfg.ResultCount
	if count <= 0 {
		count = defaultResultCount
	}
	retriever := &bedrockRetriever{
		client:      bedrockagentruntime.NewFromConfig(awsCfg),
		kbID:        kbID,
		resultCount: count,
	}

	log.Info().Str("knowledge_base_id", kbID).Msg("knowledge base retriever tool setup successfully")
	return NewTool(retriever)
}

type ssmParameterStore struct {
	client *ssm.Client
}

func (s *ssmParameterStore) GetParameter(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("ssm get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %s has no value", name)
	}
	return *out.Parameter.Value, nil
}

type bedrockRetriever struct {
	client      *bedrockagentruntime.Client
	kbID        string
	resultCount int32
}

func (r *bedrockRetriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	out, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.kbID),
		RetrievalQuery: &bartypes.KnowledgeBaseQuery{
			Text: aws.String(query),
		},
		RetrievalConfiguration: &bartypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &bartypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(r.resultCount),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	snippets := make([]string, 0, len(out.RetrievalResults))
	for _, result := range out.RetrievalResults {
		if result.Content == nil || result.Content.Text == nil {
			continue
		}
		snippets = append(snippets, *result.Content.Text)
	}
	return snippets, nil
}
