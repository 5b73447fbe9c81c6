package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Provider defines the interface to the completion backend. Each method
// maps one operation onto its fixed prompt template.
type Provider interface {
	GeneratePlan(ctx context.Context, businessIdea, location string) (string, error)
	ExpandSection(ctx context.Context, sectionTitle, businessIdea, location string) (string, error)
	AnswerQuestion(ctx context.Context, question, planContext string) (string, error)
	TrendingIdeas(ctx context.Context) (string, error)
}

// UpstreamError reports a failed call to the completion service. No
// retries happen anywhere; the failure surfaces directly to the caller.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion service error (status %d): %s", e.Status, e.Detail)
}

// Client is the OpenAI-backed Provider.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a completion client for the given API key.
func New(apiKey string) *Client {
	return &Client{
		api:   openai.NewClient(apiKey),
		model: openai.GPT3Dot5Turbo,
	}
}

// GeneratePlan asks the model for a full numbered business plan.
func (c *Client) GeneratePlan(ctx context.Context, businessIdea, location string) (string, error) {
	prompt := fmt.Sprintf("Create a comprehensive business plan for a %s in %s. "+
		"Include sections on Executive Summary, Business Description, Products/Services, "+
		"Market Analysis, Marketing Strategy, Operations Plan, Management Team, "+
		"Financial Projections, Funding Requirements, and Legal Considerations.",
		businessIdea, location)
	return c.complete(ctx, prompt)
}

// ExpandSection asks the model to elaborate a single plan section.
func (c *Client) ExpandSection(ctx context.Context, sectionTitle, businessIdea, location string) (string, error) {
	prompt := fmt.Sprintf("Provide detailed information for the %q section of a business plan "+
		"for a %s in %s. Include specific examples, numerical estimates, and actionable advice.",
		sectionTitle, businessIdea, location)
	return c.complete(ctx, prompt)
}

// AnswerQuestion answers a free-form question grounded in the supplied
// plan text. Each call stands alone; no conversation state is kept.
func (c *Client) AnswerQuestion(ctx context.Context, question, planContext string) (string, error) {
	prompt := fmt.Sprintf("Given the following business plan context:\n\n%s\n\n"+
		"Answer the following question:\n%s", planContext, question)
	return c.complete(ctx, prompt)
}

// TrendingIdeas asks the model for a short list of current business
// ideas, one per line.
func (c *Client) TrendingIdeas(ctx context.Context) (string, error) {
	const prompt = "List 8 business ideas that are currently trending. " +
		"Respond with one short idea name per line and no numbering or commentary."
	return c.complete(ctx, prompt)
}

// complete sends one user message and returns the first choice verbatim.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapUpstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Status: http.StatusBadGateway, Detail: "completion returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func wrapUpstream(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}
	return &UpstreamError{Status: http.StatusBadGateway, Detail: err.Error()}
}
