package agents

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// systemPrompts shape the model's behavior per specialist category.
var systemPrompts = map[models.Category]string{
	models.CategoryProductSearch:    "You are a product sourcing specialist. Locate and compare products, suppliers, and market options for the request.",
	models.CategoryPriceNegotiation: "You are a pricing and negotiation specialist. Analyze pricing, discounts, and deal structures for the request.",
	models.CategoryVerification:     "You are a verification specialist. Assess authenticity, compliance, and quality concerns in the request.",
	models.CategorySupplyChain:      "You are a logistics specialist. Analyze shipping, tracking, and fulfillment aspects of the request.",
	models.CategoryTranslation:      "You are a multilingual communication specialist. Handle translation and cross-border communication for the request.",
	models.CategoryTechnical:        "You are a technical analyst. Address the code, data, or algorithmic aspects of the request.",
	models.CategoryStrategic:        "You are a business strategist. Address the planning and market aspects of the request.",
}

const defaultSystemPrompt = "You are a task specialist. Address the request directly and concisely."

// APIClient wraps the Anthropic SDK client for API-backed executors.
type APIClient struct {
	inner anthropic.Client
	model anthropic.Model
}

// APIClientConfig configures an APIClient.
type APIClientConfig struct {
	// Model is the model to use. Empty selects the SDK default Sonnet model.
	Model string
	// APIKey is the API key. If empty, uses the ANTHROPIC_API_KEY env var.
	APIKey string
}

// NewAPIClient creates a client for API-backed execution.
func NewAPIClient(cfg APIClientConfig) (*APIClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}

	return &APIClient{
		inner: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}, nil
}

// APIExecutor answers requests through the Anthropic API with a
// per-category system prompt.
type APIExecutor struct {
	client   *APIClient
	category models.Category
}

// NewAPIExecutor creates an executor for one specialist category.
func NewAPIExecutor(client *APIClient, category models.Category) *APIExecutor {
	return &APIExecutor{client: client, category: category}
}

// Execute sends the request text to the API and collects the text blocks.
func (e *APIExecutor) Execute(ctx context.Context, text string, category models.Category) (Result, error) {
	system, ok := systemPrompts[e.category]
	if !ok {
		system = defaultSystemPrompt
	}

	start := time.Now()
	resp, err := e.client.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.client.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("API call failed: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(variant.Text)
		}
	}

	return Result{
		Content: content.String(),
		// The API reports no confidence signal; a fixed high value keeps
		// aggregates comparable with the simulated fleet.
		Confidence: 0.85,
		Duration:   time.Since(start),
	}, nil
}

// APIFleet builds a fleet where every specialist is API-backed. The secure
// local agent and human operator stay simulated: sensitive content never
// leaves the process and operator queues have no model behind them.
func APIFleet(client *APIClient, latencyScale time.Duration) Fleet {
	fleet := make(Fleet, len(models.AgentIDs()))
	for _, id := range models.AgentIDs() {
		switch id {
		case models.AgentSecure, models.AgentHumanOperator:
			fleet[id] = NewSimulated(id, latencyScale)
		default:
			fleet[id] = NewAPIExecutor(client, categoryOf(id))
		}
	}
	return fleet
}

func categoryOf(id models.AgentID) models.Category {
	switch id {
	case models.AgentProductSearch:
		return models.CategoryProductSearch
	case models.AgentPriceNegotiation:
		return models.CategoryPriceNegotiation
	case models.AgentVerification:
		return models.CategoryVerification
	case models.AgentSupplyChain:
		return models.CategorySupplyChain
	case models.AgentTranslation:
		return models.CategoryTranslation
	case models.AgentTechnical:
		return models.CategoryTechnical
	case models.AgentStrategic:
		return models.CategoryStrategic
	default:
		return models.CategoryUnknown
	}
}
