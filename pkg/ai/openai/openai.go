// Package openai implements ai.GraphAIClient against an OpenAI-compatible
// API, with separate endpoints for chat and embeddings.
package openai

import (
	"sync"

	"github.com/lattice-kg/lattice/internal/util"
	"github.com/lattice-kg/lattice/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions     = 1536
	defaultTimeoutMinutes = 3
	defaultMaxConcurrent  = 8
)

// Client talks to OpenAI-compatible chat and embedding endpoints. Both
// endpoints can point at different providers; a semaphore bounds the
// number of in-flight embedding requests.
type Client struct {
	reasoningModel string
	embeddingModel string

	chatURL    string
	timeoutMin int

	embeddingLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// Params configures a new Client.
type Params struct {
	ReasoningModel string
	EmbeddingModel string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	TimeoutMinutes        int
	MaxConcurrentRequests int64
}

// New creates a Client from the given params. A nil inner client is
// returned for endpoints without an API key; calls against them fail at
// request time, which startup validation catches first.
func New(params Params) *Client {
	timeout := params.TimeoutMinutes
	if timeout <= 0 {
		timeout = defaultTimeoutMinutes
	}
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Client{
		reasoningModel: params.ReasoningModel,
		embeddingModel: params.EmbeddingModel,
		chatURL:        params.ChatURL,
		timeoutMin:     timeout,
		embeddingLock:  semaphore.NewWeighted(maxConcurrent),

		ChatClient:      newInnerClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newInnerClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newInnerClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(options...)
	return &client
}

// EmbeddingDimensions reports the configured embedding vector length.
func (c *Client) EmbeddingDimensions() int {
	return int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
}

func (c *Client) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// ResetMetrics zeroes the aggregated usage metrics.
func (c *Client) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns a snapshot of the aggregated usage metrics.
func (c *Client) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}
