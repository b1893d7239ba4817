// Package ollama implements ai.GraphAIClient against a self-hosted
// Ollama server.
package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/lattice-kg/lattice/internal/util"
	"github.com/lattice-kg/lattice/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions     = 1024
	defaultTimeoutMinutes = 5
	defaultMaxConcurrent  = 4
)

// Client talks to an Ollama server for completions and embeddings. A
// semaphore bounds in-flight requests since self-hosted servers queue
// poorly under load.
type Client struct {
	reasoningModel string
	embeddingModel string
	timeoutMin     int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// Params configures a new Client.
type Params struct {
	ReasoningModel string
	EmbeddingModel string

	BaseURL string
	APIKey  string

	TimeoutMinutes        int
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// New creates a Client connected to the Ollama server at BaseURL.
func New(params Params) (*Client, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := http.DefaultClient
	if params.APIKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.APIKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

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
		timeoutMin:     timeout,
		reqLock:        semaphore.NewWeighted(maxConcurrent),
		Client:         api.NewClient(u, httpClient),
	}, nil
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
