// Package inference talks to the hosted causal language model that writes
// roadmaps. The model is resolved once at startup by Load; the returned
// Client is immutable and safe for concurrent use.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"careermind-api/internal/shared"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed model response ends up in logs
const maxErrorBody = 512

type Config struct {
	// Model is the hub repository name, e.g. asthaaa300/results
	Model        string
	InferenceURL string
	HubURL       string
	Token        string
	HTTPClient   *http.Client
}

// ModelInfo is the subset of hub metadata we check before serving.
type ModelInfo struct {
	ID          string `json:"id"`
	SHA         string `json:"sha"`
	PipelineTag string `json:"pipeline_tag"`
	Disabled    bool   `json:"disabled"`
}

type Client struct {
	info        ModelInfo
	generateURL string
	token       string
	httpClient  *http.Client
	log         *zap.SugaredLogger
}

// NewHTTPClient returns the client used for model traffic. Dial and TLS
// timeouts are short; the overall timeout only backstops the per-call context.
func NewHTTPClient() *http.Client {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: shared.DefaultDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout: shared.DefaultDialTimeout,
		DisableKeepAlives:   false,
	}
	return &http.Client{Transport: tr, Timeout: shared.DefaultHTTPTimeout}
}

// Load resolves the model repository on the hub and returns a ready Client.
// Every error is a *StartupError.
func Load(ctx context.Context, cfg Config, log *zap.SugaredLogger) (*Client, error) {
	if cfg.Model == "" {
		return nil, &StartupError{Model: cfg.Model, Err: errors.New("model repository is required")}
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = NewHTTPClient()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	c := &Client{
		token:      cfg.Token,
		httpClient: cfg.HTTPClient,
		log:        log.With("model", cfg.Model),
	}

	generateURL, err := url.JoinPath(cfg.InferenceURL, "models", cfg.Model)
	if err != nil {
		return nil, &StartupError{Model: cfg.Model, Err: fmt.Errorf("invalid inference url: %w", err)}
	}
	c.generateURL = generateURL

	info, err := c.fetchModelInfo(ctx, cfg.HubURL, cfg.Model)
	if err != nil {
		return nil, &StartupError{Model: cfg.Model, Err: err}
	}
	if info.Disabled {
		return nil, &StartupError{Model: cfg.Model, Err: errors.New("model is disabled on the hub")}
	}
	if info.PipelineTag != "" && info.PipelineTag != "text-generation" {
		return nil, &StartupError{Model: cfg.Model, Err: fmt.Errorf("model pipeline is %q, want text-generation", info.PipelineTag)}
	}
	if info.ID == "" {
		info.ID = cfg.Model
	}
	c.info = info

	c.log.Infow("Model loaded", "sha", info.SHA, "pipeline", info.PipelineTag, "generate_url", generateURL)
	return c, nil
}

func (c *Client) fetchModelInfo(ctx context.Context, hubURL, model string) (ModelInfo, error) {
	infoURL, err := url.JoinPath(hubURL, "api", "models", model)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("invalid hub url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("build model info request: %w", err)
	}
	c.setAuth(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("model info request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("read model info: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return ModelInfo{}, fmt.Errorf("model info returned HTTP %d: %s", res.StatusCode, truncate(body))
	}

	var info ModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return ModelInfo{}, fmt.Errorf("parse model info: %w", err)
	}
	return info, nil
}

// Info returns the metadata resolved at load time.
func (c *Client) Info() ModelInfo {
	return c.info
}

type generateRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters DecodingPolicy  `json:"parameters"`
	Options    generateOptions `json:"options"`
}

type generateOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type generatedSequence struct {
	GeneratedText string `json:"generated_text"`
}

type modelError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Generate runs one generate call and returns the decoded text. Every error
// is a *GenerationError. Cancellation and deadlines come from ctx.
func (c *Client) Generate(ctx context.Context, prompt string, policy DecodingPolicy) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", newGenerationError(shared.ErrModelNotLoaded, nil)
	}

	payload, err := json.Marshal(generateRequest{
		Inputs:     prompt,
		Parameters: policy,
		Options:    generateOptions{WaitForModel: true, UseCache: true},
	})
	if err != nil {
		return "", newGenerationError(shared.ErrFailedModelReq, fmt.Errorf("marshal generate request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(payload))
	if err != nil {
		return "", newGenerationError(shared.ErrFailedModelReq, fmt.Errorf("build generate request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", newGenerationError(shared.ErrModelContext, err)
		}
		return "", newGenerationError(shared.ErrFailedModelReq, err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.log.Warnw("Failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", newGenerationError(shared.ErrModelContext, err)
		}
		return "", newGenerationError(shared.ErrFailedReadingResponse, err)
	}
	c.log.Debugw("Generate call finished", "status", res.StatusCode, "duration", time.Since(start).String(), "bytes", len(body))

	if res.StatusCode == http.StatusServiceUnavailable {
		var merr modelError
		_ = json.Unmarshal(body, &merr)
		return "", newGenerationError(shared.ErrColdStart,
			fmt.Errorf("model unavailable (estimated %.0fs): %s", merr.EstimatedTime, truncate(body)))
	}
	if res.StatusCode != http.StatusOK {
		return "", newGenerationError(shared.ErrFailedModelReqFromCode,
			fmt.Errorf("HTTP %d: %s", res.StatusCode, truncate(body)))
	}

	text, err := parseGenerated(body)
	if err != nil {
		return "", newGenerationError(shared.ErrFailedReadingResponse, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", newGenerationError(shared.ErrEmptyModelOutput, nil)
	}
	return text, nil
}

// parseGenerated accepts the list form the text-generation task returns and
// the bare object some deployments answer with.
func parseGenerated(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", errors.New("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var seqs []generatedSequence
		if err := json.Unmarshal(trimmed, &seqs); err != nil {
			return "", fmt.Errorf("parse generated sequences: %w", err)
		}
		if len(seqs) == 0 {
			return "", errors.New("model returned no sequences")
		}
		return seqs[0].GeneratedText, nil
	case '{':
		var obj struct {
			generatedSequence
			modelError
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", fmt.Errorf("parse generated object: %w", err)
		}
		if obj.Error != "" {
			return "", fmt.Errorf("model error: %s", obj.Error)
		}
		return obj.GeneratedText, nil
	default:
		return "", fmt.Errorf("unexpected response: %s", truncate(trimmed))
	}
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
