// Package chatapi is the HTTP adapter for the remote reasoning chat service.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/promptlab/jobtrack/internal/core"
)

// DefaultReplyPath is the JMESPath used to extract the reply payload from a
// poll response when none is configured.
const DefaultReplyPath = "result.reply"

const defaultTimeout = 30 * time.Second

// maxErrorBodyBytes caps how much of an error response body is read before
// discarding the rest.
const maxErrorBodyBytes = 4 << 10

// Config describes how to reach the remote service.
type Config struct {
	// BaseURL is the asynchronous submission endpoint. POST enqueues,
	// GET {BaseURL}/{job_id} polls. Empty leaves the backend unconfigured.
	BaseURL string
	// ChatURL is the synchronous chat endpoint. Optional.
	ChatURL string
	// Username and Password are sent as HTTP Basic auth when both set.
	Username string
	Password string
	// ReplyPath is the JMESPath applied to poll responses to extract the
	// reply payload. Defaults to DefaultReplyPath.
	ReplyPath string
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	Config Config
	// HTTPClient overrides the transport, mainly for tests. Optional.
	HTTPClient *http.Client
	Logger     *slog.Logger // Optional: structured logger
}

// Client talks to the remote reasoning service. It implements
// core.ChatBackend.
type Client struct {
	cfg       Config
	http      *http.Client
	replyExpr jmespath.JMESPath
	logger    *slog.Logger
}

var _ core.ChatBackend = (*Client)(nil)

// NewClient constructs a Client, compiling the reply extraction path.
func NewClient(opts ClientOptions) (*Client, error) {
	cfg := opts.Config
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.ReplyPath == "" {
		cfg.ReplyPath = DefaultReplyPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	replyExpr, err := jmespath.Compile(cfg.ReplyPath)
	if err != nil {
		return nil, fmt.Errorf("compile reply path %q: %w", cfg.ReplyPath, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "chatapi_client")
	}

	return &Client{
		cfg:       cfg,
		http:      httpClient,
		replyExpr: replyExpr,
		logger:    logger,
	}, nil
}

// Configured reports whether the asynchronous endpoint is set.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != ""
}

type enqueueRequest struct {
	Message string `json:"message"`
}

type enqueueResponse struct {
	JobID string `json:"job_id"`
}

// Enqueue submits a message for out-of-band processing.
func (c *Client) Enqueue(ctx context.Context, message string) (string, error) {
	if !c.Configured() {
		return "", errors.New("reasoning endpoint is not configured")
	}

	body, err := json.Marshal(enqueueRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("marshal enqueue request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit reasoning request: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &core.StatusError{Code: resp.StatusCode}
	}

	var parsed enqueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode enqueue response: %w", err)
	}
	if strings.TrimSpace(parsed.JobID) == "" {
		return "", errors.New("backend response did not include a job id")
	}

	if c.logger != nil {
		c.logger.DebugContext(ctx, "job enqueued", "job_id", parsed.JobID)
	}
	return parsed.JobID, nil
}

// PollJob queries the status of one job.
func (c *Client) PollJob(ctx context.Context, jobID string) (core.PollResult, error) {
	if !c.Configured() {
		return core.PollResult{}, errors.New("reasoning endpoint is not configured")
	}
	if jobID == "" {
		return core.PollResult{}, errors.New("job id cannot be empty")
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.BaseURL+"/"+jobID, nil)
	if err != nil {
		return core.PollResult{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return core.PollResult{}, fmt.Errorf("poll job %s: %w", jobID, err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return core.PollResult{}, core.ErrJobNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return core.PollResult{}, &core.StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.PollResult{}, fmt.Errorf("read poll response: %w", err)
	}

	return c.interpretPollBody(raw)
}

// interpretPollBody decodes a successful poll body into a PollResult. The
// reply payload is extracted with the configured JMESPath so backends that
// nest it differently only need a config change.
func (c *Client) interpretPollBody(raw []byte) (core.PollResult, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return core.PollResult{}, fmt.Errorf("decode poll response: %w", err)
	}

	var result core.PollResult
	if status, ok := body["status"].(string); ok {
		result.Status = status
	}
	if errText, ok := body["error"].(string); ok {
		result.Error = &errText
	}

	extracted, err := c.replyExpr.Search(body)
	if err == nil {
		if reply, ok := extracted.(string); ok {
			result.Reply = &reply
		}
	}

	return result, nil
}

// ChatMessage is one entry of the rolling conversation window.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the synchronous chat payload.
type ChatRequest struct {
	Message     string        `json:"message"`
	History     []ChatMessage `json:"history"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat sends a synchronous chat request and returns the reply text.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (string, error) {
	if strings.TrimSpace(c.cfg.ChatURL) == "" {
		return "", errors.New("chat endpoint is not configured")
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.ChatURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", errors.New("invalid credentials for chat endpoint")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", &core.StatusError{Code: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Reply == "" {
		return "", errors.New("no reply received")
	}
	return parsed.Reply, nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method, url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.cfg.Username != "" && c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	return req, nil
}

// drainAndClose consumes the remainder of a response body so the underlying
// connection can be reused, then closes it.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodyBytes))
	_ = body.Close()
}
