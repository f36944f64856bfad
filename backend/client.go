// Package backend talks to the upstream API that owns slots and meetings.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"opsdash/models"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Backend is the set of upstream operations the scheduling core consumes.
type Backend interface {
	ListAvailableSlots(ctx context.Context) ([]models.AvailableSlot, error)
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetMeetingSummary(ctx context.Context, id models.MeetingID) (*models.MeetingSummary, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Meeting, error)
	RescheduleMeeting(ctx context.Context, id models.MeetingID, req RescheduleRequest) (*models.Meeting, error)
	CancelMeeting(ctx context.Context, id models.MeetingID) (*models.Meeting, error)
	DeleteMeeting(ctx context.Context, id models.MeetingID) error
	JoinMeeting(ctx context.Context, id models.MeetingID) (string, error)
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL        string
	APIToken       string
	Timeout        time.Duration
	RequestsPerSec float64
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// HTTPClient implements Backend over HTTP.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTPClient builds a client. A non-positive RequestsPerSec disables
// outbound throttling.
func NewHTTPClient(opts Options) *HTTPClient {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSec > 0 {
		burst := int(opts.RequestsPerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), burst)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.APIToken,
		http:    hc,
		limiter: limiter,
		logger:  logger,
	}
}

// envelope is the {data: ...} wrapper every backend response uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do sends a request and returns the raw "data" member of a 2xx response.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Op: op, Message: "request throttled", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Op: op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("op", op), zap.Error(err))
		return nil, &Error{Op: op, Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: FallbackMessage, Err: err}
	}
	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := MessageFrom(raw)
		if msg == "" {
			msg = FallbackMessage
		}
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: "unexpected response from server", Err: err}
	}
	return env.Data, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, op, path string) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodGet, path, nil, "")
}

func (c *HTTPClient) postJSON(ctx context.Context, op, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Op: op, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, op, http.MethodPost, path, body, "application/json")
}

func decodeErr(op string, err error) error {
	return &Error{Op: op, Message: "unexpected response from server", Err: fmt.Errorf("decode: %w", err)}
}
