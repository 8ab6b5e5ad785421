package gateway

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
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/common"
	"github.com/dmitrijs2005/holyculture/internal/logging"
	"github.com/dmitrijs2005/holyculture/internal/netx"
	"github.com/dmitrijs2005/holyculture/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxBodySize = 1 << 20

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	ClientName        string
	ClientVersion     string
	Platform          string
	SSLPins           []string
	// Transport overrides the HTTP transport; pins are applied on top of it.
	Transport *http.Transport
	Logger    logging.Logger
}

// Client sends JSON requests to the API. Safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	name     string
	version  string
	platform string
	log      logging.Logger

	mu    sync.RWMutex
	token string
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	c := &Client{
		baseURL:  base,
		http:     &http.Client{Transport: netx.NewTransport(opts.Transport, opts.SSLPins)},
		timeout:  opts.Timeout,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		name:     opts.ClientName,
		version:  opts.ClientVersion,
		platform: opts.Platform,
		log:      opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	if c.platform == "" {
		c.platform = runtime.GOOS
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	return c, nil
}

// SetAuthToken sets the bearer token attached to subsequent requests.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) ClearAuthToken() {
	c.SetAuthToken("")
}

func (c *Client) authToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Post sends body as JSON and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return call[T](ctx, c, http.MethodPost, path, body)
}

func Get[T any](ctx context.Context, c *Client, path string) Result[T] {
	return call[T](ctx, c, http.MethodGet, path, nil)
}

func Patch[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	return call[T](ctx, c, http.MethodPatch, path, body)
}

// Health probes HEAD /health. Over a pinned transport a pin mismatch surfaces
// here as a network error, which makes it the startup certificate check.
func (c *Client) Health(ctx context.Context) error {
	status, _, gerr := c.do(ctx, http.MethodHead, "/health", nil)
	if gerr != nil {
		return gerr
	}
	if status >= 300 {
		return &Error{Kind: statusKind(status), Status: status, Message: http.StatusText(status)}
	}
	return nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	status, raw, gerr := c.do(ctx, method, path, body)
	if gerr != nil {
		return fail[T](gerr)
	}
	if status < 200 || status >= 300 {
		return fail[T](&Error{Kind: statusKind(status), Status: status, Message: extractMessage(status, raw)})
	}

	var data T
	if _, empty := any(data).(Empty); empty || len(bytes.TrimSpace(raw)) == 0 {
		return ok(data)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fail[T](&Error{Kind: KindDecode, Message: msgDecode, Err: err})
	}
	if isStruct(data) {
		if err := validation.Struct(data); err != nil {
			return fail[T](&Error{Kind: KindDecode, Message: msgDecode, Err: err})
		}
	}
	return ok(data)
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}

// do performs one request and returns the status and body, or a transport
// level *Error.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.waitForSlot(ctx); err != nil {
		return 0, nil, err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &Error{Kind: KindNetwork, Message: "Could not encode request", Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return 0, nil, &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
	requestID := uuid.NewString()
	c.setHeaders(req, requestID, body != nil)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, transportError(err)
	}

	c.log.Debug(ctx, "request done",
		"method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "elapsed", time.Since(started))
	return resp.StatusCode, raw, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string, hasBody bool) {
	h := req.Header
	h.Set("Accept", "application/json")
	if hasBody {
		h.Set("Content-Type", "application/json")
	}
	h.Set(common.RequestIDHeaderName, requestID)
	if c.name != "" {
		h.Set(common.ClientNameHeaderName, c.name)
	}
	if c.version != "" {
		h.Set(common.ClientVersionHeaderName, c.version)
	}
	h.Set(common.PlatformHeaderName, c.platform)
	h.Set("Cache-Control", "no-cache, no-store")
	h.Set("Pragma", "no-cache")
	if tok := c.authToken(); tok != "" {
		h.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}
}

// waitForSlot blocks until the throttle admits one request. The burst is
// always at least one, so a refusal while ctx is still live means the slot
// opens only after the deadline.
func (c *Client) waitForSlot(ctx context.Context) *Error {
	err := c.limiter.Wait(ctx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() == nil:
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	default:
		return transportError(ctx.Err())
	}
}

func transportError(err error) *Error {
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &nerr) && nerr.Timeout():
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindNetwork, Message: "Request cancelled", Err: err}
	default:
		return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
}

var messageKeys = []string{"message", "error", "error_description", "msg"}

// extractMessage pulls a human-readable message out of an error body: the
// first string among the well-known JSON keys, else the trimmed text body,
// else the status text.
func extractMessage(status int, raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fallbackMessage(status)
	}

	var obj map[string]any
	if json.Unmarshal(raw, &obj) == nil {
		for _, k := range messageKeys {
			if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		if nested, ok := obj["error"].(map[string]any); ok {
			if s, ok := nested["message"].(string); ok && s != "" {
				return s
			}
		}
		return fallbackMessage(status)
	}

	if strings.HasPrefix(text, "<") {
		return fallbackMessage(status)
	}
	const maxText = 200
	if len(text) > maxText {
		text = text[:maxText]
	}
	return text
}

func fallbackMessage(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "An error occurred"
}
