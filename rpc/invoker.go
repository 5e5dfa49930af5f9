// Package rpc wraps the hosted data backend's named remote operations with
// retry, backoff and timeout handling. Every repository call goes through the
// Invoker; nothing else in the service talks to the backend directly.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/partnerhub/partnerhub_backend/config"
)

// Params is the parameter bag for a single remote operation.
type Params map[string]interface{}

// CallOptions control the retry behaviour of one invocation.
type CallOptions struct {
	// Retries is the number of additional attempts after the first failure.
	Retries int
	// Delay is the base backoff; attempt n waits Delay*n before retrying.
	Delay time.Duration
	// Timeout bounds the whole invocation. Hitting it is terminal: no
	// further attempts are made.
	Timeout time.Duration
}

// Error is a classified backend error.
type Error struct {
	Op       string
	Code     string
	Message  string
	Terminal bool
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend operation %s failed: %s (%s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("backend operation %s failed: %s", e.Op, e.Message)
}

// IsTerminal reports whether err is a backend error that must not be
// retried (missing remote function, auth failure, timeout).
func IsTerminal(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Terminal
	}
	return false
}

// Caller is the invoker interface the repositories consume.
type Caller interface {
	Invoke(ctx context.Context, name string, params Params, result interface{}) error
	InvokeWithOptions(ctx context.Context, name string, params Params, result interface{}, opts CallOptions) error
}

// Invoker is the HTTP implementation of Caller. It POSTs JSON parameter bags
// to {baseURL}/rpc/{name} with the backend API key.
type Invoker struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	defaults CallOptions

	// sleep is swappable in tests
	sleep func(time.Duration)
}

// NewInvoker creates an invoker from the backend configuration.
func NewInvoker(cfg *config.BackendConfig) *Invoker {
	return &Invoker{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{},
		defaults: CallOptions{
			Retries: cfg.Retries,
			Delay:   cfg.RetryDelay,
			Timeout: cfg.Timeout,
		},
		sleep: time.Sleep,
	}
}

// Invoke runs a named remote operation with the default retry policy and
// decodes the response into result (which may be nil for void operations).
func (inv *Invoker) Invoke(ctx context.Context, name string, params Params, result interface{}) error {
	return inv.InvokeWithOptions(ctx, name, params, result, inv.defaults)
}

// InvokeWithOptions runs a named remote operation. The first successful
// attempt wins; retryable errors are retried up to opts.Retries additional
// times with linearly increasing backoff. A timeout or terminal error ends
// the invocation immediately.
//
// The invoker may re-send a request whose first attempt partially succeeded,
// so side-effecting operations routed through it must carry their own
// idempotency keys (payment uuid, payment+referrer pair).
func (inv *Invoker) InvokeWithOptions(ctx context.Context, name string, params Params, result interface{}, opts CallOptions) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			inv.sleep(opts.Delay * time.Duration(attempt))
			if ctx.Err() != nil {
				return &Error{Op: name, Code: "timeout", Message: "operation timed out", Terminal: true}
			}
		}

		err := inv.call(ctx, name, params, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// Treat deadline as terminal regardless of how the attempt
			// surfaced it.
			return &Error{Op: name, Code: "timeout", Message: "operation timed out", Terminal: true}
		}
		if IsTerminal(err) {
			log.Printf("Backend operation %s failed terminally: %v (params: %v)", name, err, sanitizeParams(params))
			return err
		}

		log.Printf("Backend operation %s attempt %d failed: %v", name, attempt+1, err)
	}

	return lastErr
}

// call performs a single HTTP attempt.
func (inv *Invoker) call(ctx context.Context, name string, params Params, result interface{}) error {
	url := inv.baseURL + "/rpc/" + name

	var body io.Reader
	if params != nil {
		jsonData, err := json.Marshal(params)
		if err != nil {
			return &Error{Op: name, Message: "failed to marshal request: " + err.Error(), Terminal: true}
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return &Error{Op: name, Message: "failed to create request: " + err.Error(), Terminal: true}
	}

	req.Header.Set("Content-Type", "application/json")
	if inv.apiKey != "" {
		req.Header.Set("apikey", inv.apiKey)
		req.Header.Set("Authorization", "Bearer "+inv.apiKey)
	}

	resp, err := inv.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &Error{Op: name, Code: "timeout", Message: "operation timed out", Terminal: true}
		}
		// Network-level failure: retryable.
		return &Error{Op: name, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: name, Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode >= 400 {
		return classify(name, resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{Op: name, Message: "failed to parse response: " + err.Error(), Terminal: true}
		}
	}

	return nil
}

// remoteError is the backend's error envelope.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// classify decides whether a backend application error is worth retrying.
// Missing remote functions, auth failures and "does not exist" errors are
// configuration or domain problems a retry cannot fix; everything else
// (transient serialization conflicts, 5xx) is retryable.
func classify(op string, status int, body []byte) *Error {
	var re remoteError
	_ = json.Unmarshal(body, &re)
	if re.Message == "" {
		re.Message = strings.TrimSpace(string(body))
		if re.Message == "" {
			re.Message = http.StatusText(status)
		}
	}

	e := &Error{Op: op, Code: re.Code, Message: re.Message}

	msg := strings.ToLower(re.Message)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Terminal = true
	case strings.HasPrefix(re.Code, "PGRST2"): // undefined function / schema cache miss
		e.Terminal = true
	case strings.Contains(msg, "function") && (strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")):
		e.Terminal = true
	case strings.Contains(msg, "does not exist"):
		e.Terminal = true
	case strings.Contains(msg, "jwt") || strings.Contains(msg, "invalid api key"):
		e.Terminal = true
	}

	return e
}

// sanitizeParams drops secret-bearing keys before logging.
func sanitizeParams(params Params) Params {
	clean := make(Params, len(params))
	for k, v := range params {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "password") || strings.Contains(lk, "secret") || strings.Contains(lk, "hash") {
			clean[k] = "[HIDDEN]"
			continue
		}
		clean[k] = v
	}
	return clean
}
