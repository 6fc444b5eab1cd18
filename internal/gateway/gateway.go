package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"daygoal/internal/model"
)

// Kind classifies every remote-call outcome that is not a success. The
// classification decides whether the caller retries, surfaces a conflict or
// treats the failure as terminal.
type Kind string

const (
	// KindConflict is a server-side optimistic-lock failure: the remote
	// version no longer matches what the client replaced.
	KindConflict Kind = "conflict"
	// KindRecoverable is a transient failure worth retrying.
	KindRecoverable Kind = "recoverable"
	// KindFatal is a terminal failure; retrying will not help.
	KindFatal Kind = "fatal"
	// KindAbort means the caller cancelled the call; the unit of work is
	// dropped without compensation.
	KindAbort Kind = "abort"
)

// CallError carries the classified outcome of a failed remote call.
type CallError struct {
	Kind    Kind
	Code    string
	Message string
	Details string
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: %s (%s)", e.Kind, e.Code)
	}
	return fmt.Sprintf("gateway: %s (%s): %s", e.Kind, e.Code, e.Message)
}

// KindOf extracts the outcome kind from an error chain. Errors that did not
// come from the gateway classify as fatal.
func KindOf(err error) Kind {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return KindFatal
}

type statusMapping struct {
	kind Kind
	code string
}

// Statuses without a body-level envelope map through this fixed table.
// Anything unlisted is fatal with code UNHANDLED_STATUS_<code>.
var statusTable = map[int]statusMapping{
	http.StatusConflict:                    {KindConflict, "CONFLICT"},
	http.StatusTooManyRequests:             {KindRecoverable, "TOO_MANY_REQUESTS"},
	http.StatusServiceUnavailable:          {KindRecoverable, "SERVICE_UNAVAILABLE"},
	522:                                    {KindRecoverable, "TIMEOUT"},
	523:                                    {KindRecoverable, "UNREACHABLE"},
	524:                                    {KindRecoverable, "NETWORK_TIMEOUT"},
	530:                                    {KindRecoverable, "DNS_ERROR"},
	http.StatusBadRequest:                  {KindFatal, "BAD_REQUEST"},
	http.StatusForbidden:                   {KindFatal, "FORBIDDEN"},
	http.StatusNotFound:                    {KindFatal, "NOT_FOUND"},
	http.StatusMethodNotAllowed:            {KindFatal, "METHOD_NOT_ALLOWED"},
	http.StatusRequestEntityTooLarge:       {KindFatal, "PAYLOAD_TOO_LARGE"},
	http.StatusRequestURITooLong:           {KindFatal, "URI_TOO_LONG"},
	http.StatusRequestHeaderFieldsTooLarge: {KindFatal, "UNSUPPORTED_MEDIA_TYPE"},
	http.StatusInternalServerError:         {KindFatal, "INTERNAL_ERROR"},
}

func classifyStatus(status int) *CallError {
	if m, ok := statusTable[status]; ok {
		return &CallError{Kind: m.kind, Code: m.code, Message: http.StatusText(status)}
	}
	return &CallError{Kind: KindFatal, Code: fmt.Sprintf("UNHANDLED_STATUS_%d", status)}
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	ErrorInfo *errorInfo      `json:"error_info"`
}

// Client talks to the remote authority. It holds no process-wide state;
// construct one and pass it where it is needed. Safe for concurrent use: the
// credential may be swapped while calls are in flight.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken attaches an opaque credential to every subsequent call. An empty
// token detaches it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// FetchTasks retrieves the full task collection from the remote authority.
func (c *Client) FetchTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.call(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, protocolBreach(err)
		}
	}
	return tasks, nil
}

// CreateTask pushes a newly created record.
func (c *Client) CreateTask(ctx context.Context, task model.Task) error {
	return c.call(ctx, http.MethodPost, "/tasks", task, nil)
}

// ReplaceTask replaces the remote record by id. A remote version mismatch
// surfaces as a conflict outcome (HTTP 409).
func (c *Client) ReplaceTask(ctx context.Context, task model.Task) error {
	return c.call(ctx, http.MethodPut, "/tasks/"+task.ID, task, nil)
}

// FetchSetting retrieves the user setting record.
func (c *Client) FetchSetting(ctx context.Context, userID string) (model.UserSetting, error) {
	var setting model.UserSetting
	if err := c.call(ctx, http.MethodGet, "/setting/"+userID, nil, &setting); err != nil {
		return model.UserSetting{}, err
	}
	if err := setting.Validate(); err != nil {
		return model.UserSetting{}, protocolBreach(err)
	}
	return setting, nil
}

// ReplaceSetting replaces the user setting record by user id.
func (c *Client) ReplaceSetting(ctx context.Context, userID string, setting model.UserSetting) error {
	return c.call(ctx, http.MethodPut, "/setting/"+userID, setting, nil)
}

// Login initiates out-of-band credential issuance for the address.
func (c *Client) Login(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.call(ctx, http.MethodPost, "/login", body, nil)
}

// Authenticate exchanges a credential for the user id of the session.
func (c *Client) Authenticate(ctx context.Context, token string) (string, error) {
	body := map[string]string{"token": token}
	var out struct {
		UserID string `json:"userId"`
	}
	if err := c.call(ctx, http.MethodPost, "/auth", body, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", protocolBreach(errors.New("auth response missing userId"))
	}
	return out.UserID, nil
}

// call performs one request/response round trip and classifies every outcome
// into exactly one of success, conflict, recoverable, fatal or abort.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &CallError{Kind: KindFatal, Code: "INTERNAL_ERROR", Message: err.Error()}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &CallError{Kind: KindFatal, Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return &CallError{Kind: KindAbort, Code: "ABORTED", Message: err.Error()}
		}
		return &CallError{Kind: KindRecoverable, Code: "NETWORK_ERROR", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &CallError{Kind: KindRecoverable, Code: "NETWORK_ERROR", Message: err.Error()}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	// A declared failure envelope wins over the status table; the server's
	// code and message pass through verbatim.
	if decodeErr == nil && env.ErrorInfo != nil {
		return &CallError{
			Kind:    KindFatal,
			Code:    env.ErrorInfo.Code,
			Message: env.ErrorInfo.Message,
			Details: env.ErrorInfo.Details,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode)
	}

	if decodeErr != nil || env.Status != "success" {
		return protocolBreach(fmt.Errorf("malformed response envelope: %q", truncate(raw, 120)))
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return protocolBreach(err)
		}
	}
	return nil
}

// protocolBreach marks a response that violated the wire contract. It is not
// user-recoverable.
func protocolBreach(err error) *CallError {
	return &CallError{Kind: KindFatal, Code: "INTERNAL_ERROR", Message: err.Error()}
}

func truncate(raw []byte, n int) string {
	s := string(raw)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
