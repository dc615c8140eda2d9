package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"basegraph.app/helpdesk/common/logger"
	"basegraph.app/helpdesk/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL    = "https://api.intercom.io"
	defaultAPIVersion = "2.10"
	defaultTimeout    = 5 * time.Second

	maxErrorBody = 4096
)

type IntercomConfig struct {
	BaseURL     string
	AccessToken string
	APIVersion  string
	// Timeout bounds each outbound call, including connection setup.
	Timeout time.Duration
}

// APIError is a non-2xx response from Intercom.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("intercom returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("intercom returned %d: %s", e.StatusCode, e.Message)
}

type intercomClient struct {
	cfg     IntercomConfig
	http    *http.Client
	metrics *metrics.Metrics
}

// NewIntercomClient builds a Bridge over the Intercom REST API.
// httpClient may be nil; its Timeout is overridden by cfg.Timeout.
func NewIntercomClient(cfg IntercomConfig, httpClient *http.Client, m *metrics.Metrics) Bridge {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		client = &copied
	}
	client.Timeout = cfg.Timeout

	return &intercomClient{
		cfg:     cfg,
		http:    client,
		metrics: m,
	}
}

func (c *intercomClient) Configured() bool {
	return c.cfg.AccessToken != ""
}

type searchContactsRequest struct {
	Query searchQuery `json:"query"`
}

type searchQuery struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type contactPayload struct {
	ID         string `json:"id,omitempty"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

type contactList struct {
	Data       []contactPayload `json:"data"`
	TotalCount int              `json:"total_count"`
}

type conversationRequest struct {
	From     conversationFrom `json:"from"`
	Body     string           `json:"body"`
	AssignTo string           `json:"assign_to,omitempty"`
}

type conversationFrom struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type conversationResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
}

type errorList struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *intercomClient) FindContactByEmail(ctx context.Context, email string) LookupResult {
	if !c.Configured() {
		return TransientError(ErrNotConfigured)
	}
	if email == "" {
		return NotFound()
	}

	var list contactList
	err := c.do(ctx, "search_contacts", "/contacts/search", searchContactsRequest{
		Query: searchQuery{Field: "email", Operator: "=", Value: email},
	}, &list)
	if err != nil {
		slog.WarnContext(ctx, "helpdesk contact search failed, treating as not found", "error", err)
		return TransientError(err)
	}

	for _, p := range list.Data {
		if p.ID != "" && strings.EqualFold(p.Email, email) {
			return Found(toContact(p))
		}
	}
	return NotFound()
}

func (c *intercomClient) CreateContact(ctx context.Context, params ContactParams) (*Contact, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var created contactPayload
	err := c.do(ctx, "create_contact", "/contacts", contactPayload{
		Role:       params.Role,
		Email:      params.Email,
		Name:       params.Name,
		ExternalID: params.ExternalID,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("%w: creating contact: %w", ErrBridge, err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: creating contact: response has no id", ErrBridge)
	}
	return toContact(created), nil
}

func (c *intercomClient) OpenConversation(ctx context.Context, contactID, body, assigneeID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	// Intercom renders body as HTML; escape it so the text arrives as typed.
	var resp conversationResponse
	err := c.do(ctx, "create_conversation", "/conversations", conversationRequest{
		From:     conversationFrom{Type: ContactRoleUser, ID: contactID},
		Body:     html.EscapeString(body),
		AssignTo: assigneeID,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: opening conversation: %w", ErrBridge, err)
	}

	// User-initiated conversations come back as a message; the thread id is conversation_id.
	conversationID := resp.ConversationID
	if conversationID == "" {
		conversationID = resp.ID
	}
	if conversationID == "" {
		return "", fmt.Errorf("%w: opening conversation: response has no id", ErrBridge)
	}
	return conversationID, nil
}

func (c *intercomClient) do(ctx context.Context, operation, path string, payload, out any) (err error) {
	sc := logger.StartSpan(ctx, "helpdesk."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("helpdesk.path", path)),
	)
	defer sc.End()
	ctx = sc.Context()

	done := c.metrics.ObserveHelpdeskCall(operation)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			sc.RecordError(err)
		}
		done(outcome)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Intercom-Version", c.cfg.APIVersion)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	sc.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	slog.DebugContext(ctx, "helpdesk call completed",
		"operation", operation,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", operation, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var list errorList
	if err := json.Unmarshal(raw, &list); err == nil && len(list.Errors) > 0 {
		apiErr.Code = list.Errors[0].Code
		apiErr.Message = list.Errors[0].Message
	} else {
		apiErr.Message = logger.Truncate(strings.TrimSpace(string(raw)), 256)
	}
	return apiErr
}

func toContact(p contactPayload) *Contact {
	return &Contact{
		ID:         p.ID,
		Role:       p.Role,
		Email:      p.Email,
		Name:       p.Name,
		ExternalID: p.ExternalID,
	}
}
