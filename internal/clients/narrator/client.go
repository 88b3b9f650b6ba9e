// Package narrator is the HTTP client for the external workflow engine
// that writes the story. Turn bundles go to the turn webhook; knowledge
// questions go to the oracle webhook.
package narrator

//go:generate mockgen -destination=mock/mock_client.go -package=narratormock github.com/greymere/keeper-api/internal/clients/narrator Client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/greymere/keeper-api/internal/engine/assembly"
	"github.com/greymere/keeper-api/internal/errors"
)

// DispatchOutcome classifies what happened to an async webhook fire.
type DispatchOutcome string

// Dispatch outcomes.
const (
	OutcomeDelivered     DispatchOutcome = "delivered"
	OutcomeTimeout       DispatchOutcome = "timeout"
	OutcomeRefused       DispatchOutcome = "refused"
	OutcomeUpstreamError DispatchOutcome = "upstream_error"
)

// Client talks to the narrator workflow engine.
type Client interface {
	// Dispatch fires a turn bundle at the turn webhook and returns as
	// soon as the webhook acknowledges receipt. The narrator replies
	// later via the bundle's callback URL. A non-delivered outcome
	// carries the classified error alongside.
	Dispatch(ctx context.Context, bundle *assembly.ContextBundle) (DispatchOutcome, error)

	// Generate sends a turn bundle and blocks for the full narrator
	// response payload.
	Generate(ctx context.Context, bundle *assembly.ContextBundle) (map[string]interface{}, error)

	// AskRules sends a knowledge-base question to the oracle webhook.
	AskRules(ctx context.Context, input *AskRulesInput) (*AskRulesOutput, error)
}

// AskRulesInput is a player's rules question.
type AskRulesInput struct {
	PlayerID string `json:"player_id"`
	Question string `json:"question"`
}

// AskRulesOutput is the oracle's answer.
type AskRulesOutput struct {
	Answer     string   `json:"answer"`
	References []string `json:"rules_references,omitempty"`
}

// Config holds the narrator endpoints and timeouts.
type Config struct {
	TurnWebhookURL    string
	OracleWebhookURL  string
	DispatchTimeout   time.Duration
	GenerationTimeout time.Duration

	// HTTPClient overrides the transport; nil uses http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Validate ensures all required settings are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.TurnWebhookURL == "" {
		vb.RequiredField("TurnWebhookURL")
	}
	if c.OracleWebhookURL == "" {
		vb.RequiredField("OracleWebhookURL")
	}
	if c.DispatchTimeout <= 0 {
		vb.Field("DispatchTimeout", "must be positive")
	}
	if c.GenerationTimeout <= 0 {
		vb.Field("GenerationTimeout", "must be positive")
	}
	return vb.Build()
}

type client struct {
	turnWebhookURL    string
	oracleWebhookURL  string
	dispatchTimeout   time.Duration
	generationTimeout time.Duration
	httpClient        *http.Client
	logger            *slog.Logger
}

// New creates a new narrator client
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &client{
		turnWebhookURL:    cfg.TurnWebhookURL,
		oracleWebhookURL:  cfg.OracleWebhookURL,
		dispatchTimeout:   cfg.DispatchTimeout,
		generationTimeout: cfg.GenerationTimeout,
		httpClient:        httpClient,
		logger:            logger,
	}, nil
}

func (c *client) Dispatch(ctx context.Context, bundle *assembly.ContextBundle) (DispatchOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.dispatchTimeout)
	defer cancel()

	_, err := c.post(ctx, c.turnWebhookURL, bundle)
	if err != nil {
		outcome := classifyOutcome(err)
		c.logger.WarnContext(ctx, "turn dispatch not delivered",
			"turn_id", bundle.TurnID, "outcome", string(outcome), "error", err)
		return outcome, err
	}

	c.logger.InfoContext(ctx, "turn dispatched", "turn_id", bundle.TurnID)
	return OutcomeDelivered, nil
}

func (c *client) Generate(ctx context.Context, bundle *assembly.ContextBundle) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generationTimeout)
	defer cancel()

	body, err := c.post(ctx, c.turnWebhookURL, bundle)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "narrator returned malformed response")
	}
	return payload, nil
}

func (c *client) AskRules(ctx context.Context, input *AskRulesInput) (*AskRulesOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.Question == "" {
		return nil, errors.InvalidArgument("question cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.generationTimeout)
	defer cancel()

	body, err := c.post(ctx, c.oracleWebhookURL, input)
	if err != nil {
		return nil, err
	}

	output := &AskRulesOutput{}
	if err := json.Unmarshal(body, output); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "oracle returned malformed response")
	}
	return output, nil
}

// post sends a JSON body and returns the response body, translating
// transport failures and non-2xx statuses into coded errors.
func (c *client) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, translateTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Internalf("narrator returned status %d", resp.StatusCode).
			WithMeta("status", resp.StatusCode).
			WithMeta("url", url)
	}
	return body, nil
}

func translateTransportError(err error) error {
	var netErr net.Error
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.DeadlineExceeded("narrator request timed out")
	case stderrors.As(err, &netErr) && netErr.Timeout():
		return errors.DeadlineExceeded("narrator request timed out")
	case stderrors.Is(err, syscall.ECONNREFUSED):
		return errors.Unavailable("narrator refused connection")
	default:
		return errors.WrapWithCode(err, errors.CodeUnavailable, "narrator unreachable")
	}
}

func classifyOutcome(err error) DispatchOutcome {
	switch {
	case errors.IsDeadlineExceeded(err):
		return OutcomeTimeout
	case errors.IsUnavailable(err):
		return OutcomeRefused
	default:
		return OutcomeUpstreamError
	}
}
