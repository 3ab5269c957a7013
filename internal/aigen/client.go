package aigen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/lettercounsel/lettercounsel/internal/config"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
)

// client talks to the drafting provider over HTTP. Transport-level failures
// are retried by the underlying retryable client; empty or malformed drafts
// are retried once more at this layer before surfacing as a generation error.
type client struct {
	cfg  config.AIGenConfig
	http *retryablehttp.Client
	log  *logger.Logger
}

func NewClient(cfg *config.Configuration, log *logger.Logger) Generator {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.AIGen.MaxRetries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = log.GetRetryableHTTPLogger()
	rc.HTTPClient.Timeout = cfg.AIGen.Timeout

	return &client{
		cfg:  cfg.AIGen,
		http: rc,
		log:  log,
	}
}

type draftRequest struct {
	Model        string            `json:"model"`
	LetterType   string            `json:"letter_type"`
	IntakeData   map[string]string `json:"intake_data"`
	PriorContext string            `json:"prior_context,omitempty"`
}

type draftResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Error   string `json:"error,omitempty"`
}

func (c *client) Generate(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var result *Result
	operation := func() error {
		res, err := c.draft(ctx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	}

	// The provider occasionally returns a well-formed but empty draft; one
	// short backoff cycle absorbs those without burning the whole timeout.
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *client) draft(ctx context.Context, req *Request) (*Result, error) {
	body := draftRequest{
		Model:      c.cfg.Model,
		LetterType: string(req.LetterType),
		IntakeData: req.IntakeData,
	}
	if req.PriorContext != nil {
		body.PriorContext = *req.PriorContext
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, backoff.Permanent(ierr.WithError(err).
			WithHint("Failed to encode generation request").
			Mark(ierr.ErrSystem))
	}

	url := fmt.Sprintf("%s/v1/drafts", strings.TrimSuffix(c.cfg.BaseURL, "/"))
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(ierr.WithError(err).
			WithHint("Failed to build generation request").
			Mark(ierr.ErrSystem))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, backoff.Permanent(ierr.WithError(err).
			WithHint("Letter generation provider is unreachable").
			Mark(ierr.ErrGeneration))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, backoff.Permanent(ierr.WithError(err).
			WithHint("Failed to read generation response").
			Mark(ierr.ErrGeneration))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(ierr.NewErrorf("generation provider returned status %d", resp.StatusCode).
			WithHint("Letter generation provider rejected the request").
			WithReportableDetails(map[string]interface{}{
				"status_code": resp.StatusCode,
			}).
			Mark(ierr.ErrGeneration))
	}

	var out draftResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, backoff.Permanent(ierr.WithError(err).
			WithHint("Generation provider returned a malformed response").
			Mark(ierr.ErrGeneration))
	}
	if out.Error != "" {
		return nil, backoff.Permanent(ierr.NewError(out.Error).
			WithHint("Letter generation provider reported an error").
			Mark(ierr.ErrGeneration))
	}
	if strings.TrimSpace(out.Content) == "" {
		// Retryable: the provider sometimes streams back an empty body on
		// a cold model.
		return nil, ierr.NewError("generation provider returned empty content").
			WithHint("Generated draft was empty").
			Mark(ierr.ErrGeneration)
	}

	model := out.Model
	if model == "" {
		model = c.cfg.Model
	}
	return &Result{Content: out.Content, Model: model}, nil
}
