package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/observability"
	util "github.com/spec-kit/ticket-console/pkg/util"
)

// Client is the single normalized wrapper around the remote ticket
// backend. Every endpoint goes through here; response-shape quirks are
// absorbed by the dto package so callers only ever see domain types.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// New builds a client from configuration.
func New(cfg config.APIConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.AccessToken,
		timeout: cfg.RequestTimeout(),
		// The per-request deadline is applied via context so individual
		// calls stay cancellable; the http.Client itself has no timeout.
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metrics,
	}
}

// doJSON performs a request with a JSON body (nil for none) and decodes
// the standard response envelope. Failures are classified per the error
// taxonomy and recorded in metrics; callers decide whether to translate
// them into nil/empty sentinels.
func (c *Client) doJSON(ctx context.Context, operation, method, path string, in any) (*dto.Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, util.NewMalformedPayloadError("encode request body", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, util.NewTransportError("build request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(operation, req)
}

// send executes a prepared request and decodes the envelope. Used by
// doJSON and by the multipart create path, which builds its own body.
func (c *Client) send(operation string, req *http.Request) (*dto.Envelope, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordFailure(operation, string(util.KindTransport))
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("backend request timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", c.timeout))
		} else {
			c.logger.Warn("backend request failed",
				zap.String("operation", operation),
				zap.Error(err))
		}
		return nil, util.NewTransportError(operation, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordCall(operation, resp.StatusCode, time.Since(start))

	var envelope dto.Envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordFailure(operation, string(util.KindHTTPStatus))
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("%s: status %d", operation, resp.StatusCode)
		}
		c.logger.Warn("backend returned non-success status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode))
		return nil, util.NewHTTPStatusError(message, resp.StatusCode)
	}

	if decodeErr != nil {
		c.metrics.RecordFailure(operation, string(util.KindMalformedPayload))
		c.logger.Warn("backend response did not decode",
			zap.String("operation", operation),
			zap.Error(decodeErr))
		return nil, util.NewMalformedPayloadError(operation, decodeErr)
	}
	return &envelope, nil
}

// decodeData unmarshals the envelope's data field into out, classifying
// a mismatch as a malformed payload.
func (c *Client) decodeData(operation string, envelope *dto.Envelope, out any) error {
	if envelope == nil || len(envelope.Data) == 0 {
		c.metrics.RecordFailure(operation, string(util.KindMalformedPayload))
		return util.NewMalformedPayloadError(operation+": empty data", nil)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		c.metrics.RecordFailure(operation, string(util.KindMalformedPayload))
		c.logger.Warn("unexpected payload shape",
			zap.String("operation", operation),
			zap.Error(err))
		return util.NewMalformedPayloadError(operation, err)
	}
	return nil
}
