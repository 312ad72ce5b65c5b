package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// NewHTTPDoer returns an http.Client tuned for a long-lived inference
// server. It carries no overall timeout: every request is bounded by its
// context instead.
func NewHTTPDoer(connectTimeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

// HTTPClient talks to a text-generation-inference compatible server.
type HTTPClient struct {
	payloadHolder
	baseURL    string
	httpClient *http.Client
	reqTimeout time.Duration
	log        zerolog.Logger
}

// NewHTTPClient posts payloads to <baseURL>/generate. A zero reqTimeout
// leaves the deadline to the caller's context.
func NewHTTPClient(baseURL string, doer *http.Client, reqTimeout time.Duration, payload Payload) *HTTPClient {
	if doer == nil {
		doer = NewHTTPDoer(5 * time.Second)
	}
	return &HTTPClient{
		payloadHolder: payloadHolder{payload: payload.Clone()},
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    doer,
		reqTimeout:    reqTimeout,
		log:           log.Logger,
	}
}

func (c *HTTPClient) Endpoint() string { return c.baseURL }

func (c *HTTPClient) Invoke(ctx context.Context) (Result, error) {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	body, err := json.Marshal(c.payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Endpoint: c.baseURL, Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.log.Error().Err(err).Str("endpoint", c.baseURL).Msg("inference request failed")
		return nil, &TransportError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Endpoint: c.baseURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		c.log.Error().Err(err).Str("endpoint", c.baseURL).Msg("inference server returned an error")
		return nil, &TransportError{Endpoint: c.baseURL, Err: err}
	}
	res, err := decodeResult(raw)
	if err != nil {
		return nil, &TransportError{Endpoint: c.baseURL, Err: err}
	}
	return res, nil
}
