package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/apppanel/apiclient-core/auth"
	"github.com/apppanel/apiclient-core/config"
	"github.com/apppanel/apiclient-core/models"
	"github.com/apppanel/apiclient-core/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Option func(*Client)

// WithHTTPClient replaces the transport built from the config.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTokenProvider(tokens auth.TokenProvider) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithObservers(observers ...Observer) Option {
	return func(c *Client) {
		c.observers = append(c.observers, observers...)
	}
}

// Client sends requests to the backend and resolves every response envelope
// into a models.Result. A Client is safe for concurrent use.
type Client struct {
	cfg       config.ClientConfig
	http      *http.Client
	tokens    auth.TokenProvider
	observers []Observer
	mapper    ErrorMapper
}

func NewClient(cfg config.ClientConfig, opts ...Option) (*Client, error) {
	if err := models.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newHTTPClient(cfg)
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.Timeout).
		Int("observers", len(c.observers)).
		Msg("API client created")

	return c, nil
}

func newHTTPClient(cfg config.ClientConfig) *http.Client {
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 16
	}

	d := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           d.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}

// Send issues req and decodes the response envelope into T. It never returns
// a raw transport or decode error: every failure is an AppError in the result.
func Send[T any](ctx context.Context, c *Client, req models.Request) models.Result[T] {
	if err := models.ValidateStruct(req); err != nil {
		return models.Failure[T](models.UndefinedError(fmt.Errorf("%w: %w", ErrInvalidRequest, err)))
	}

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return models.Failure[T](models.UndefinedError(fmt.Errorf("%w: encode body: %w", ErrInvalidRequest, err)))
		}
		body = encoded
	}

	httpReq, err := c.newRequest(ctx, req.Method, req.Path, req.Query, body)
	if err != nil {
		return models.Failure[T](models.UndefinedError(err))
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	copyHeaders(httpReq.Header, req.Headers)

	return execute[T](ctx, c, httpReq, body)
}

// Upload sends req.Data as a single multipart field. The response goes through
// the same envelope handling as Send.
func Upload[T any](ctx context.Context, c *Client, req models.UploadRequest) models.Result[T] {
	if err := models.ValidateStruct(req); err != nil {
		return models.Failure[T](models.UndefinedError(fmt.Errorf("%w: %w", ErrInvalidRequest, err)))
	}

	if req.MimeType == "" {
		req.MimeType = mimetype.Detect(req.Data).String()
	}

	body, contentType, err := multipartBody(req)
	if err != nil {
		return models.Failure[T](models.UndefinedError(fmt.Errorf("%w: %w", ErrInvalidRequest, err)))
	}

	httpReq, err := c.newRequest(ctx, req.Method, req.Path, nil, body)
	if err != nil {
		return models.Failure[T](models.UndefinedError(err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	copyHeaders(httpReq.Header, req.Headers)

	// Multipart bodies are binary; the journal keeps a summary instead.
	summary := fmt.Appendf(nil, "<multipart %s=%s (%s, %d bytes)>", req.FieldName, req.FileName, req.MimeType, len(req.Data))
	return execute[T](ctx, c, httpReq, summary)
}

// SendAsync runs Send in its own goroutine. The channel delivers exactly one
// result and is then closed.
func SendAsync[T any](ctx context.Context, c *Client, req models.Request) <-chan models.Result[T] {
	ch := make(chan models.Result[T], 1)
	go func() {
		defer close(ch)
		ch <- Send[T](ctx, c, req)
	}()
	return ch
}

func UploadAsync[T any](ctx context.Context, c *Client, req models.UploadRequest) <-chan models.Result[T] {
	ch := make(chan models.Result[T], 1)
	go func() {
		defer close(ch)
		ch <- Upload[T](ctx, c, req)
	}()
	return ch
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	fullURL, err := utils.JoinURL(c.cfg.BaseURL, path, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	return httpReq, nil
}

func execute[T any](ctx context.Context, c *Client, httpReq *http.Request, reqBody []byte) models.Result[T] {
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			log.Debug().
				Err(err).
				Str("url", httpReq.URL.String()).
				Msg("No access token, request not sent")
			return models.Failure[T](models.Unauthorized())
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	exchange := Exchange{
		ID:          uuid.New(),
		Method:      httpReq.Method,
		URL:         httpReq.URL.String(),
		Curl:        CurlDescription(httpReq, reqBody),
		RequestBody: reqBody,
	}
	notifyWillSend(ctx, c.observers, exchange)

	start := time.Now()
	result, status, respBody := roundTrip[T](ctx, c, httpReq)

	exchange.StatusCode = status
	exchange.ResponseBody = respBody
	exchange.Duration = time.Since(start)
	exchange.Err = result.Err
	notifyDidReceive(ctx, c.observers, exchange)

	return result
}

func roundTrip[T any](ctx context.Context, c *Client, httpReq *http.Request) (models.Result[T], int, []byte) {
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return models.Failure[T](c.mapper.FromTransport(err)), 0, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The body broke off mid-read; a partial body may still hold the error payload.
		var payload *models.ErrorPayload
		if env, decodeErr := models.DecodeEnvelope[T](body); decodeErr == nil {
			payload = env.Error
		}
		return models.Failure[T](c.mapper.Resolve(err, payload)), resp.StatusCode, body
	}

	return resolve[T](ctx, c, resp.StatusCode, body), resp.StatusCode, body
}

func resolve[T any](ctx context.Context, c *Client, status int, body []byte) models.Result[T] {
	if status < http.StatusOK || status >= http.StatusInternalServerError {
		return models.Failure[T](c.mapper.FromTransport(fmt.Errorf("%w: %d", ErrUnacceptableStatus, status)))
	}

	if status == http.StatusUnauthorized {
		if c.tokens != nil {
			c.tokens.Invalidate(ctx)
		}
		return models.Failure[T](models.Unauthorized())
	}

	env, err := models.DecodeEnvelope[T](body)
	if err != nil {
		return models.Failure[T](c.mapper.FromDecode(err))
	}

	switch {
	case env.Error != nil:
		return models.Failure[T](c.mapper.FromPayload(*env.Error))
	case env.Data != nil:
		return models.Success(*env.Data)
	default:
		return models.Failure[T](c.mapper.Empty())
	}
}

func multipartBody(req models.UploadRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(req.FieldName), escapeQuotes(req.FileName)))
	header.Set("Content-Type", req.MimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func copyHeaders(dst, src http.Header) {
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}
