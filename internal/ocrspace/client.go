// Package ocrspace is a client for the OCR.space parse API. The service is an
// opaque capability: documents go in, plain text comes out, and the two
// failure families (transport vs service-reported) stay distinguishable.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fixed recognition hints. These mirror the original deployment and are not
// user-configurable.
const (
	hintIsTable           = "true"
	hintOCREngine         = "2"
	hintScale             = "true"
	hintDetectOrientation = "true"
)

// DefaultEndpoint is the public OCR.space parse endpoint.
const DefaultEndpoint = "https://api.ocr.space/parse/image"

// ServiceError means the remote service accepted the request but reported a
// processing failure.
type ServiceError struct {
	Messages []string
}

func (e *ServiceError) Error() string {
	if len(e.Messages) == 0 {
		return "ocr service reported an unspecified processing error"
	}
	return "ocr service error: " + strings.Join(e.Messages, ", ")
}

// TransportError means the service could not be reached or answered outside
// its contract (network failure, timeout, non-2xx status).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("ocr transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Client submits documents to the OCR service.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	language   string
	logger     *slog.Logger
}

func NewClient(endpoint, apiKey, language string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if language == "" {
		language = "por"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
		language:   language,
		logger:     logger,
	}
}

// Recognize submits a payload and returns the recognized plain text.
// Multipart submission is preferred; a submission failure triggers exactly one
// base64 form-urlencoded retry of the same payload. Service-reported errors
// surface as *ServiceError and are never retried.
func (c *Client) Recognize(ctx context.Context, payload []byte, filename string, isImage bool) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	raw, err := c.postMultipart(ctx, payload, filename)
	if err != nil {
		var se *ServiceError
		if errors.As(err, &se) {
			return "", err
		}
		c.logger.Warn("ocrspace.multipart_failed, retrying as base64",
			"req_id", reqID, "error", err)
		raw, err = c.postBase64(ctx, payload, isImage)
		if err != nil {
			return "", err
		}
	}

	c.logger.Info("ocrspace.ok",
		"req_id", reqID,
		"text_bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}

func (c *Client) postMultipart(ctx context.Context, payload []byte, filename string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"apikey":            c.apiKey,
		"language":          c.language,
		"isTable":           hintIsTable,
		"OCREngine":         hintOCREngine,
		"scale":             hintScale,
		"detectOrientation": hintDetectOrientation,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", &TransportError{Err: fmt.Errorf("write field %s: %w", k, err)}
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if _, err := part.Write(payload); err != nil {
		return "", &TransportError{Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &TransportError{Err: err}
	}

	return c.post(ctx, &body, w.FormDataContentType())
}

func (c *Client) postBase64(ctx context.Context, payload []byte, isImage bool) (string, error) {
	mime := "application/pdf"
	if isImage {
		mime = "image/jpeg"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(payload))

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("base64Image", dataURI)
	form.Set("language", c.language)
	form.Set("isTable", hintIsTable)
	form.Set("OCREngine", hintOCREngine)
	form.Set("scale", hintScale)
	form.Set("detectOrientation", hintDetectOrientation)

	return c.post(ctx, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// post sends one request and decodes the service envelope.
func (c *Client) post(ctx context.Context, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("ocrspace.response_body_close_error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode/100 != 2 {
		return "", &TransportError{Err: fmt.Errorf("non-2xx status: %d (%s)", resp.StatusCode, truncate(string(raw), 256))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.IsErroredOnProcessing {
		return "", &ServiceError{Messages: env.ErrorMessage}
	}
	if len(env.ParsedResults) == 0 {
		return "", nil
	}
	return env.ParsedResults[0].ParsedText, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
