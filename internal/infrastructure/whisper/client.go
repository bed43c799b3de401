package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cartwise/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// InferencePath is the whisper server transcription endpoint
const InferencePath = "/inference"

// Config holds whisper server client settings
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client talks to a whisper.cpp compatible HTTP server
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new whisper server client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	// decoding is CPU bound on the server, keep it to a couple of requests at a time
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 2),
		logger:      logger.Named("whisper"),
	}
}

// TranscribeSamples encodes mono float samples as WAV and transcribes them
func (c *Client) TranscribeSamples(ctx context.Context, samples []float32, sampleRate int, opts domain.DecodeOptions) ([]domain.Segment, error) {
	return c.TranscribeAudio(ctx, "audio.wav", EncodeWAV(samples, sampleRate), opts)
}

// TranscribeAudio uploads an encoded audio file and returns the recognized segments
func (c *Client) TranscribeAudio(ctx context.Context, filename string, data []byte, opts domain.DecodeOptions) ([]domain.Segment, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	body, contentType, err := buildForm(filename, data, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+InferencePath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "Cartwise/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrTranscriptionFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("whisper server error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(raw), 512)))
		return nil, fmt.Errorf("%w: status %d", domain.ErrTranscriptionFailed, resp.StatusCode)
	}

	var decoded VerboseResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrTranscriptionFailed, err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrTranscriptionFailed, decoded.Error)
	}

	segments := MapSegments(&decoded)
	c.logger.Debug("transcribed audio",
		zap.String("file", filename),
		zap.Int("bytes", len(data)),
		zap.Int("segments", len(segments)),
		zap.Duration("elapsed", time.Since(start)))
	return segments, nil
}

func buildForm(filename string, data []byte, opts domain.DecodeOptions) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"temperature":     "0",
		"response_format": "verbose_json",
		"no_context":      strconv.FormatBool(!opts.ConditionOnPreviousText),
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.BeamSize > 0 {
		fields["beam_size"] = strconv.Itoa(opts.BeamSize)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
