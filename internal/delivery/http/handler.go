package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHeader selects the conversation a chat message belongs to
const SessionHeader = "X-Session-ID"

const (
	serviceName    = "cartwise-backend"
	serviceVersion = "1.0.0"

	audioFormField       = "audio_file"
	maxAudioUploadBytes  = 25 << 20
	multipartOverhead    = 4 << 10
	msgNotAudio          = "File must be an audio file"
	msgNotTranscribed    = "Could not transcribe audio. Please ensure the audio contains clear speech."
	msgMessageIsRequired = "message is required"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog       *usecase.CatalogService
	carts         *usecase.CartService
	assistant     *usecase.AssistantService
	transcription *usecase.TranscriptionService
	sessions      *usecase.SessionStore
	logger        *zap.Logger

	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.CatalogService,
	carts *usecase.CartService,
	assistant *usecase.AssistantService,
	transcription *usecase.TranscriptionService,
	sessions *usecase.SessionStore,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:        catalog,
		carts:          carts,
		assistant:      assistant,
		transcription:  transcription,
		sessions:       sessions,
		logger:         logger.Named("http"),
		maxUploadBytes: maxAudioUploadBytes,
	}
}

// ChatRequest accepts either "message" or "text"; message wins when both are set
type ChatRequest struct {
	Message string `json:"message"`
	Text    string `json:"text"`
}

// content returns the message to process, preferring message over text
func (r ChatRequest) content() (string, error) {
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg, nil
	}
	if msg := strings.TrimSpace(r.Text); msg != "" {
		return msg, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrInvalidRequest, msgMessageIsRequired)
}

// ChatResponse is the reply plus the freshly computed cart
type ChatResponse struct {
	Reply string             `json:"reply"`
	Cart  domain.CartSummary `json:"cart"`
}

// TranscribeResponse is returned by the transcription endpoint
type TranscribeResponse struct {
	TranscribedText string `json:"transcribed_text"`
	Success         bool   `json:"success"`
}

// VoiceChatResponse combines transcription and chat
type VoiceChatResponse struct {
	TranscribedText string       `json:"transcribed_text"`
	ChatResponse    ChatResponse `json:"chat_response"`
	Success         bool         `json:"success"`
}

// Root confirms the API is up
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Shopping Assistant API is running"})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ListItems returns the catalog grouped by category
func (h *Handler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.AllProducts())
}

// ListItemsDropdown returns the catalog in dropdown form
func (h *Handler) ListItemsDropdown(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Dropdown())
}

// GetCart returns the cart summary
func (h *Handler) GetCart(c *gin.Context) {
	summary, err := h.carts.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to summarize cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Chat resolves a text message into a cart action and reply
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	message, err := req.content()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMessageIsRequired})
		return
	}

	resp, err := h.chat(c.Request.Context(), c.GetHeader(SessionHeader), message)
	if err != nil {
		h.logger.Error("chat failed", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transcribe converts an uploaded audio file to text
func (h *Handler) Transcribe(c *gin.Context) {
	text, failure := h.transcribeUpload(c)
	if failure != nil {
		c.JSON(failure.status, gin.H{"error": failure.message})
		return
	}
	c.JSON(http.StatusOK, TranscribeResponse{TranscribedText: text, Success: true})
}

// VoiceChat transcribes an uploaded audio file and processes it as a chat message
func (h *Handler) VoiceChat(c *gin.Context) {
	text, failure := h.transcribeUpload(c)
	if failure != nil {
		c.JSON(failure.status, gin.H{"error": failure.message})
		return
	}

	resp, err := h.chat(c.Request.Context(), c.GetHeader(SessionHeader), text)
	if err != nil {
		h.logger.Error("voice chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Voice chat processing failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, VoiceChatResponse{
		TranscribedText: text,
		ChatResponse:    resp,
		Success:         true,
	})
}

func (h *Handler) chat(ctx context.Context, sessionID, message string) (ChatResponse, error) {
	conv := h.sessions.Get(sessionID)

	result, err := h.assistant.ProcessMessage(ctx, conv, message)
	if err != nil {
		return ChatResponse{}, err
	}

	summary, err := h.carts.Summary(ctx)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to summarize cart: %w", err)
	}

	return ChatResponse{Reply: result.Reply, Cart: summary}, nil
}

// uploadFailure is the HTTP status and message for a rejected upload
type uploadFailure struct {
	status  int
	message string
}

// transcribeUpload validates the multipart audio upload, spools it to a temp
// file and transcribes it.
func (h *Handler) transcribeUpload(c *gin.Context) (string, *uploadFailure) {
	// Bound the body before gin parses and spools the multipart form
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	header, err := c.FormFile(audioFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", &uploadFailure{http.StatusRequestEntityTooLarge, h.tooLargeMessage()}
		}
		return "", &uploadFailure{http.StatusBadRequest, audioFormField + " is required"}
	}
	if err := checkAudioUpload(header, h.maxUploadBytes); err != nil {
		if errors.Is(err, domain.ErrUnsupportedAudio) {
			return "", &uploadFailure{http.StatusBadRequest, msgNotAudio}
		}
		return "", &uploadFailure{http.StatusRequestEntityTooLarge, h.tooLargeMessage()}
	}

	path, err := spoolUpload(header)
	if err != nil {
		h.logger.Error("failed to store upload", zap.Error(err))
		return "", &uploadFailure{http.StatusInternalServerError, fmt.Sprintf("Transcription failed: %v", err)}
	}
	defer os.Remove(path)

	text, ok := h.transcription.TranscribeFile(c.Request.Context(), path)
	if !ok {
		return "", &uploadFailure{http.StatusBadRequest, msgNotTranscribed}
	}
	return text, nil
}

// errAudioTooLarge is returned for uploads over the configured size cap
var errAudioTooLarge = errors.New("audio file too large")

func checkAudioUpload(header *multipart.FileHeader, limit int64) error {
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "audio/") {
		return domain.ErrUnsupportedAudio
	}
	if header.Size > limit {
		return errAudioTooLarge
	}
	return nil
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("audio file exceeds %d bytes", h.maxUploadBytes)
}

// spoolUpload copies an upload to a temp file keeping the original extension
func spoolUpload(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
