package usecase

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"go.uber.org/zap"
)

// DefaultSampleRate is the sample rate assumed for raw PCM input
const DefaultSampleRate = 16000

// TranscriptionConfig holds configuration for speech recognition
type TranscriptionConfig struct {
	Language string
	BeamSize int
}

// TranscriptionService converts audio to text. It is best effort: empty
// results and model failures both come back as "no transcription".
type TranscriptionService struct {
	model  domain.SpeechModel
	opts   domain.DecodeOptions
	logger *zap.Logger
}

// NewTranscriptionService creates a transcription service
func NewTranscriptionService(model domain.SpeechModel, config TranscriptionConfig, logger *zap.Logger) *TranscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := domain.DecodeOptions{
		Language:                config.Language,
		BeamSize:                config.BeamSize,
		ConditionOnPreviousText: false,
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.BeamSize <= 0 {
		opts.BeamSize = 5
	}
	return &TranscriptionService{model: model, opts: opts, logger: logger.Named("transcription")}
}

// Transcribe recognizes little-endian 16-bit PCM audio. The bool is false
// when no speech was recognized or the model failed.
func (s *TranscriptionService) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, bool) {
	samples := DecodePCM16(pcm)
	if len(samples) == 0 {
		s.logger.Warn("empty audio buffer")
		return "", false
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	segments, err := s.model.TranscribeSamples(ctx, samples, sampleRate, s.opts)
	if err != nil {
		s.logger.Error("transcription failed", zap.Error(err))
		return "", false
	}
	return s.finish(segments)
}

// TranscribeFile recognizes an encoded audio file
func (s *TranscriptionService) TranscribeFile(ctx context.Context, path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read audio file", zap.String("path", path), zap.Error(err))
		return "", false
	}
	if len(data) == 0 {
		s.logger.Warn("empty audio file", zap.String("path", path))
		return "", false
	}

	segments, err := s.model.TranscribeAudio(ctx, filepath.Base(path), data, s.opts)
	if err != nil {
		s.logger.Error("transcription failed", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return s.finish(segments)
}

func (s *TranscriptionService) finish(segments []domain.Segment) (string, bool) {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		s.logger.Warn("no speech detected")
		return "", false
	}
	s.logger.Info("transcription successful", zap.String("text", text))
	return text, true
}

// DecodePCM16 converts little-endian signed 16-bit samples to float32 in
// [-1, 1]. A trailing odd byte is ignored.
func DecodePCM16(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples
}
