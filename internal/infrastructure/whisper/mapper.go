package whisper

import (
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// VerboseResponse is the verbose_json body returned by the whisper server
type VerboseResponse struct {
	Task     string           `json:"task"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Text     string           `json:"text"`
	Segments []VerboseSegment `json:"segments"`
	Error    string           `json:"error"`
}

// VerboseSegment is a single decoded segment
type VerboseSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// MapSegments converts a server response to domain segments. Servers that
// only return the flat text produce a single segment spanning the clip.
func MapSegments(resp *VerboseResponse) []domain.Segment {
	if resp == nil {
		return nil
	}

	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return nil
		}
		return []domain.Segment{{Start: 0, End: resp.Duration, Text: resp.Text}}
	}

	segments := make([]domain.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, domain.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return segments
}
