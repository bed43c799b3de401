package usecase

import (
	"context"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// MockCartRepository is an in-memory domain.CartRepository
type MockCartRepository struct {
	lines     []domain.CartLine
	readError error
	writeErr  error
	writes    int
}

func NewMockCartRepository(names ...string) *MockCartRepository {
	m := &MockCartRepository{}
	for _, n := range names {
		m.lines = append(m.lines, domain.CartLine{Name: n})
	}
	return m
}

func (m *MockCartRepository) Read(ctx context.Context) ([]domain.CartLine, error) {
	if m.readError != nil {
		return nil, m.readError
	}
	out := make([]domain.CartLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *MockCartRepository) Append(ctx context.Context, line domain.CartLine) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.lines = append(m.lines, line)
	return nil
}

func (m *MockCartRepository) RemoveByName(ctx context.Context, name string) (bool, error) {
	if m.writeErr != nil {
		return false, m.writeErr
	}
	m.writes++
	kept := m.lines[:0:0]
	for _, l := range m.lines {
		if !strings.EqualFold(l.Name, name) {
			kept = append(kept, l)
		}
	}
	removed := len(kept) < len(m.lines)
	m.lines = kept
	return removed, nil
}

func (m *MockCartRepository) Clear(ctx context.Context) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.lines = nil
	return nil
}

// MockRetrievalIndex returns canned documents
type MockRetrievalIndex struct {
	docs      []domain.RetrievedDocument
	err       error
	lastQuery string
	lastK     int
}

func (m *MockRetrievalIndex) SeedIfEmpty(ctx context.Context, catalog *domain.Catalog) (int, error) {
	return 0, nil
}

func (m *MockRetrievalIndex) Search(ctx context.Context, query string, k int) ([]domain.RetrievedDocument, error) {
	m.lastQuery = query
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	if len(m.docs) > k {
		return m.docs[:k], nil
	}
	return m.docs, nil
}

// MockChatModel returns a canned completion and records the prompt
type MockChatModel struct {
	output     string
	err        error
	lastPrompt string
	calls      int
}

func (m *MockChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

// MockSpeechModel returns canned segments
type MockSpeechModel struct {
	segments       []domain.Segment
	err            error
	lastSamples    []float32
	lastSampleRate int
	lastFilename   string
	lastData       []byte
	lastOpts       domain.DecodeOptions
	calls          int
}

func (m *MockSpeechModel) TranscribeSamples(ctx context.Context, samples []float32, sampleRate int, opts domain.DecodeOptions) ([]domain.Segment, error) {
	m.calls++
	m.lastSamples = samples
	m.lastSampleRate = sampleRate
	m.lastOpts = opts
	return m.segments, m.err
}

func (m *MockSpeechModel) TranscribeAudio(ctx context.Context, filename string, data []byte, opts domain.DecodeOptions) ([]domain.Segment, error) {
	m.calls++
	m.lastFilename = filename
	m.lastData = data
	m.lastOpts = opts
	return m.segments, m.err
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{Categories: []domain.Category{
		{Name: "Fruits", Products: []domain.Product{
			{Name: "Apple", Category: "Fruits", Price: 50, Unit: "kg"},
			{Name: "Mango", Category: "Fruits", Price: 120, Unit: "kg"},
			{Name: "Green Apple", Category: "Fruits", Price: 80, Unit: "kg"},
		}},
		{Name: "Dairy", Products: []domain.Product{
			{Name: "Milk", Category: "Dairy", Price: 28.5, Unit: "litre"},
			{Name: "Paneer", Category: "Dairy", Price: 90, Unit: "200g"},
		}},
	}}
}

func doc(name string) domain.RetrievedDocument {
	return domain.RetrievedDocument{
		Text:     name + " - kg - price 1 - Category: Test",
		Metadata: map[string]interface{}{"name": name, "category": "Test"},
	}
}
