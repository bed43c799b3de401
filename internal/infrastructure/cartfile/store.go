// Package cartfile persists the cart as a JSON array in a single file.
//
// Every mutation is a whole-file read-modify-write. There is no locking:
// concurrent writers race and the last write wins, so the store is only
// suitable for a single user.
package cartfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Store is a file-backed domain.CartRepository
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a cart store at path, creating the file as an empty cart
// when it does not exist yet.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger.Named("cart")}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat cart file: %w", err)
	}

	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Read returns all cart lines. A missing file is initialized to an empty
// cart; corrupt content is reset to an empty cart and persisted.
func (s *Store) Read(ctx context.Context) ([]domain.CartLine, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	lines, ok := decode(data)
	if !ok {
		s.logger.Warn("resetting corrupt cart file", zap.String("path", s.path), zap.Int("bytes", len(data)))
		if err := s.write(nil); err != nil {
			return nil, err
		}
		return []domain.CartLine{}, nil
	}
	return lines, nil
}

// Append adds a line at the end of the cart
func (s *Store) Append(ctx context.Context, line domain.CartLine) error {
	lines, err := s.Read(ctx)
	if err != nil {
		return err
	}
	return s.write(append(lines, line))
}

// RemoveByName drops every line whose name case-insensitively equals name
// and reports whether anything was removed.
func (s *Store) RemoveByName(ctx context.Context, name string) (bool, error) {
	lines, err := s.Read(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if strings.EqualFold(line.Name, name) {
			continue
		}
		kept = append(kept, line)
	}

	if err := s.write(kept); err != nil {
		return false, err
	}
	return len(kept) < len(lines), nil
}

// Clear persists an empty cart
func (s *Store) Clear(ctx context.Context) error {
	return s.write(nil)
}

// decode parses the cart file. Only an array of objects with a string name
// is a valid cart; any other shape is corrupt.
func decode(data []byte) ([]domain.CartLine, bool) {
	if !gjson.ValidBytes(data) {
		return nil, false
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, false
	}

	elements := root.Array()
	lines := make([]domain.CartLine, 0, len(elements))
	for _, el := range elements {
		name := el.Get("name")
		if !el.IsObject() || name.Type != gjson.String {
			return nil, false
		}
		lines = append(lines, domain.CartLine{Name: name.String()})
	}
	return lines, true
}

// write replaces the whole file. The payload goes to a temp file in the same
// directory first so readers never observe a half-written cart.
func (s *Store) write(lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cart file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}

	s.logger.Debug("cart persisted", zap.Int("lines", len(lines)))
	return nil
}
