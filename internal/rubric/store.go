package rubric

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultFileName      = "rubrics.json"
	instructionsFileName = "custom_instructions.txt"
)

// Store owns the persisted rubric document. Updates go through Replace, which
// swaps the whole rubric at once: concurrent readers see either the old or
// the new rubric, never a mixture.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	current *Rubric
}

func NewStore(path string, logger *zap.Logger) *Store {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("config", defaultFileName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the persisted rubric. A missing file is not an error: the
// built-in default is materialized, persisted and returned.
func (s *Store) Load() (*Rubric, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Info("rubric file not found, materializing defaults", zap.String("path", s.path))
		r := Default()
		if err := s.Save(r); err != nil {
			return nil, err
		}
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("configuration unavailable: %w", err)
	}

	var r Rubric
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("configuration unavailable: %w", err)
	}

	s.mu.Lock()
	s.current = &r
	s.mu.Unlock()

	return &r, nil
}

// Save persists the full rubric, overwriting prior content. The write goes
// through a temp file and rename so a crashed save never leaves a torn
// document behind.
func (s *Store) Save(r *Rubric) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("configuration unavailable: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rubrics-*.json")
	if err != nil {
		return fmt.Errorf("configuration unavailable: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("configuration unavailable: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("configuration unavailable: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("configuration unavailable: %w", err)
	}

	s.mu.Lock()
	s.current = r
	s.mu.Unlock()

	return nil
}

// Current returns the rubric last loaded or saved, loading on first use.
func (s *Store) Current() (*Rubric, error) {
	s.mu.RLock()
	r := s.current
	s.mu.RUnlock()

	if r != nil {
		return r, nil
	}
	return s.Load()
}

// Replace atomically swaps in a new rubric and persists it.
func (s *Store) Replace(r *Rubric) error {
	return s.Save(r)
}

// RecordInstructions appends free-text natural-language instructions to an
// audit trail for later manual incorporation into the rubric. Instructions
// are never parsed or applied automatically.
func (s *Store) RecordInstructions(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("instructions text is empty")
	}

	path := filepath.Join(filepath.Dir(s.path), instructionsFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("configuration unavailable: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("configuration unavailable: %w", err)
	}
	defer file.Close()

	entry := fmt.Sprintf("Instructions received at %s:\n\n%s\n\n---\n", time.Now().UTC().Format(time.RFC3339), text)
	if _, err := file.WriteString(entry); err != nil {
		return fmt.Errorf("configuration unavailable: %w", err)
	}

	s.logger.Info("instructions recorded for manual review", zap.String("path", path))
	return nil
}

// InstructionsPath reports where the audit trail lives.
func (s *Store) InstructionsPath() string {
	return filepath.Join(filepath.Dir(s.path), instructionsFileName)
}
