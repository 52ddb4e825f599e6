package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	domainErrors "github.com/Sema-5678/topup-service/internal/domain/errors"
	"github.com/Sema-5678/topup-service/internal/domain/model"
	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
)

// fileTopUpStore implements TopUpStore on a single JSON file. Every
// mutation rewrites the whole snapshot to a temp file in the same
// directory and renames it over the previous one, so a crash mid-write
// never leaves a partially-written store behind. A process-wide mutex
// serializes read-modify-write sequences; the store is NOT safe for
// multiple processes sharing the same file.
type fileTopUpStore struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileTopUpStore creates a store backed by the JSON file at path. A
// missing file reads as an empty store.
func NewFileTopUpStore(path string, logger *zap.Logger) domainRepo.TopUpStore {
	return &fileTopUpStore{
		path:   path,
		logger: logger,
	}
}

// load reads and decodes the snapshot. Caller must hold the mutex.
func (s *fileTopUpStore) load() (map[string]*model.TopUpRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]*model.TopUpRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read payments store: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]*model.TopUpRecord{}, nil
	}

	var records map[string]*model.TopUpRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, domainErrors.NewStoreCorruptError(s.path, err)
	}
	return records, nil
}

// save writes the full snapshot atomically. Caller must hold the mutex.
func (s *fileTopUpStore) save(records map[string]*model.TopUpRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode payments store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace payments store: %w", err)
	}
	return nil
}

// Get returns the current record, or nil if the id is absent.
func (s *fileTopUpStore) Get(ctx context.Context, id string) (*model.TopUpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	return records[id], nil
}

// Upsert inserts or fully replaces a record.
func (s *fileTopUpStore) Upsert(ctx context.Context, record *model.TopUpRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records[record.ID] = record

	if err := s.save(records); err != nil {
		return err
	}

	s.logger.Debug("Persisted top-up record",
		zap.String("record_id", record.ID),
		zap.String("status", string(record.Status)))
	return nil
}

// Patch merges fields into an existing record atomically. Returns nil
// without error when the id is absent; a patch never creates a record.
// Records in a terminal status are immutable: patching one returns a
// TerminalStateError and leaves the snapshot untouched, which makes the
// terminal check part of the same critical section as the write and
// keeps concurrent settle/expire attempts from overriding each other.
func (s *fileTopUpStore) Patch(ctx context.Context, id string, patch model.TopUpPatch) (*model.TopUpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	record, ok := records[id]
	if !ok {
		return nil, nil
	}
	if record.Status.Terminal() {
		return nil, domainErrors.NewTerminalStateError(id, string(record.Status))
	}

	patch.Apply(record)
	if err := s.save(records); err != nil {
		return nil, err
	}
	return record, nil
}

// ScanOpen returns all records whose status is non-terminal.
func (s *fileTopUpStore) ScanOpen(ctx context.Context) (map[string]*model.TopUpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	open := make(map[string]*model.TopUpRecord)
	for id, record := range records {
		if record.Status.Open() {
			open[id] = record
		}
	}
	return open, nil
}
