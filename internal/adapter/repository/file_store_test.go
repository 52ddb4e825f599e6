package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/Sema-5678/topup-service/internal/domain/errors"
	"github.com/Sema-5678/topup-service/internal/domain/model"
)

func newTestRecord(id string, status model.TopUpStatus) *model.TopUpRecord {
	created := time.Now().UTC().Truncate(time.Second)
	next := created.Add(5 * time.Second)
	return &model.TopUpRecord{
		ID:          id,
		Kind:        model.KindTopUp,
		OwnerID:     42,
		OwnerLabel:  "alice",
		Amount:      decimal.RequireFromString("100.00"),
		Currency:    "RUB",
		Status:      status,
		CreatedAt:   created,
		NextCheckAt: &next,
	}
}

func TestFileTopUpStore_MissingFile(t *testing.T) {
	ctx := context.Background()
	store := NewFileTopUpStore(filepath.Join(t.TempDir(), "payments.json"), zap.NewNop())

	t.Run("get on missing file returns nil", func(t *testing.T) {
		rec, err := store.Get(ctx, "nope")
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("scan on missing file is empty", func(t *testing.T) {
		open, err := store.ScanOpen(ctx)
		assert.NoError(t, err)
		assert.Empty(t, open)
	})
}

func TestFileTopUpStore_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	rec := newTestRecord("rec-1", model.TopUpStatusPending)
	require.NoError(t, store.Upsert(ctx, rec))

	got, err := store.Get(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, model.TopUpStatusPending, got.Status)
	assert.True(t, rec.Amount.Equal(got.Amount))
	assert.Equal(t, rec.CreatedAt.Unix(), got.CreatedAt.Unix())

	// A second store instance reading the same file sees the record.
	reopened := NewFileTopUpStore(path, zap.NewNop())
	got, err = reopened.Get(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.OwnerID)
}

func TestFileTopUpStore_PatchAbsentID(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	require.NoError(t, store.Upsert(ctx, newTestRecord("rec-1", model.TopUpStatusPending)))

	status := model.TopUpStatusSucceeded
	rec, err := store.Patch(ctx, "missing", model.TopUpPatch{Status: &status})
	assert.NoError(t, err)
	assert.Nil(t, rec)

	// The absent patch did not create a record.
	got, err := store.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileTopUpStore_PatchMergesFields(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	require.NoError(t, store.Upsert(ctx, newTestRecord("rec-1", model.TopUpStatusPending)))

	now := time.Now().UTC().Truncate(time.Second)
	status := model.TopUpStatusSucceeded
	rec, err := store.Patch(ctx, "rec-1", model.TopUpPatch{
		Status:         &status,
		PaidAt:         &now,
		ClearNextCheck: true,
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.TopUpStatusSucceeded, rec.Status)
	require.NotNil(t, rec.PaidAt)
	assert.Nil(t, rec.NextCheckAt)

	// Untouched fields survive the merge and the rewrite.
	got, err := store.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerLabel)
	assert.True(t, decimal.RequireFromString("100.00").Equal(got.Amount))
}

func TestFileTopUpStore_PatchRejectsTerminalRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	expiredAt := time.Now().UTC().Truncate(time.Second)
	expired := newTestRecord("rec-1", model.TopUpStatusExpired)
	expired.ExpiredAt = &expiredAt
	expired.NextCheckAt = nil
	require.NoError(t, store.Upsert(ctx, expired))

	paidAt := time.Now().UTC()
	status := model.TopUpStatusSucceeded
	rec, err := store.Patch(ctx, "rec-1", model.TopUpPatch{
		Status: &status,
		PaidAt: &paidAt,
	})
	require.Error(t, err)
	var terminal *domainErrors.TerminalStateError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, "rec-1", terminal.ID)
	assert.Equal(t, string(model.TopUpStatusExpired), terminal.Status)
	assert.Nil(t, rec)

	// The snapshot is untouched: still expired, never paid.
	got, err := store.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, model.TopUpStatusExpired, got.Status)
	assert.Nil(t, got.PaidAt)
	require.NotNil(t, got.ExpiredAt)

	// Reservation patches are rejected the same way.
	now := time.Now().UTC()
	_, err = store.Patch(ctx, "rec-1", model.TopUpPatch{LastCheckedAt: &now})
	assert.ErrorAs(t, err, &terminal)
}

func TestFileTopUpStore_ScanOpenFiltersTerminal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	require.NoError(t, store.Upsert(ctx, newTestRecord("pending-1", model.TopUpStatusPending)))
	require.NoError(t, store.Upsert(ctx, newTestRecord("polling-1", model.TopUpStatusPolling)))
	require.NoError(t, store.Upsert(ctx, newTestRecord("done-1", model.TopUpStatusSucceeded)))
	require.NoError(t, store.Upsert(ctx, newTestRecord("expired-1", model.TopUpStatusExpired)))
	require.NoError(t, store.Upsert(ctx, newTestRecord("failed-1", model.TopUpStatusFailed)))

	open, err := store.ScanOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 2)
	assert.Contains(t, open, "pending-1")
	assert.Contains(t, open, "polling-1")
}

func TestFileTopUpStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileTopUpStore(path, zap.NewNop())

	_, err := store.Get(ctx, "rec-1")
	require.Error(t, err)
	var corrupt *domainErrors.StoreCorruptError
	assert.ErrorAs(t, err, &corrupt)
	assert.Equal(t, path, corrupt.Path)

	_, err = store.ScanOpen(ctx)
	assert.ErrorAs(t, err, &corrupt)
}

func TestFileTopUpStore_AtomicWriteLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Upsert(ctx, newTestRecord(
			strings.Repeat("x", i%3+1)+"-"+string(rune('a'+i)), model.TopUpStatusPending)))
	}

	// No temp files left behind, and the committed file is valid JSON.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snapshot map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Len(t, snapshot, 25)
}

func TestFileTopUpStore_PersistedLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payments.json")
	store := NewFileTopUpStore(path, zap.NewNop())

	require.NoError(t, store.Upsert(ctx, newTestRecord("rec-1", model.TopUpStatusPending)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	rec, ok := raw["rec-1"]
	require.True(t, ok, "top-level key must be the record id")

	// Amount is a string-encoded decimal with exactly two fractional
	// digits, timestamps are RFC 3339.
	assert.Equal(t, "100.00", rec["amount"])
	createdAt, ok := rec["created_at"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, createdAt)
	assert.NoError(t, err)
	assert.Nil(t, rec["paid_at"])
}
