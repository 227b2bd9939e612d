package snapshot

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/indexdash/internal/types"
)

const (
	idA = "123e4567-e89b-12d3-a456-426614174000"
	idB = "123e4567-e89b-12d3-a456-426614174001"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "snaps"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestSaveGetReadList(t *testing.T) {
	s := newStore(t)
	now := time.Now().UTC()
	older := SnapshotMeta{ID: idA, Series: "ISX60", Metric: "volume", Source: SourceRender, Format: "png", CreatedAt: now.Add(-time.Minute)}
	newer := SnapshotMeta{ID: idB, Series: "ISX15", Metric: "closing_index_value", Source: SourceBrowser, Start: "2023-01-01", CreatedAt: now}

	if err := s.Save(older, []byte("img-a")); err != nil {
		t.Fatalf("Save(older) error = %v", err)
	}
	if err := s.Save(newer, []byte("img-b")); err != nil {
		t.Fatalf("Save(newer) error = %v", err)
	}

	got, err := s.Get(idB)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Series != "ISX15" || got.Format != "png" || got.Start != "2023-01-01" {
		t.Fatalf("Get() = %+v", got)
	}

	data, format, err := s.ReadImage(idA)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if string(data) != "img-a" || format != "png" {
		t.Fatalf("ReadImage() = %q, %q", data, format)
	}

	if err := os.WriteFile(filepath.Join(s.Dir(), "junk.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	list, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != idB || list[1].ID != idA {
		t.Fatalf("List() = %+v; want newest first", list)
	}
}

func TestInvalidAndMissingIDs(t *testing.T) {
	s := newStore(t)
	if _, err := s.Get("../etc/passwd"); types.CodeOf(err) != types.CodeValidation {
		t.Fatalf("Get(bad id) = %v; want VALIDATION", err)
	}
	if err := s.Save(SnapshotMeta{ID: "nope"}, nil); types.CodeOf(err) != types.CodeValidation {
		t.Fatalf("Save(bad id) = %v; want VALIDATION", err)
	}
	if _, err := s.Get(idA); types.CodeOf(err) != types.CodeSnapshotNotFound {
		t.Fatalf("Get(missing) = %v; want SNAPSHOT_NOT_FOUND", err)
	}
	if _, _, err := s.ReadImage(idA); types.CodeOf(err) != types.CodeSnapshotNotFound {
		t.Fatalf("ReadImage(missing) = %v; want SNAPSHOT_NOT_FOUND", err)
	}
	if err := s.Delete(idA); types.CodeOf(err) != types.CodeSnapshotNotFound {
		t.Fatalf("Delete(missing) = %v; want SNAPSHOT_NOT_FOUND", err)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	if err := s.Save(SnapshotMeta{ID: idA, Format: "png"}, []byte("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete(idA); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), idA+".png")); !os.IsNotExist(err) {
		t.Fatalf("image still present: %v", err)
	}
	if _, err := s.Get(idA); types.CodeOf(err) != types.CodeSnapshotNotFound {
		t.Fatalf("Get(after delete) = %v", err)
	}
}

func TestDeleteLogsImageCleanupFailureWhenImageMissing(t *testing.T) {
	dir := t.TempDir()
	store := &Store{dir: dir}
	jsonPath := filepath.Join(dir, idA+".json")

	meta := SnapshotMeta{
		ID:     idA,
		Format: "png",
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if err := os.WriteFile(jsonPath, metaBytes, 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	var buf bytes.Buffer
	oldLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldLogger)
	})

	if err := store.Delete(idA); err != nil {
		t.Fatalf("Delete() = %v; want nil", err)
	}

	if !strings.Contains(buf.String(), "snapshot image cleanup failed") {
		t.Fatalf("expected image cleanup debug log, got %q", buf.String())
	}
}
