package track

import (
	"path/filepath"
	"testing"

	"assetd/pkg/types"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := New(filepath.Join(t.TempDir(), "track.db"), "model")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestCurrentVersionEmpty(t *testing.T) {
	tr := newTestTracker(t)
	if _, ok := tr.CurrentVersion(); ok {
		t.Fatalf("expected no record")
	}
}

func TestRecordAndReplace(t *testing.T) {
	tr := newTestTracker(t)
	if err := tr.RecordVersion(types.AssetMetadata{VersionID: "1.0", FetchedAtMs: 100, SizeBytes: 200}); err != nil {
		t.Fatalf("record: %v", err)
	}
	meta, ok := tr.CurrentVersion()
	if !ok || meta.VersionID != "1.0" || meta.FetchedAtMs != 100 || meta.SizeBytes != 200 {
		t.Fatalf("unexpected record: %+v ok=%v", meta, ok)
	}
	// one record per slot: recording again replaces
	if err := tr.RecordVersion(types.AssetMetadata{VersionID: "2.0", FetchedAtMs: 300, SizeBytes: 50}); err != nil {
		t.Fatalf("record 2: %v", err)
	}
	meta, _ = tr.CurrentVersion()
	if meta.VersionID != "2.0" || meta.SizeBytes != 50 {
		t.Fatalf("expected replacement, got %+v", meta)
	}
}

func TestForget(t *testing.T) {
	tr := newTestTracker(t)
	_ = tr.RecordVersion(types.AssetMetadata{VersionID: "1.0", FetchedAtMs: 1, SizeBytes: 1})
	if err := tr.Forget(); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, ok := tr.CurrentVersion(); ok {
		t.Fatalf("expected record gone")
	}
}

func TestIsStale(t *testing.T) {
	tr := newTestTracker(t)
	// no record at all
	if !tr.IsStale(1000, 10_000, "1.0") {
		t.Fatalf("empty tracker must be stale")
	}
	_ = tr.RecordVersion(types.AssetMetadata{VersionID: "1.0", FetchedAtMs: 1000, SizeBytes: 10})
	// fresh and matching
	if tr.IsStale(2000, 10_000, "1.0") {
		t.Fatalf("fresh matching record must not be stale")
	}
	// version mismatch
	if !tr.IsStale(2000, 10_000, "2.0") {
		t.Fatalf("version mismatch must be stale")
	}
	// too old
	if !tr.IsStale(20_000, 10_000, "1.0") {
		t.Fatalf("aged-out record must be stale")
	}
	// exactly at max age is still fresh
	if tr.IsStale(11_000, 10_000, "1.0") {
		t.Fatalf("record at exactly max age must not be stale")
	}
}

func TestReconcileDropsMismatchedRecord(t *testing.T) {
	tr := newTestTracker(t)
	_ = tr.RecordVersion(types.AssetMetadata{VersionID: "1.0", FetchedAtMs: 1, SizeBytes: 100})

	// matching disk state keeps the record
	if err := tr.Reconcile(func() (int64, bool) { return 100, true }); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if _, ok := tr.CurrentVersion(); !ok {
		t.Fatalf("matching record must survive")
	}

	// size mismatch (crash between commit and record) drops it
	if err := tr.Reconcile(func() (int64, bool) { return 250, true }); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if _, ok := tr.CurrentVersion(); ok {
		t.Fatalf("mismatched record must be dropped")
	}

	// missing asset also drops a fresh record
	_ = tr.RecordVersion(types.AssetMetadata{VersionID: "1.0", FetchedAtMs: 1, SizeBytes: 100})
	if err := tr.Reconcile(func() (int64, bool) { return 0, false }); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if _, ok := tr.CurrentVersion(); ok {
		t.Fatalf("record without asset must be dropped")
	}
}
