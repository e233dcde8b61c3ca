package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/cvdraft/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLatestEmpty(t *testing.T) {
	db := testDB(t)
	if _, err := db.Latest(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordAndList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"resume_a", "resume_b", "resume_c"} {
		err := db.Record(ctx, Receipt{
			ResumeID:   id,
			Message:    "Resume saved successfully",
			FullName:   "Ada",
			Checksum:   "cs-" + id,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	list, err := db.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ResumeID != "resume_c" || list[1].ResumeID != "resume_b" {
		t.Fatalf("list = %+v", list)
	}

	latest, err := db.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Checksum != "cs-resume_c" {
		t.Errorf("latest = %+v", latest)
	}
}

func TestRecordSameIDKeepsNewer(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Record(ctx, Receipt{ResumeID: "r1", Checksum: "old"})
	_ = db.Record(ctx, Receipt{ResumeID: "r1", Checksum: "new"})

	list, err := db.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != "new" {
		t.Errorf("list = %+v", list)
	}
}
