package auditlog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRecordAndQueryReport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	log, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer log.Close()

	if err := log.RecordReport(7, 1, 12, "/var/log/flowtrack/thresholded-1.log"); err != nil {
		t.Fatalf("RecordReport: %v", err)
	}
	if err := log.RecordReport(7, 2, 5, "/var/log/flowtrack/thresholded-2.log"); err != nil {
		t.Fatalf("RecordReport: %v", err)
	}

	reports, err := log.ReportsForSession(ctx, 7)
	if err != nil {
		t.Fatalf("ReportsForSession: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].SequenceNumber != 1 || reports[1].SequenceNumber != 2 {
		t.Errorf("reports not ordered by sequence number: %+v", reports)
	}
	if reports[0].Qualifying != 12 {
		t.Errorf("expected qualifying=12, got %d", reports[0].Qualifying)
	}
}

func TestRecordReportUpsert(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	log, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer log.Close()

	if err := log.RecordReport(1, 1, 3, "a.log"); err != nil {
		t.Fatalf("RecordReport: %v", err)
	}
	if err := log.RecordReport(1, 1, 9, "a.log"); err != nil {
		t.Fatalf("RecordReport overwrite: %v", err)
	}

	reports, err := log.ReportsForSession(ctx, 1)
	if err != nil {
		t.Fatalf("ReportsForSession: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report after upsert, got %d", len(reports))
	}
	if reports[0].Qualifying != 9 {
		t.Errorf("expected qualifying updated to 9, got %d", reports[0].Qualifying)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
