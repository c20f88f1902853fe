package pipeline

import (
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusConverting, "converting documents"},
		{StatusMerging, "building master corpus"},
		{StatusGenerating, "generating report"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("report.docx: conversion failed")
	job.AddError("phase risks: timeout")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "report.docx: conversion failed" {
		t.Errorf("unexpected first error %q", snap.Progress.Errors[0])
	}
}

func TestJob_FileProgress(t *testing.T) {
	job := &Job{ID: "files-test", UpdatedAt: time.Now()}
	job.SetTotalFiles(3)
	job.IncrFilesConverted()
	job.IncrFilesConverted()

	snap := job.Snapshot()
	if snap.Progress.TotalFiles != 3 {
		t.Errorf("expected 3 total files, got %d", snap.Progress.TotalFiles)
	}
	if snap.Progress.FilesConverted != 2 {
		t.Errorf("expected 2 files converted, got %d", snap.Progress.FilesConverted)
	}
}

func TestJob_PhaseProgress(t *testing.T) {
	job := &Job{ID: "phase-test", UpdatedAt: time.Now()}
	job.SetPhaseProgress(5, 7)

	snap := job.Snapshot()
	if snap.Progress.PhasesDone != 5 || snap.Progress.TotalPhases != 7 {
		t.Errorf("expected 5/7 phases, got %d/%d", snap.Progress.PhasesDone, snap.Progress.TotalPhases)
	}
}

func TestJob_Report(t *testing.T) {
	job := &Job{ID: "report-test"}
	if job.Report() != "" {
		t.Error("expected empty report before generation")
	}
	job.SetReport("# Equity Research Report: ACME\n")
	if job.Report() != "# Equity Research Report: ACME\n" {
		t.Errorf("unexpected report %q", job.Report())
	}
}

func TestJob_Files(t *testing.T) {
	job := &Job{ID: "data-test"}
	job.SetFiles([]SourceFile{{Name: "a.txt", Data: []byte("file content here")}})
	got := job.Files()
	if len(got) != 1 || got[0].Name != "a.txt" || string(got[0].Data) != "file content here" {
		t.Errorf("unexpected files %+v", got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestNewID_UniqueAndWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ID, got %d (%q)", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}
