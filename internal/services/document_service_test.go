package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/storage"
	"github.com/docvault/docvault/internal/utils"
)

func uploadString(t *testing.T, e *testEnv, u *models.User, filename string, desc *string, body string) (*UploadResult, error) {
	t.Helper()
	return e.svc.Upload(context.Background(), u, filename, desc, strings.NewReader(body))
}

func strptr(s string) *string { return &s }

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

func TestUploadAssignsSequentialVersions(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)

	var last *UploadResult
	for want := 1; want <= 3; want++ {
		res, err := uploadString(t, e, alice, "report.pdf", nil, "body")
		if err != nil {
			t.Fatalf("upload %d: %v", want, err)
		}
		if res.Version != want {
			t.Fatalf("version = %d, want %d", res.Version, want)
		}
		if res.DocumentTitle != "report" {
			t.Fatalf("title = %q", res.DocumentTitle)
		}

		doc, err := e.docs.ByID(context.Background(), res.DocumentID)
		if err != nil {
			t.Fatalf("ByID: %v", err)
		}
		if doc.LatestFilePath != res.FilePath {
			t.Fatalf("latest_file_path = %q, want %q", doc.LatestFilePath, res.FilePath)
		}
		if _, err := os.Stat(res.FilePath); err != nil {
			t.Fatalf("final file missing: %v", err)
		}
		last = res
	}

	versions, err := e.docs.VersionsByDocument(context.Background(), last.DocumentID)
	if err != nil {
		t.Fatalf("VersionsByDocument: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("got %d versions, want 3", len(versions))
	}
	// Ordered DESC; must be gapless 3,2,1.
	for i, v := range versions {
		if v.Version != 3-i {
			t.Fatalf("versions[%d] = %d, want %d", i, v.Version, 3-i)
		}
	}

	// No temp files may survive successful uploads.
	if n := countFiles(t, e.dir); n != 3 {
		t.Fatalf("upload dir has %d files, want 3", n)
	}
}

func TestUploadSameSlugDifferentPunctuation(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)

	first, err := uploadString(t, e, alice, "cover letter.txt", nil, "v1")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	second, err := uploadString(t, e, alice, "cover...letter.txt", nil, "v2")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if first.DocumentID != second.DocumentID {
		t.Fatal("punctuation variants must resolve to the same document")
	}
	if second.Version != 2 {
		t.Fatalf("version = %d, want 2", second.Version)
	}
}

func TestUploadEmptyFilename(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)

	_, err := uploadString(t, e, alice, "", nil, "body")
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestUploadByNonOwnerForbidden(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)
	bob := e.createUser(t, "bob", models.RoleApplicant)

	res, err := uploadString(t, e, alice, "cv.pdf", nil, "alice cv")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	_, err = uploadString(t, e, bob, "cv.pdf", nil, "bob cv")
	if !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	// Alice's rows are untouched and no new file was persisted.
	versions, err := e.docs.VersionsByDocument(context.Background(), res.DocumentID)
	if err != nil {
		t.Fatalf("VersionsByDocument: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("got %d versions, want 1", len(versions))
	}
	doc, err := e.docs.ByID(context.Background(), res.DocumentID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if doc.LatestFilePath != res.FilePath {
		t.Fatal("latest_file_path changed after rejected upload")
	}
	if n := countFiles(t, e.dir); n != 1 {
		t.Fatalf("upload dir has %d files, want 1", n)
	}
}

func TestUploadDescriptionOverwrite(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)

	res, err := uploadString(t, e, alice, "notes.txt", strptr("first"), "v1")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// No description supplied: the old one stays.
	if _, err := uploadString(t, e, alice, "notes.txt", nil, "v2"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	doc, err := e.docs.ByID(context.Background(), res.DocumentID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if doc.Description == nil || *doc.Description != "first" {
		t.Fatalf("description = %v, want first", doc.Description)
	}

	// Supplied description overwrites.
	if _, err := uploadString(t, e, alice, "notes.txt", strptr("second"), "v3"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	doc, err = e.docs.ByID(context.Background(), res.DocumentID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if doc.Description == nil || *doc.Description != "second" {
		t.Fatalf("description = %v, want second", doc.Description)
	}
}

func TestVersionsVisibility(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)
	bob := e.createUser(t, "bob", models.RoleApplicant)
	rita := e.createUser(t, "rita", models.RoleRecruiter)

	res, err := uploadString(t, e, alice, "cv.pdf", nil, "alice cv")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := e.svc.Versions(context.Background(), alice, res.DocumentID); err != nil {
		t.Fatalf("owner must see versions: %v", err)
	}
	listing, err := e.svc.Versions(context.Background(), rita, res.DocumentID)
	if err != nil {
		t.Fatalf("recruiter must see applicant versions: %v", err)
	}
	if listing.LatestVersion != 1 {
		t.Fatalf("latest = %d, want 1", listing.LatestVersion)
	}

	if _, err := e.svc.Versions(context.Background(), bob, res.DocumentID); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN for other applicant, got %v", err)
	}
	if _, err := e.svc.Versions(context.Background(), alice, 9999); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)

	res, err := uploadString(t, e, alice, "notes.txt", nil, "hello world")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := e.svc.Download(context.Background(), alice, res.DocumentID, 1)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	b, err := os.ReadFile(info.AbsPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "hello world" {
		t.Fatalf("content = %q", b)
	}
	if info.ContentType != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", info.ContentType)
	}

	// Missing version row is NOT_FOUND.
	if _, err := e.svc.Download(context.Background(), alice, res.DocumentID, 42); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for missing version, got %v", err)
	}

	// File deleted out-of-band while the row exists: a server error,
	// distinct from NOT_FOUND.
	if err := os.Remove(res.FilePath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err = e.svc.Download(context.Background(), alice, res.DocumentID, 1)
	if !utils.IsCode(err, utils.CodeInternal) {
		t.Fatalf("expected INTERNAL for missing file, got %v", err)
	}
}

func TestReconcileRemovesOrphansAndStaleTemp(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", models.RoleApplicant)

	res, err := uploadString(t, e, alice, "keep.txt", nil, "kept")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	orphan := filepath.Join(e.dir, "stray_v9_123.txt")
	if err := os.WriteFile(orphan, []byte("orphan"), 0o644); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	staleTemp := filepath.Join(e.dir, storage.TempPrefix+"old.txt")
	if err := os.WriteFile(staleTemp, []byte("temp"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(staleTemp, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	freshTemp := filepath.Join(e.dir, storage.TempPrefix+"fresh.txt")
	if err := os.WriteFile(freshTemp, []byte("temp"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	removed, err := e.svc.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	if _, err := os.Stat(res.FilePath); err != nil {
		t.Fatal("referenced file must survive reconcile")
	}
	if _, err := os.Stat(freshTemp); err != nil {
		t.Fatal("fresh temp file must survive reconcile")
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Fatal("orphan file must be removed")
	}
	if _, err := os.Stat(staleTemp); !os.IsNotExist(err) {
		t.Fatal("stale temp file must be removed")
	}
}
