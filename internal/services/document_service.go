package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/models"
	pgrepo "github.com/docvault/docvault/internal/repositories/postgres"
	"github.com/docvault/docvault/internal/slug"
	"github.com/docvault/docvault/internal/storage"
	"github.com/docvault/docvault/internal/utils"
)

// staleTempAge is how long a temporary upload file may linger before the
// reconciler considers it abandoned.
const staleTempAge = time.Hour

// UploadResult describes the outcome of a successful upload.
type UploadResult struct {
	DocumentID    uint   `json:"document_id"`
	VersionID     uint   `json:"version_id"`
	Version       int    `json:"version"`
	FilePath      string `json:"file_path"`
	DocumentTitle string `json:"document_title"`
}

// VersionListing bundles a document with its full version history.
type VersionListing struct {
	Document      models.Document          `json:"document"`
	Versions      []models.DocumentVersion `json:"versions"`
	LatestVersion int                      `json:"latest_version"`
}

// DownloadInfo tells the handler what to stream and how to label it.
type DownloadInfo struct {
	AbsPath     string
	Filename    string
	ContentType string
}

type DocumentService interface {
	// Upload stores content as a new document, or as the next version of
	// the existing document whose title matches the sanitized filename.
	Upload(ctx context.Context, uploader *models.User, filename string, description *string, r io.Reader) (*UploadResult, error)
	ListOwned(ctx context.Context, ownerID uint, skip, limit int) ([]models.Document, error)
	ListApplicantDocuments(ctx context.Context, skip, limit int) ([]models.DocumentWithOwner, error)
	Versions(ctx context.Context, viewer *models.User, documentID uint) (*VersionListing, error)
	Download(ctx context.Context, viewer *models.User, documentID uint, version int) (*DownloadInfo, error)
	// Reconcile removes files in the store that no ledger row references,
	// plus abandoned temporary files. It returns how many were removed.
	Reconcile(ctx context.Context) (int, error)
}

type documentService struct {
	docs  pgrepo.DocumentRepository
	users pgrepo.UserRepository
	store storage.BlobStore
	log   *logrus.Logger
}

func NewDocumentService(docs pgrepo.DocumentRepository, users pgrepo.UserRepository, store storage.BlobStore, log *logrus.Logger) DocumentService {
	return &documentService{docs: docs, users: users, store: store, log: log}
}

func (s *documentService) Upload(ctx context.Context, uploader *models.User, filename string, description *string, r io.Reader) (*UploadResult, error) {
	const op = "DocumentService.Upload"

	if filename == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "filename cannot be empty", nil)
	}
	title := slug.Sanitize(filename)
	ext := filepath.Ext(filename)

	// Bytes land in a temp file before any database state is touched, so a
	// storage failure cannot leave a half-committed row.
	tmp, err := s.store.SaveTemp(r, ext)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store uploaded file", err)
	}

	var res UploadResult
	txErr := s.docs.Transaction(ctx, func(tx pgrepo.DocumentRepository) error {
		now := time.Now().UTC()

		var documentID uint
		var version int

		doc, err := tx.ByTitleForUpdate(ctx, title)
		switch {
		case err == nil:
			if doc.OwnerID != uploader.ID {
				return utils.E(utils.CodeForbidden, op, "not authorized to modify this document", nil)
			}
			maxVersion, err := tx.MaxVersion(ctx, doc.ID)
			if err != nil {
				return utils.E(utils.CodeInternal, op, "failed to read version ledger", err)
			}
			version = maxVersion + 1
			if description != nil {
				if err := tx.UpdateDescription(ctx, doc.ID, *description); err != nil {
					return utils.E(utils.CodeInternal, op, "failed to update description", err)
				}
			}
			documentID = doc.ID

		case errors.Is(err, gorm.ErrRecordNotFound):
			newDoc := &models.Document{
				Title:       title,
				Description: description,
				OwnerID:     uploader.ID,
				CreatedAt:   now,
			}
			if err := tx.Create(ctx, newDoc); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return utils.E(utils.CodeConflict, op, "concurrent upload for this title, retry", err)
				}
				return utils.E(utils.CodeInternal, op, "failed to create document", err)
			}
			documentID = newDoc.ID
			version = 1

		default:
			return utils.E(utils.CodeInternal, op, "failed to look up document", err)
		}

		finalName := fmt.Sprintf("%s_v%d_%d%s", title, version, now.Unix(), ext)
		finalPath := s.store.Path(finalName)

		ver := &models.DocumentVersion{
			DocumentID: documentID,
			Version:    version,
			FilePath:   finalPath,
			UploadedAt: now,
		}
		if err := tx.InsertVersion(ctx, ver); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.E(utils.CodeConflict, op, "concurrent upload for this document, retry", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to append version", err)
		}
		if err := tx.UpdateLatestFilePath(ctx, documentID, finalPath); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update latest file pointer", err)
		}

		// The rename is the last step before commit; if it fails every row
		// above rolls back. A commit failure after a successful rename
		// leaves an orphan file which Reconcile removes.
		if _, err := s.store.Promote(tmp, finalName); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to finalize file storage", err)
		}

		res = UploadResult{
			DocumentID:    documentID,
			VersionID:     ver.ID,
			Version:       version,
			FilePath:      finalPath,
			DocumentTitle: title,
		}
		return nil
	})
	if txErr != nil {
		if err := s.store.Remove(tmp); err != nil {
			s.log.WithError(err).WithField("path", tmp).Warn("upload: temp file cleanup failed")
		}
		var ae *utils.AppError
		if errors.As(txErr, &ae) {
			return nil, txErr
		}
		return nil, utils.E(utils.CodeInternal, op, "upload transaction failed", txErr)
	}
	return &res, nil
}

func (s *documentService) ListOwned(ctx context.Context, ownerID uint, skip, limit int) ([]models.Document, error) {
	const op = "DocumentService.ListOwned"

	rows, err := s.docs.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list documents", err)
	}
	return rows, nil
}

func (s *documentService) ListApplicantDocuments(ctx context.Context, skip, limit int) ([]models.DocumentWithOwner, error) {
	const op = "DocumentService.ListApplicantDocuments"

	rows, err := s.docs.ListByOwnerRole(ctx, models.RoleApplicant, skip, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applicant documents", err)
	}
	return rows, nil
}

func (s *documentService) Versions(ctx context.Context, viewer *models.User, documentID uint) (*VersionListing, error) {
	const op = "DocumentService.Versions"

	doc, err := s.visibleDocument(ctx, op, viewer, documentID)
	if err != nil {
		return nil, err
	}

	versions, err := s.docs.VersionsByDocument(ctx, doc.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list versions", err)
	}
	latest := 0
	if len(versions) > 0 {
		latest = versions[0].Version
	}
	return &VersionListing{Document: *doc, Versions: versions, LatestVersion: latest}, nil
}

func (s *documentService) Download(ctx context.Context, viewer *models.User, documentID uint, version int) (*DownloadInfo, error) {
	const op = "DocumentService.Download"

	doc, err := s.visibleDocument(ctx, op, viewer, documentID)
	if err != nil {
		return nil, err
	}

	ver, err := s.docs.VersionByNumber(ctx, doc.ID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, fmt.Sprintf("version %d not found", version), nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up version", err)
	}

	abs, err := s.store.Resolve(ver.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrOutsideStore) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "invalid file path", err)
		}
		// The ledger row exists but the file is gone: a server-side
		// inconsistency, deliberately distinct from NOT_FOUND.
		return nil, utils.E(utils.CodeInternal, op, "file record exists but file is missing from storage", err)
	}

	ct := mime.TypeByExtension(filepath.Ext(abs))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &DownloadInfo{
		AbsPath:     abs,
		Filename:    filepath.Base(abs),
		ContentType: ct,
	}, nil
}

func (s *documentService) Reconcile(ctx context.Context) (int, error) {
	const op = "DocumentService.Reconcile"

	known, err := s.docs.AllFilePaths(ctx)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to read ledger paths", err)
	}
	referenced := make(map[string]struct{}, len(known))
	for _, p := range known {
		referenced[p] = struct{}{}
	}

	removed, err := s.store.RemoveStaleTemp(staleTempAge)
	if err != nil {
		return removed, utils.E(utils.CodeInternal, op, "failed to sweep temp files", err)
	}

	files, err := s.store.List()
	if err != nil {
		return removed, utils.E(utils.CodeInternal, op, "failed to list stored files", err)
	}
	for _, f := range files {
		if strings.HasPrefix(filepath.Base(f), storage.TempPrefix) {
			continue
		}
		if _, ok := referenced[f]; ok {
			continue
		}
		if err := s.store.Remove(f); err != nil {
			s.log.WithError(err).WithField("path", f).Warn("reconcile: orphan removal failed")
			continue
		}
		s.log.WithField("path", f).Info("reconcile: removed orphan file")
		removed++
	}
	return removed, nil
}

// visibleDocument loads a document and enforces the shared visibility rule:
// the owner always sees it, and a recruiter sees it when the owner is an
// applicant.
func (s *documentService) visibleDocument(ctx context.Context, op string, viewer *models.User, documentID uint) (*models.Document, error) {
	doc, err := s.docs.ByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, fmt.Sprintf("document %d not found", documentID), nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up document", err)
	}

	if doc.OwnerID == viewer.ID {
		return doc, nil
	}
	if viewer.Role == models.RoleRecruiter {
		owner, err := s.users.ByID(ctx, doc.OwnerID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to look up document owner", err)
		}
		if owner.Role == models.RoleApplicant {
			return doc, nil
		}
	}
	return nil, utils.E(utils.CodeForbidden, op, "not authorized to view this document", nil)
}
