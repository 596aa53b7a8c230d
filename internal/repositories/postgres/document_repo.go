package postgres

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docvault/docvault/internal/models"
)

// DocumentRepository is the data-access boundary for the document registry
// (documents table) and version ledger (document_versions table).
type DocumentRepository interface {
	// Transaction runs fn inside one atomic unit of work; every repository
	// call made through tx sees and mutates the same transaction.
	Transaction(ctx context.Context, fn func(tx DocumentRepository) error) error

	ByID(ctx context.Context, id uint) (*models.Document, error)
	// ByTitleForUpdate locks the document row for the rest of the
	// transaction so two concurrent uploads to one title serialize.
	ByTitleForUpdate(ctx context.Context, title string) (*models.Document, error)
	Create(ctx context.Context, d *models.Document) error
	UpdateDescription(ctx context.Context, id uint, description string) error
	UpdateLatestFilePath(ctx context.Context, id uint, path string) error

	MaxVersion(ctx context.Context, documentID uint) (int, error)
	InsertVersion(ctx context.Context, v *models.DocumentVersion) error
	VersionsByDocument(ctx context.Context, documentID uint) ([]models.DocumentVersion, error)
	VersionByNumber(ctx context.Context, documentID uint, version int) (*models.DocumentVersion, error)

	ListByOwner(ctx context.Context, ownerID uint, skip, limit int) ([]models.Document, error)
	ListByOwnerRole(ctx context.Context, role models.Role, skip, limit int) ([]models.DocumentWithOwner, error)
	SearchOwnedMetadata(ctx context.Context, ownerID uint, query string, skip, limit int) ([]models.Document, error)
	SearchRoleMetadata(ctx context.Context, role models.Role, query string, skip, limit int) ([]models.DocumentWithOwner, error)

	AllFilePaths(ctx context.Context) ([]string, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Transaction(ctx context.Context, fn func(tx DocumentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&documentRepo{db: tx})
	})
}

func (r *documentRepo) ByID(ctx context.Context, id uint) (*models.Document, error) {
	var row models.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *documentRepo) ByTitleForUpdate(ctx context.Context, title string) (*models.Document, error) {
	q := r.db.WithContext(ctx).Where("title = ?", title)
	// sqlite (tests) has no row locks; its single-writer model serializes anyway.
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row models.Document
	if err := q.Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *documentRepo) Create(ctx context.Context, d *models.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) UpdateDescription(ctx context.Context, id uint, description string) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Update("description", description).Error
}

func (r *documentRepo) UpdateLatestFilePath(ctx context.Context, id uint, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Update("latest_file_path", path).Error
}

func (r *documentRepo) MaxVersion(ctx context.Context, documentID uint) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Select("MAX(version)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

func (r *documentRepo) InsertVersion(ctx context.Context, v *models.DocumentVersion) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *documentRepo) VersionsByDocument(ctx context.Context, documentID uint) ([]models.DocumentVersion, error) {
	var rows []models.DocumentVersion
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version DESC").
		Find(&rows).Error
	return rows, err
}

func (r *documentRepo) VersionByNumber(ctx context.Context, documentID uint, version int) (*models.DocumentVersion, error) {
	var row models.DocumentVersion
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND version = ?", documentID, version).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID uint, skip, limit int) ([]models.Document, error) {
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *documentRepo) ListByOwnerRole(ctx context.Context, role models.Role, skip, limit int) ([]models.DocumentWithOwner, error) {
	var rows []models.DocumentWithOwner
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Select("documents.id, documents.title, documents.description, documents.latest_file_path, documents.created_at, users.username AS owner_username").
		Joins("JOIN users ON users.id = documents.owner_id").
		Where("users.role = ?", role).
		Order("documents.created_at DESC").
		Offset(skip).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *documentRepo) SearchOwnedMetadata(ctx context.Context, ownerID uint, query string, skip, limit int) ([]models.Document, error) {
	pattern := likePattern(query)
	var rows []models.Document
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("title ASC").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *documentRepo) SearchRoleMetadata(ctx context.Context, role models.Role, query string, skip, limit int) ([]models.DocumentWithOwner, error) {
	pattern := likePattern(query)
	var rows []models.DocumentWithOwner
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Select("documents.id, documents.title, documents.description, documents.latest_file_path, documents.created_at, users.username AS owner_username").
		Joins("JOIN users ON users.id = documents.owner_id").
		Where("users.role = ?", role).
		Where("(LOWER(documents.title) LIKE ? OR LOWER(documents.description) LIKE ?)", pattern, pattern).
		Order("documents.title ASC").
		Offset(skip).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *documentRepo) AllFilePaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&models.DocumentVersion{}).
		Pluck("file_path", &paths).Error
	return paths, err
}

func likePattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}
