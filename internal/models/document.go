package models

import "time"

// Document is one row per logical document. Title is the sanitized slug
// derived from the first uploaded filename and uniquely identifies the
// document; LatestFilePath always points at the highest version's file.
type Document struct {
	ID             uint      `gorm:"column:id;primaryKey" json:"id"`
	Title          string    `gorm:"column:title;type:varchar(255);uniqueIndex" json:"title"`
	Description    *string   `gorm:"column:description;type:text" json:"description"`
	OwnerID        uint      `gorm:"column:owner_id;index" json:"-"`
	LatestFilePath string    `gorm:"column:latest_file_path;type:varchar(512)" json:"latest_file_path"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	Versions []DocumentVersion `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Document) TableName() string { return "documents" }

// DocumentVersion is an append-only ledger row. Version numbers start at 1
// and are gapless per document; rows are never updated or deleted.
type DocumentVersion struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	DocumentID uint      `gorm:"column:document_id;uniqueIndex:idx_document_version" json:"-"`
	Version    int       `gorm:"column:version;uniqueIndex:idx_document_version" json:"version"`
	FilePath   string    `gorm:"column:file_path;type:varchar(512)" json:"file_path"`
	UploadedAt time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (DocumentVersion) TableName() string { return "document_versions" }

// DocumentWithOwner is the typed read shape for recruiter-facing queries
// that join in the owner's username.
type DocumentWithOwner struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	LatestFilePath string    `json:"latest_file_path"`
	CreatedAt      time.Time `json:"created_at"`
	OwnerUsername  string    `json:"owner_username"`
}
