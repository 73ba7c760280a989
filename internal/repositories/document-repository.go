package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"itad-system/internal/entities"
)

type DocumentRepositoryInterface interface {
	// CreateLinked inserts the document and a link to (linkType, linkID).
	CreateLinked(ctx context.Context, tx pgx.Tx, doc *entities.Document, linkType, linkID string) error
	ListLinked(ctx context.Context, linkType, linkID, docType string) ([]entities.Document, error)
}

type documentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDocumentRepository(storage *pgxpool.Pool, logger *zap.Logger) DocumentRepositoryInterface {
	return &documentRepository{storage: storage, logger: logger}
}

func (r *documentRepository) CreateLinked(ctx context.Context, tx pgx.Tx, d *entities.Document, linkType, linkID string) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO documents (id, name, type, storage_path, mime_type, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING uploaded_at`,
		d.ID, d.Name, d.Type, d.StoragePath, d.MimeType, d.UploadedBy).Scan(&d.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO document_links (id, document_id, link_type, link_id) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), d.ID, linkType, linkID); err != nil {
		return fmt.Errorf("failed to link document: %w", err)
	}
	return nil
}

func (r *documentRepository) ListLinked(ctx context.Context, linkType, linkID, docType string) ([]entities.Document, error) {
	query, args, err := psql.Select("d.id", "d.name", "d.type", "d.storage_path", "d.mime_type", "d.uploaded_by", "d.uploaded_at").
		From("documents AS d").
		Join("document_links dl ON dl.document_id = d.id").
		Where("dl.link_type = ? AND dl.link_id = ? AND d.type = ?", linkType, linkID, docType).
		OrderBy("d.uploaded_at DESC", "d.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build document query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]entities.Document, 0)
	for rows.Next() {
		var d entities.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.StoragePath, &d.MimeType, &d.UploadedBy, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
