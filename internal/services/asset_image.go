package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/entities"
	"itad-system/internal/repositories"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/filestorage"
	"itad-system/pkg/utils"
	"itad-system/pkg/validation"
)

const (
	documentTypePhoto = "photo"
	linkTypeAsset     = "asset"
	uploadsURLPrefix  = "/uploads/"
)

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type AssetImageServiceInterface interface {
	ListImages(ctx context.Context, assetID string) ([]dto.AssetImageDTO, error)
	UploadImage(ctx context.Context, assetID string, fileHeader *multipart.FileHeader) (*dto.AssetImageDTO, error)
}

type AssetImageService struct {
	txManager    repositories.TxManagerInterface
	assetRepo    repositories.AssetRepositoryInterface
	documentRepo repositories.DocumentRepositoryInterface
	storage      filestorage.FileStorageInterface
	maxSizeMB    int64
	logger       *zap.Logger
	now          func() time.Time
}

func NewAssetImageService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	documentRepo repositories.DocumentRepositoryInterface,
	storage filestorage.FileStorageInterface,
	maxSizeMB int64,
	logger *zap.Logger,
) AssetImageServiceInterface {
	return &AssetImageService{
		txManager:    txManager,
		assetRepo:    assetRepo,
		documentRepo: documentRepo,
		storage:      storage,
		maxSizeMB:    maxSizeMB,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AssetImageService) ListImages(ctx context.Context, assetID string) ([]dto.AssetImageDTO, error) {
	docs, err := s.documentRepo.ListLinked(ctx, linkTypeAsset, assetID, documentTypePhoto)
	if err != nil {
		s.logger.Error("failed to list asset images", zap.Error(err), zap.String("assetId", assetID))
		return nil, err
	}

	images := make([]dto.AssetImageDTO, 0, len(docs))
	for _, d := range docs {
		images = append(images, toAssetImageDTO(d))
	}
	return images, nil
}

// UploadImage stores the file as <assetId>_<millis>_<sanitized name> and links a photo document to the asset.
func (s *AssetImageService) UploadImage(ctx context.Context, assetID string, fileHeader *multipart.FileHeader) (*dto.AssetImageDTO, error) {
	if fileHeader == nil {
		return nil, apperrors.NewValidationError("No file provided",
			apperrors.FieldIssue{Field: "file", Tag: "required", Message: "file is required"})
	}

	exists, err := s.assetRepo.Exists(ctx, nil, assetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError("Asset not found")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	mimeType, err := validation.ValidateImage(fileHeader, file, s.maxSizeMB)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("%s_%d_%s", assetID, s.now().UnixMilli(), unsafeFileNameChars.ReplaceAllString(fileHeader.Filename, "_"))
	storedName, err := s.storage.Save(file, fileName)
	if err != nil {
		s.logger.Error("failed to store asset image", zap.Error(err), zap.String("fileName", fileName))
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	doc := &entities.Document{
		ID:          uuid.NewString(),
		Name:        fileHeader.Filename,
		Type:        documentTypePhoto,
		StoragePath: storedName,
		MimeType:    mimeType,
		UploadedBy:  utils.PrincipalID(ctx),
	}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.documentRepo.CreateLinked(ctx, tx, doc, linkTypeAsset, assetID)
	})
	if err != nil {
		if delErr := s.storage.Delete(storedName); delErr != nil {
			s.logger.Warn("failed to remove orphaned image", zap.Error(delErr), zap.String("path", storedName))
		}
		s.logger.Error("failed to record asset image", zap.Error(err), zap.String("assetId", assetID))
		return nil, err
	}

	s.logger.Info("asset image uploaded", zap.String("assetId", assetID), zap.String("documentId", doc.ID))
	image := toAssetImageDTO(*doc)
	return &image, nil
}

func toAssetImageDTO(d entities.Document) dto.AssetImageDTO {
	return dto.AssetImageDTO{
		ID:         d.ID,
		Name:       d.Name,
		URL:        uploadsURLPrefix + d.StoragePath,
		MimeType:   d.MimeType,
		UploadedAt: d.UploadedAt.Format(time.RFC3339),
	}
}
