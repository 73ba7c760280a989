package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "itad-system/pkg/errors"
)

// ValidateImage checks the size and the sniffed content type of an upload and returns the detected MIME type.
func ValidateImage(fileHeader *multipart.FileHeader, file io.ReadSeeker, maxSizeMB int64) (string, error) {
	if maxSizeMB > 0 && fileHeader.Size > maxSizeMB*1024*1024 {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("File too large. Maximum size is %dMB", maxSizeMB),
			apperrors.FieldIssue{Field: "file", Tag: "max", Message: fmt.Sprintf("must be at most %dMB", maxSizeMB)},
		)
	}

	// the declared Content-Type is client-controlled; trust the bytes instead
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperrors.NewValidationError(
			"Only image files are allowed",
			apperrors.FieldIssue{Field: "file", Tag: "image", Message: "detected type " + mtype.String()},
		)
	}
	return mtype.String(), nil
}
