package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type FileStorageInterface interface {
	Save(file io.Reader, fileName string) (filePath string, err error)
	Delete(filePath string) error
	BasePath() string
}

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalFileStorage{basePath: basePath}, nil
}

func (s *LocalFileStorage) BasePath() string { return s.basePath }

// Save writes file under the exact fileName and returns the path relative to the base directory.
func (s *LocalFileStorage) Save(file io.Reader, fileName string) (string, error) {
	name := filepath.Base(fileName)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}

	dst, err := os.OpenFile(filepath.Join(s.basePath, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Delete accepts either a relative path or a public "/uploads/..." URL.
func (s *LocalFileStorage) Delete(fileURL string) error {
	relativePath := strings.TrimPrefix(fileURL, "/uploads/")
	fullPath := filepath.Join(s.basePath, filepath.Base(relativePath))

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}
