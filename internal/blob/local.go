// Package blob хранит загруженные изображения обращений на локальном диске.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shenikar/civic_issue_tracker/internal/apperrors"
)

// allowedTypes - форматы изображений, которые принимает хранилище
var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// LocalStore хранит файлы в каталоге; хендл файла - его имя внутри каталога
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore создает каталог хранилища, если его еще нет
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Store проверяет содержимое по сигнатуре и записывает файл атомарно (временный файл + rename).
// Заявленный клиентом contentType не учитывается: тип определяется по байтам.
func (s *LocalStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", apperrors.Validation("image", "must not be empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", apperrors.Validation("image", "must not exceed %d bytes", s.maxBytes)
	}

	detected := mimetype.Detect(data)
	if !isAllowed(detected) {
		return "", apperrors.Validation("image", "unsupported content type %q (declared %q)", detected.String(), contentType)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	handle := uuid.NewString() + detected.Extension()
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, handle)); err != nil {
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}
	return handle, nil
}

// Delete удаляет файл по хендлу; отсутствие файла не считается ошибкой
func (s *LocalStore) Delete(ctx context.Context, handle string) error {
	if err := validHandle(handle); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, handle)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image %s: %w", handle, err)
	}
	return nil
}

func isAllowed(m *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}

func validHandle(handle string) error {
	if handle == "" || handle == "." || handle == ".." ||
		strings.ContainsAny(handle, `/\`) || filepath.Base(handle) != handle {
		return apperrors.Validation("image", "invalid image handle %q", handle)
	}
	return nil
}
