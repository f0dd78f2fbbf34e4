package service

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
	"github.com/ecolearn/ecolearn-api/pkg/storage"
)

// FileConfig bounds uploads.
type FileConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// FileService stores uploaded blobs on disk and issues signed download
// tokens so material and resume files are never served by guessable paths.
type FileService struct {
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	config  FileConfig
}

// NewFileService constructs a FileService.
func NewFileService(store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, config FileConfig) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{storage: store, signer: signer, logger: logger, config: config}
}

// Store validates and persists one uploaded file under the given prefix
// ("materials" or "resumes"), returning the generated file id.
func (s *FileService) Store(prefix string, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if s.config.MaxFileSizeBytes > 0 && header.Size > s.config.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}

	contentType := header.Header.Get("Content-Type")
	if len(s.config.AllowedMIMEs) > 0 && !s.mimeAllowed(contentType) {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported content type %q", contentType))
	}

	src, err := header.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer src.Close() //nolint:errcheck

	fileID := uuid.NewString()
	if _, err := s.storage.SaveStream(path.Join(prefix, fileID), src); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	s.logger.Info("file stored",
		zap.String("file_id", fileID),
		zap.String("prefix", prefix),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size))
	return fileID, nil
}

// SignedToken issues a time-limited download token for a stored file.
func (s *FileService) SignedToken(prefix, fileID string) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Generate(fileID, path.Join(prefix, fileID))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return token, expiresAt, nil
}

// Open validates a download token and returns the file handle.
func (s *FileService) Open(token string) (*os.File, string, error) {
	fileID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return file, fileID, nil
}

func (s *FileService) mimeAllowed(contentType string) bool {
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(strings.TrimSpace(allowed), contentType) {
			return true
		}
	}
	return false
}
