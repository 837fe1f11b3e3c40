package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"spclub/api/internal/config"
	"spclub/api/internal/ids"
	"spclub/api/internal/media/sniffer"
	"spclub/api/internal/storage"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// UploadService stores applicant documents and news images in the object
// store and hands back public URLs. Files are checked for size and actual
// MIME type; anything beyond that is out of scope here.
type UploadService struct {
	store *storage.ObjectStore
	cfg   config.StorageConfig
	log   zerolog.Logger
}

func NewUploadService(store *storage.ObjectStore, cfg config.StorageConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

// SaveDocument uploads one registration document (portrait photo or aadhar
// side) and returns its URL. kind becomes part of the object key.
func (s *UploadService) SaveDocument(ctx context.Context, kind string, header *multipart.FileHeader) (string, error) {
	return s.save(ctx, s.store.DocumentsBucket(), kind, header)
}

// SaveNewsImage uploads one news article image and returns its URL.
func (s *UploadService) SaveNewsImage(ctx context.Context, header *multipart.FileHeader) (string, error) {
	return s.save(ctx, s.store.NewsBucket(), "news", header)
}

func (s *UploadService) save(ctx context.Context, bucket string, kind string, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", ErrUnsupportedFile
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	data := buf.Bytes()

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", ErrUnsupportedFile
	}

	if declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header)); declared != "" && declared != result.MIME {
		return "", fmt.Errorf("%w: declared %s, actual %s", ErrUnsupportedFile, declared, result.MIME)
	}

	objectKey := s.buildObjectKey(kind, string(result.Type))
	url, err := s.store.Put(ctx, bucket, objectKey, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return "", err
	}

	s.log.Debug().
		Str("bucket", bucket).
		Str("object_key", objectKey).
		Int("size", len(data)).
		Msg("file uploaded")
	return url, nil
}

func (s *UploadService) buildObjectKey(kind string, ext string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s-%s.%s", kind, ids.New(), ext))
}
