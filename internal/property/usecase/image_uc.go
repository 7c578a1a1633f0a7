package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

// MaxImageSize is the per-file upload limit.
const MaxImageSize = 5 << 20 // 5 MB

// UploadFile is one file from a multipart upload request.
type UploadFile struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

// ImageUsecase validates and persists uploaded listing images. A call
// is atomic: if any file in the batch fails validation, nothing is
// written.
type ImageUsecase struct {
	storage domain.ImageStorage
	logger  *zap.Logger
}

func NewImageUsecase(storage domain.ImageStorage, logger *zap.Logger) *ImageUsecase {
	return &ImageUsecase{storage: storage, logger: logger}
}

// Upload stores up to MaxImagesPerProperty files and returns one public
// URL per file, in input order.
func (uc *ImageUsecase) Upload(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", domain.ErrValidation)
	}
	if len(files) > domain.MaxImagesPerProperty {
		return nil, fmt.Errorf("%w: at most %d images per upload, got %d",
			domain.ErrValidation, domain.MaxImagesPerProperty, len(files))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, fmt.Errorf("%w: %s is not an image (%s)", domain.ErrValidation, f.Filename, f.ContentType)
		}
		if len(f.Data) > MaxImageSize {
			return nil, fmt.Errorf("%w: %s exceeds the %d byte limit", domain.ErrValidation, f.Filename, MaxImageSize)
		}
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		name := generateFilename(f.FieldName, f.Filename)
		url, err := uc.storage.Save(ctx, name, f.Data, f.ContentType)
		if err != nil {
			uc.logger.Error("image save failed", zap.String("filename", name), zap.Error(err))
			return nil, err
		}
		uc.logger.Info("image stored", zap.String("filename", name), zap.Int("size_bytes", len(f.Data)))
		urls = append(urls, url)
	}
	return urls, nil
}

func (uc *ImageUsecase) Delete(ctx context.Context, filename string) error {
	if err := uc.storage.Delete(ctx, filename); err != nil {
		return err
	}
	uc.logger.Info("image deleted", zap.String("filename", filename))
	return nil
}

// generateFilename builds a collision-resistant name from the form
// field, a timestamp and a random suffix, keeping the original
// extension. Concurrent uploads never lock; uniqueness comes from the
// name itself.
func generateFilename(field, original string) string {
	if field == "" {
		field = "images"
	}
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
