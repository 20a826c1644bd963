package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const MaxPhotoSize = 10 << 20

var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

type PhotoUsecase struct {
	storage domain.Storage
	logger  *logger.Logger
}

func NewPhotoUsecase(storage domain.Storage, log *logger.Logger) *PhotoUsecase {
	return &PhotoUsecase{storage: storage, logger: log.Named("photo_usecase")}
}

// UploadPhoto stores an image and returns its public URL.
func (uc *PhotoUsecase) UploadPhoto(ctx context.Context, fileName string, data []byte) (string, error) {
	contentType, ok := photoContentTypes[strings.ToLower(filepath.Ext(fileName))]
	if !ok {
		return "", domain.ErrUnsupportedPhoto
	}
	if len(data) == 0 {
		return "", domain.ErrUnsupportedPhoto
	}
	if len(data) > MaxPhotoSize {
		return "", domain.ErrPhotoTooLarge
	}

	url, err := uc.storage.Upload(ctx, fileName, contentType, data)
	if err != nil {
		uc.logger.Error("Photo upload failed", zap.String("file_name", fileName), zap.Int("size_bytes", len(data)), zap.Error(err))
		return "", fmt.Errorf("PhotoUsecase.UploadPhoto: %w", err)
	}
	return url, nil
}
