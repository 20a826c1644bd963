package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadPhoto(t *testing.T) {
	ctx := context.Background()
	img := []byte("\x89PNG fake")

	tests := []struct {
		name     string
		fileName string
		data     []byte
		wantErr  error
	}{
		{"unsupported extension", "notes.pdf", img, domain.ErrUnsupportedPhoto},
		{"missing extension", "photo", img, domain.ErrUnsupportedPhoto},
		{"empty file", "a.png", nil, domain.ErrUnsupportedPhoto},
		{"too large", "big.jpg", bytes.Repeat([]byte{1}, MaxPhotoSize+1), domain.ErrPhotoTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := new(MockStorage)
			uc := NewPhotoUsecase(storage, logger.NewNop())
			_, err := uc.UploadPhoto(ctx, tt.fileName, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
			storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("stores with content type", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Upload", ctx, "Lamp.JPEG", "image/jpeg", img).Return("http://minio/bucket/photos/x.JPEG", nil).Once()
		uc := NewPhotoUsecase(storage, logger.NewNop())

		url, err := uc.UploadPhoto(ctx, "Lamp.JPEG", img)
		require.NoError(t, err)
		assert.Equal(t, "http://minio/bucket/photos/x.JPEG", url)
		storage.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Upload", ctx, "a.gif", "image/gif", img).Return("", errors.New("bucket gone")).Once()
		uc := NewPhotoUsecase(storage, logger.NewNop())

		_, err := uc.UploadPhoto(ctx, "a.gif", img)
		assert.Error(t, err)
	})
}
