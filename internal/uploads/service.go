package uploads

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foundlink/lost-found-portal/portal-backend/pkg/storage"
)

// ErrMissingParams is returned when a slot request omits a required field.
var ErrMissingParams = errors.New("fileName, fileType and itemType are required")

// Slot is a write-capable, time-limited storage target plus the public URL
// the image will be readable from once written.
type Slot struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
}

type Service interface {
	RequestSlot(ctx context.Context, fileName, fileType, itemType string) (*Slot, error)
}

type uploadService struct {
	store         storage.ObjectStore
	publicBaseURL string
	ttl           time.Duration
	logger        *zap.Logger
}

func NewService(store storage.ObjectStore, publicBaseURL string, ttl time.Duration, logger *zap.Logger) Service {
	return &uploadService{
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		ttl:           ttl,
		logger:        logger,
	}
}

func (s *uploadService) RequestSlot(ctx context.Context, fileName, fileType, itemType string) (*Slot, error) {
	if fileName == "" || fileType == "" || itemType == "" {
		return nil, ErrMissingParams
	}

	key := s.generateKey(itemType, fileName)
	uploadURL, err := s.store.PresignPut(ctx, key, fileType, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("presigning upload slot: %w", err)
	}

	s.logger.Info("upload slot issued",
		zap.String("key", key),
		zap.Duration("ttl", s.ttl))

	return &Slot{
		UploadURL: uploadURL,
		FileURL:   s.publicBaseURL + "/" + key,
	}, nil
}

// generateKey namespaces objects by item type and a fresh uuid so concurrent
// uploads of identically named files never collide.
func (s *uploadService) generateKey(itemType, fileName string) string {
	ext := path.Ext(fileName)
	return fmt.Sprintf("uploads/%s/%s%s", itemType, uuid.NewString(), ext)
}
