package sweeper

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"foundlink/lost-found-portal/portal-backend/internal/items"
	"foundlink/lost-found-portal/portal-backend/pkg/storage"
)

// Sweeper removes uploads whose metadata commit never happened. The upload
// pipeline deliberately performs no compensating delete when a commit fails,
// so objects can be left behind in the bucket; this janitor reconciles the
// bucket against the items table out-of-band.
type Sweeper struct {
	store  storage.ObjectStore
	repo   items.Repository
	scope  string
	// publicBaseURL is the origin image URLs are built from (uploads.Service
	// joins it with the object key). With path-style addressing it includes the
	// bucket segment, so stripping it is the only correct way back to the key.
	publicBaseURL string
	grace         time.Duration
	logger        *zap.Logger
}

func New(store storage.ObjectStore, repo items.Repository, scope, publicBaseURL string, grace time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:         store,
		repo:          repo,
		scope:         scope,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		grace:         grace,
		logger:        logger,
	}
}

// Run deletes every object under the scope prefix that is older than the
// grace period and referenced by no item. It returns the number of objects
// deleted. The grace period keeps in-flight uploads (slot issued, commit not
// yet attempted) safe from the sweep.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	objects, err := s.store.List(ctx, s.scope)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	list, err := s.repo.ListItems(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(list))
	unmapped := 0
	for _, item := range list {
		if item.ImageURL == "" {
			continue
		}
		key, ok := s.objectKey(item.ImageURL)
		if !ok {
			unmapped++
			continue
		}
		referenced[key] = struct{}{}
	}
	if unmapped > 0 {
		// Items whose URL does not start with the configured base cannot be
		// mapped to keys. Deleting anything would risk live images, so skip
		// the whole sweep until the configuration matches the data.
		s.logger.Warn("skipping sweep: image urls outside the configured public base url",
			zap.Int("unmapped", unmapped),
			zap.String("publicBaseUrl", s.publicBaseURL))
		return 0, nil
	}

	cutoff := time.Now().Add(-s.grace)
	deleted := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			s.logger.Warn("failed to delete orphaned upload",
				zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		s.logger.Info("deleted orphaned upload", zap.String("key", obj.Key))
		deleted++
	}
	return deleted, nil
}

// objectKey maps a public image URL back to its bucket key by stripping the
// configured base URL, the exact inverse of how uploads.Service builds the
// URL. Guessing from the host would break under path-style addressing, where
// the base carries a bucket segment that is not part of the key.
func (s *Sweeper) objectKey(imageURL string) (string, bool) {
	key, ok := strings.CutPrefix(imageURL, s.publicBaseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
