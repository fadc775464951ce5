package items

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foundlink/lost-found-portal/portal-backend/pkg/lifecycle"
)

// codeTTL bounds a verification code's life in the codes table. Codes are
// short-lived mappings, not durable state; the claim itself lives on the item.
const codeTTL = 30 * 24 * time.Hour

type Service interface {
	CommitItem(ctx context.Context, req CommitRequest) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListUploaded(ctx context.Context, userID string) ([]Item, error)
	ListClaimed(ctx context.Context, userID string) ([]Item, error)

	GenerateCode(ctx context.Context, itemID, callerID string) (string, error)
	Resolve(ctx context.Context, code, callerID string) (*Item, error)
	Claim(ctx context.Context, code, callerID string) (*Item, error)
	ConfirmHandover(ctx context.Context, itemID, callerID string) (*Item, error)
}

// CommitRequest is the metadata-commit payload: the record the reporter built
// client-side after the image reached storage.
type CommitRequest struct {
	ItemID      string   `json:"itemId" binding:"required"`
	ItemType    ItemType `json:"itemType" binding:"required"`
	ItemName    string   `json:"itemName" binding:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	CreatedAt   string   `json:"createdAt"`
	ImageURL    string   `json:"imageUrl" binding:"required"`
	UploaderID  string   `json:"-"`
}

type itemService struct {
	repo   Repository
	sm     *lifecycle.StateMachine
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &itemService{
		repo:   repo,
		sm:     lifecycle.NewStateMachine(),
		logger: logger,
	}
}

func (s *itemService) CommitItem(ctx context.Context, req CommitRequest) (*Item, error) {
	if !ValidType(req.ItemType) {
		return nil, ErrInvalidItemType
	}

	item := &Item{
		ItemID:      req.ItemID,
		ItemType:    req.ItemType,
		ItemName:    req.ItemName,
		Description: req.Description,
		Location:    req.Location,
		CreatedAt:   req.CreatedAt,
		ImageURL:    req.ImageURL,
		// Whatever the payload said, a fresh record starts active and belongs
		// to the authenticated caller.
		Status:     lifecycle.StatusActive,
		UploaderID: req.UploaderID,
		ReportedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item committed",
		zap.String("itemId", item.ItemID),
		zap.String("itemType", string(item.ItemType)))
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context) ([]Item, error) {
	list, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	// The public gallery never exposes party identities.
	sanitized := make([]Item, len(list))
	for i, item := range list {
		sanitized[i] = item.Sanitized("")
	}
	return sanitized, nil
}

func (s *itemService) ListUploaded(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.ListByUploader(ctx, userID)
}

func (s *itemService) ListClaimed(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.ListByClaimant(ctx, userID)
}

func (s *itemService) GenerateCode(ctx context.Context, itemID, callerID string) (string, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", ErrItemNotFound
	}
	if item.UploaderID != callerID {
		return "", ErrNotUploader
	}

	// Minting is not idempotent: each call issues a fresh code and earlier
	// ones stay live until their TTL. The claim compare-and-set keys on item
	// status, so concurrent claims through different codes still produce at
	// most one winner.
	now := time.Now().UTC()
	code := &VerificationCode{
		Code:      uuid.NewString(),
		ItemID:    itemID,
		IssuedBy:  callerID,
		IssuedAt:  now,
		ExpiresAt: now.Add(codeTTL).Unix(),
	}
	if err := s.repo.PutCode(ctx, code); err != nil {
		return "", err
	}

	s.logger.Info("verification code issued", zap.String("itemId", itemID))
	return code.Code, nil
}

func (s *itemService) Resolve(ctx context.Context, code, callerID string) (*Item, error) {
	vc, err := s.repo.GetCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if vc == nil {
		return nil, ErrCodeNotFound
	}

	item, err := s.repo.GetItem(ctx, vc.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	view := item.Sanitized(callerID)
	return &view, nil
}

func (s *itemService) Claim(ctx context.Context, code, callerID string) (*Item, error) {
	vc, err := s.repo.GetCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if vc == nil {
		return nil, ErrCodeNotFound
	}

	item, err := s.repo.GetItem(ctx, vc.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.UploaderID == callerID {
		return nil, ErrOwnItem
	}
	if err := s.checkTransition(item.Status, lifecycle.StatusPendingHandover); err != nil {
		return nil, err
	}

	claimed, err := s.repo.ClaimItem(ctx, vc.ItemID, callerID)
	if errors.Is(err, ErrConditionFailed) {
		// Lost the race: someone else moved the item between our read and the
		// conditional write. Re-read so the caller gets the precise conflict.
		return nil, s.conflictAfterLostRace(ctx, vc.ItemID, lifecycle.StatusPendingHandover)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("item claimed",
		zap.String("itemId", claimed.ItemID),
		zap.String("status", string(claimed.Status)))
	return claimed, nil
}

func (s *itemService) ConfirmHandover(ctx context.Context, itemID, callerID string) (*Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.UploaderID != callerID {
		return nil, ErrNotUploader
	}
	if err := s.checkTransition(item.Status, lifecycle.StatusHandedOver); err != nil {
		return nil, err
	}

	confirmed, err := s.repo.ConfirmHandover(ctx, itemID, callerID)
	if errors.Is(err, ErrConditionFailed) {
		return nil, s.conflictAfterLostRace(ctx, itemID, lifecycle.StatusHandedOver)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("handover confirmed", zap.String("itemId", confirmed.ItemID))
	return confirmed, nil
}

// checkTransition maps a disallowed lifecycle move to the caller-facing error.
func (s *itemService) checkTransition(from lifecycle.Status, to lifecycle.Status) error {
	if s.sm.CanTransition(from, to) {
		return nil
	}
	switch from {
	case lifecycle.StatusHandedOver:
		return ErrAlreadyHandedOver
	case lifecycle.StatusPendingHandover:
		if to == lifecycle.StatusPendingHandover {
			return ErrAlreadyClaimed
		}
		return ErrInvalidState
	default:
		return ErrInvalidState
	}
}

func (s *itemService) conflictAfterLostRace(ctx context.Context, itemID string, attempted lifecycle.Status) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil || item == nil {
		return ErrItemNotFound
	}
	if err := s.checkTransition(item.Status, attempted); err != nil {
		return err
	}
	// State says the transition should have worked; the condition failure must
	// have been an ownership mismatch.
	return ErrNotUploader
}
