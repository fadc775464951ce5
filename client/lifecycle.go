package client

import (
	"context"
	"net/url"
	"sync"
)

// Tracker keeps a local view of item statuses and applies confirmed
// transitions. The view only ever moves forward along
// active -> pending_handover -> handed_over; observations that would move an
// item backward are ignored, so a late or stale read cannot regress the view.
type Tracker struct {
	c  *Client
	mu sync.Mutex
	// statuses holds the latest confirmed status per item id.
	statuses map[string]Status
}

func NewTracker(c *Client) *Tracker {
	return &Tracker{
		c:        c,
		statuses: make(map[string]Status),
	}
}

var statusRank = map[Status]int{
	StatusActive:          0,
	StatusPendingHandover: 1,
	StatusHandedOver:      2,
}

// Observe records an item's status as reported by the backend (a listing, a
// resolution, a claim confirmation). Unknown statuses and backward moves are
// discarded.
func (t *Tracker) Observe(item *Item) {
	if item == nil || item.ItemID == "" {
		return
	}
	rank, known := statusRank[item.Status]
	if !known {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.statuses[item.ItemID]; ok && statusRank[current] >= rank {
		return
	}
	t.statuses[item.ItemID] = item.Status
}

// Status returns the locally tracked status for an item.
func (t *Tracker) Status(itemID string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.statuses[itemID]
	return s, ok
}

// ConfirmHandover attests that the physical transfer happened. Only the
// uploader may confirm and the item must be pending handover; the backend
// enforces both. The local view moves to handed_over without a refetch, and
// only after the backend has confirmed - never optimistically before.
func (t *Tracker) ConfirmHandover(ctx context.Context, itemID string) error {
	if itemID == "" {
		return &ValidationError{Msg: "itemId is required"}
	}
	token, err := t.c.requireToken(ctx)
	if err != nil {
		return err
	}

	path := "/item/" + url.PathEscape(itemID) + "/handover-confirm"
	if err := t.c.postJSON(ctx, path, token, struct{}{}, nil); err != nil {
		return err
	}

	t.mu.Lock()
	t.statuses[itemID] = StatusHandedOver
	t.mu.Unlock()
	return nil
}
