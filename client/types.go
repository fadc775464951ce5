package client

// Status mirrors the backend's item lifecycle states.
type Status string

const (
	StatusActive          Status = "active"
	StatusPendingHandover Status = "pending_handover"
	StatusHandedOver      Status = "handed_over"
)

// Item is the client-side view of a reported item. Party identities are
// populated only when the backend considers the caller entitled to them.
type Item struct {
	ItemID          string `json:"itemId"`
	ItemType        string `json:"itemType"`
	ItemName        string `json:"itemName"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	CreatedAt       string `json:"createdAt"`
	ImageURL        string `json:"imageUrl"`
	Status          Status `json:"status"`
	UploaderID      string `json:"uploaderId,omitempty"`
	ClaimedByUserID string `json:"claimedByUserId,omitempty"`
}

// ItemDraft is what the reporter fills in before submitting; everything else
// on the stored item is derived during the upload pipeline.
type ItemDraft struct {
	ItemType    string
	ItemName    string
	Description string
	Location    string
	// Date the item was lost or found, as entered by the reporter.
	Date string
}

// Image is the photo attached to a report.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SubmitResult is the outcome of a successful upload pipeline run.
type SubmitResult struct {
	ItemID string
	Item   *Item
}

// ClaimResult is the backend's claim confirmation.
type ClaimResult struct {
	Message string `json:"message"`
	Item    *Item  `json:"item"`
}
