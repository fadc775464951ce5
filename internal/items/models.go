package items

import (
	"time"

	"foundlink/lost-found-portal/portal-backend/pkg/lifecycle"
)

type ItemType string

const (
	TypeLost  ItemType = "lost"
	TypeFound ItemType = "found"
)

// Item is a reported lost or found item. CreatedAt is the date the item was
// lost or found as entered by the reporter, not the record's creation time;
// ReportedAt carries the latter.
type Item struct {
	ItemID          string           `json:"itemId" dynamodbav:"itemId"`
	ItemType        ItemType         `json:"itemType" dynamodbav:"itemType"`
	ItemName        string           `json:"itemName" dynamodbav:"itemName"`
	Description     string           `json:"description" dynamodbav:"description"`
	Location        string           `json:"location" dynamodbav:"location"`
	CreatedAt       string           `json:"createdAt" dynamodbav:"createdAt"`
	ImageURL        string           `json:"imageUrl" dynamodbav:"imageUrl"`
	Status          lifecycle.Status `json:"status" dynamodbav:"status"`
	UploaderID      string           `json:"uploaderId,omitempty" dynamodbav:"uploaderId"`
	ClaimedByUserID string           `json:"claimedByUserId,omitempty" dynamodbav:"claimedByUserId,omitempty"`
	ReportedAt      time.Time        `json:"reportedAt" dynamodbav:"reportedAt"`
}

// VerificationCode maps an opaque single-use code to an item. ExpiresAt is a
// Unix timestamp used as the codes table's TTL attribute, so stale codes age
// out of storage without an explicit revocation step.
type VerificationCode struct {
	Code      string    `json:"code" dynamodbav:"code"`
	ItemID    string    `json:"itemId" dynamodbav:"itemId"`
	IssuedBy  string    `json:"issuedBy" dynamodbav:"issuedBy"`
	IssuedAt  time.Time `json:"issuedAt" dynamodbav:"issuedAt"`
	ExpiresAt int64     `json:"expiresAt" dynamodbav:"expiresAt"`
}

// Sanitized returns a copy of the item with party identities stripped unless
// the caller is one of the parties. The backend decides how much state a
// resolver may see; anonymous callers get the public view.
func (i Item) Sanitized(callerID string) Item {
	if callerID != "" && (callerID == i.UploaderID || callerID == i.ClaimedByUserID) {
		return i
	}
	i.UploaderID = ""
	i.ClaimedByUserID = ""
	return i
}

// ValidType reports whether t is a known item type.
func ValidType(t ItemType) bool {
	return t == TypeLost || t == TypeFound
}
