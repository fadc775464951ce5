package client

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Submit runs the three-step upload pipeline: request an upload slot, write
// the image bytes directly to the granted storage target, then commit the
// item record. The steps are strictly ordered and any failure short-circuits
// the rest; no partial item is ever visible to the caller. Each call mints a
// fresh item id, so resubmissions are not deduplicated here.
func (c *Client) Submit(ctx context.Context, draft ItemDraft, image *Image) (*SubmitResult, error) {
	// The image is mandatory; fail before any network traffic.
	if image == nil || len(image.Data) == 0 {
		return nil, &ValidationError{Msg: "an image is required to report an item"}
	}
	if image.FileName == "" || image.ContentType == "" {
		return nil, &ValidationError{Msg: "image file name and content type are required"}
	}

	token, err := c.requireToken(ctx)
	if err != nil {
		return nil, err
	}

	// Step 1: request an upload slot.
	slot, err := c.requestSlot(ctx, token, image, draft.ItemType)
	if err != nil {
		return nil, &SlotRequestError{Err: err}
	}

	// Step 2: transfer the bytes straight to storage.
	if err := c.writeToStorage(ctx, slot.UploadURL, image); err != nil {
		return nil, err
	}

	// Step 3: commit the metadata. From here on a failure leaves the uploaded
	// bytes orphaned in storage; the error type says so.
	item, err := c.commitMetadata(ctx, token, draft, slot.FileURL)
	if err != nil {
		return nil, &MetadataCommitError{Err: err}
	}

	return &SubmitResult{ItemID: item.ItemID, Item: item}, nil
}

type uploadSlot struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
}

func (c *Client) requestSlot(ctx context.Context, token string, image *Image, itemType string) (*uploadSlot, error) {
	query := url.Values{}
	query.Set("fileName", image.FileName)
	query.Set("fileType", image.ContentType)
	query.Set("itemType", itemType)

	var slot uploadSlot
	if err := c.getJSON(ctx, "/presigned-url?"+query.Encode(), token, &slot); err != nil {
		return nil, err
	}
	if slot.UploadURL == "" || slot.FileURL == "" {
		return nil, fmt.Errorf("backend returned an incomplete upload slot")
	}
	return &slot, nil
}

// writeToStorage PUTs the image to the pre-authorized target. The target is
// outside the portal API, so errors come back in the storage service's own
// format: XML documents whose Message element carries the diagnostic.
func (c *Client) writeToStorage(ctx context.Context, uploadURL string, image *Image) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image.Data))
	if err != nil {
		return &StorageWriteError{Msg: err.Error()}
	}
	req.Header.Set("Content-Type", image.ContentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &StorageWriteError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return &StorageWriteError{
		StatusCode: resp.StatusCode,
		Msg:        storageErrorMessage(body),
	}
}

// storageErrorMessage extracts the Message field from an XML storage error
// body, falling back to the raw text for anything else.
func storageErrorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "<?xml") && !strings.HasPrefix(text, "<Error") {
		return text
	}
	var doc struct {
		Message string `xml:"Message"`
	}
	if err := xml.Unmarshal(body, &doc); err != nil || doc.Message == "" {
		return text
	}
	return doc.Message
}

func (c *Client) commitMetadata(ctx context.Context, token string, draft ItemDraft, fileURL string) (*Item, error) {
	record := Item{
		ItemID:      uuid.NewString(),
		ItemType:    draft.ItemType,
		ItemName:    draft.ItemName,
		Description: draft.Description,
		Location:    draft.Location,
		CreatedAt:   draft.Date,
		ImageURL:    fileURL,
		Status:      StatusActive,
	}

	var stored Item
	if err := c.postJSON(ctx, "/upload", token, record, &stored); err != nil {
		return nil, err
	}
	// Older deployments answered with an empty body; fall back to the record
	// we sent so callers always get the item id.
	if stored.ItemID == "" {
		stored = record
	}
	return &stored, nil
}
