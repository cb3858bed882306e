package api

import "github.com/starford/dynwidget/internal/widgetservice"

// PathRequest is the request body for focusing or opening a document.
type PathRequest struct {
	Path string `json:"path" example:"Inbox 📥/groceries.md" validate:"required"`
}

// Snapshot is the widget state response (aliased from the service layer).
type Snapshot = widgetservice.Snapshot

// DocumentItem is a listed document (aliased from the service layer).
type DocumentItem = widgetservice.DocumentItem

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []DocumentItem `json:"documents" validate:"required"`
	Total     int            `json:"total" example:"3" validate:"required"`
}

// BucketListResponse wraps the configured buckets.
type BucketListResponse struct {
	Buckets []widgetservice.BucketSummary `json:"buckets" validate:"required"`
}
