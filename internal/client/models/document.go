package models

import "time"

// Document is a stored document's metadata as returned by the API.
type Document struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	FolderID  *string        `json:"folderId,omitempty"`
	MimeType  *string        `json:"mimeType,omitempty"`
	FileSize  *int64         `json:"fileSize,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
	Tags      map[string]any `json:"tags,omitempty"`
}

// DocumentVersion is one uploaded revision of a document's file.
type DocumentVersion struct {
	VersionNo int       `json:"versionNo"`
	FilePath  string    `json:"filePath"`
	MimeType  *string   `json:"mimeType,omitempty"`
	FileSize  *int64    `json:"fileSize,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateDocumentRequest struct {
	Title     string         `json:"title"`
	FolderID  *string        `json:"folderId,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	Tags      map[string]any `json:"tags,omitempty"`
}

// ExpiringSoon is an entry of GET /documents/expiring-soon.
type ExpiringSoon struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	ExpiresAt  time.Time `json:"expiresAt"`
	DaysLeft   int       `json:"daysLeft"`
}

// UploadedFile is the response of POST /documents/{id}/file.
type UploadedFile struct {
	Path string `json:"path"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

// RevertResult is the response of POST /documents/{id}/versions/{n}/revert.
type RevertResult struct {
	CurrentPath  string `json:"currentPath"`
	VersionSetTo int    `json:"versionSetTo"`
}

// SearchQuery filters GET /documents/search. Empty fields are omitted.
type SearchQuery struct {
	Query    string
	TagKey   string
	TagValue string
}
