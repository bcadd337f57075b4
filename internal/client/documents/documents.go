// Package documents is the client for the document endpoints of the API.
// Every call goes through the session's decorated HTTP client, so expired
// access credentials are renewed transparently.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
)

const maxErrorBody = 4 << 10

// File is an upload part.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a documents client. hc is expected to be Session.HTTPClient().
func New(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) Create(ctx context.Context, in models.CreateDocumentRequest) (models.Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Document{}, fmt.Errorf("create document: %w: empty title", common.ErrValidation)
	}
	var out models.Document
	err := c.doJSON(ctx, "create document", http.MethodPost, "/documents", in, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id string) (models.Document, error) {
	var out models.Document
	err := c.doJSON(ctx, "get document", http.MethodGet, "/documents/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.Document, error) {
	params := url.Values{}
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	if q.TagKey != "" {
		params.Set("tagKey", q.TagKey)
	}
	if q.TagValue != "" {
		params.Set("tagValue", q.TagValue)
	}

	path := "/documents/search"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []models.Document
	err := c.doJSON(ctx, "search documents", http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) ExpiringSoon(ctx context.Context) ([]models.ExpiringSoon, error) {
	var out []models.ExpiringSoon
	err := c.doJSON(ctx, "expiring documents", http.MethodGet, "/documents/expiring-soon", nil, &out)
	return out, err
}

func (c *Client) Versions(ctx context.Context, id string) ([]models.DocumentVersion, error) {
	var out []models.DocumentVersion
	err := c.doJSON(ctx, "list versions", http.MethodGet, "/documents/"+url.PathEscape(id)+"/versions", nil, &out)
	return out, err
}

// UploadFile replaces the current file of a document.
func (c *Client) UploadFile(ctx context.Context, id string, f File) (models.UploadedFile, error) {
	var out models.UploadedFile
	err := c.upload(ctx, "upload file", "/documents/"+url.PathEscape(id)+"/file", f, &out)
	return out, err
}

// AddVersion uploads f as a new version of a document.
func (c *Client) AddVersion(ctx context.Context, id string, f File) (models.DocumentVersion, error) {
	var out models.DocumentVersion
	err := c.upload(ctx, "add version", "/documents/"+url.PathEscape(id)+"/versions", f, &out)
	return out, err
}

func (c *Client) RevertVersion(ctx context.Context, id string, versionNo int) (models.RevertResult, error) {
	var out models.RevertResult
	path := "/documents/" + url.PathEscape(id) + "/versions/" + strconv.Itoa(versionNo) + "/revert"
	err := c.doJSON(ctx, "revert version", http.MethodPost, path, nil, &out)
	return out, err
}

// Download returns the raw bytes of a document's current file.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	const op = "download"

	resp, err := c.send(ctx, op, http.MethodGet, "/files/"+url.PathEscape(id)+"/download", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// FileViewURL is the address an external viewer loads the file from.
func (c *Client) FileViewURL(id string) string {
	return c.baseURL + "/files/" + url.PathEscape(id) + "/view"
}

// FileThumbnailURL returns the thumbnail address; non-positive sizes fall
// back to 600x400.
func (c *Client) FileThumbnailURL(id string, w, h int) string {
	if w <= 0 {
		w = 600
	}
	if h <= 0 {
		h = 400
	}
	return fmt.Sprintf("%s/files/%s/thumbnail?w=%d&h=%d", c.baseURL, url.PathEscape(id), w, h)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body, contentType = b, "application/json"
	}

	resp, err := c.send(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// upload buffers the multipart body so the request can be replayed after a
// renewal.
func (c *Client) upload(ctx context.Context, op, path string, f File, out any) error {
	if f.Content == nil {
		return fmt.Errorf("%s: %w: no content", op, common.ErrValidation)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("%s: read file: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.send(ctx, op, http.MethodPost, path, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// send issues the request and returns only 2xx responses; everything else is
// converted by mapResponse and the body closed.
func (c *Client) send(ctx context.Context, op, method, path string, body []byte, contentType string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w: %w", op, common.ErrUnavailable, err)
	}

	if err := mapResponse(op, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// mapResponse returns nil for 2xx. For any other status it consumes and
// closes the body and returns a *client.StatusError.
func mapResponse(op string, resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(b))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return client.NewStatusError(op, resp.StatusCode, msg)
}
