package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/documents"
	"github.com/dmitrijs2005/docvault/internal/client/models"
)

const dateLayout = "2006-01-02"

// List prints the documents matching query, or all of them.
func (a *App) List(ctx context.Context, query string) error {
	docs, err := a.docs.Search(ctx, models.SearchQuery{Query: query})
	if err != nil {
		return err
	}

	w := a.output()
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s  %s%s\n", d.ID, d.Title, expirySuffix(d.ExpiresAt))
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	d, err := a.docs.Get(ctx, id)
	if err != nil {
		return err
	}
	versions, err := a.docs.Versions(ctx, id)
	if err != nil {
		return err
	}

	w := a.output()
	fmt.Fprintln(w, "ID:     ", d.ID)
	fmt.Fprintln(w, "Title:  ", d.Title)
	if d.ExpiresAt != nil {
		fmt.Fprintln(w, "Expires:", d.ExpiresAt.Format(dateLayout))
	}
	if d.MimeType != nil && d.FileSize != nil {
		fmt.Fprintf(w, "File:    %s, %d bytes\n", *d.MimeType, *d.FileSize)
	}
	for k, v := range d.Tags {
		fmt.Fprintf(w, "Tag:     %s=%v\n", k, v)
	}
	for _, v := range versions {
		fmt.Fprintf(w, "  v%d  %s  %s\n", v.VersionNo, v.CreatedAt.Format(time.DateTime), v.FilePath)
	}
	return nil
}

// New creates a document, prompting for an optional expiry date and tags.
func (a *App) New(ctx context.Context, title string) error {
	w := a.output()

	in := models.CreateDocumentRequest{Title: title}

	exp, err := getSimpleText(a.reader, "Expires on (YYYY-MM-DD, empty for none)", w)
	if err != nil {
		return err
	}
	if exp != "" {
		t, err := time.Parse(dateLayout, exp)
		if err != nil {
			return fmt.Errorf("invalid date %q", exp)
		}
		in.ExpiresAt = &t
	}

	lines, err := GetMetadata(a.reader, w)
	if err != nil {
		return err
	}
	if in.Tags, err = parseTags(lines); err != nil {
		return err
	}

	d, err := a.docs.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Created", d.ID)
	return nil
}

// Upload sends the file at path as the current version of document id.
func (a *App) Upload(ctx context.Context, id, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}

	up, err := a.docs.UploadFile(ctx, id, documents.File{
		Name:        filepath.Base(path),
		ContentType: ct,
		Content:     f,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.output(), "Uploaded %s (%s, %d bytes)\n", up.Path, up.Mime, up.Size)
	return nil
}

func (a *App) Expiring(ctx context.Context) error {
	items, err := a.docs.ExpiringSoon(ctx)
	if err != nil {
		return err
	}

	w := a.output()
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing expires soon")
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s  %s  %s (%s)\n", it.DocumentID, it.Title, it.ExpiresAt.Format(dateLayout), daysLeft(it.DaysLeft))
	}
	return nil
}

func expirySuffix(t *time.Time) string {
	if t == nil {
		return ""
	}
	return "  (expires " + t.Format(dateLayout) + ")"
}

func daysLeft(n int) string {
	if n == 1 {
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", n)
}
