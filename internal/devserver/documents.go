package devserver

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/google/uuid"
)

// expiringWindow is how far ahead /documents/expiring-soon looks.
const expiringWindow = 30 * 24 * time.Hour

type version struct {
	models.DocumentVersion
	content []byte
}

type document struct {
	models.Document
	ownerID  string
	versions []version
	current  int // index into versions, -1 without a file
}

// documentStore is an in-memory, per-owner document repository.
type documentStore struct {
	mu   sync.Mutex
	docs map[string]*document
	now  func() time.Time
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: map[string]*document{}, now: time.Now}
}

func (s *documentStore) create(ownerID string, in models.CreateDocumentRequest) (models.Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Document{}, fmt.Errorf("%w: title is required", common.ErrValidation)
	}

	created := s.now().UTC()
	d := &document{
		Document: models.Document{
			ID:        uuid.NewString(),
			Title:     title,
			FolderID:  in.FolderID,
			ExpiresAt: in.ExpiresAt,
			CreatedAt: &created,
			Tags:      in.Tags,
		},
		ownerID: ownerID,
		current: -1,
	}

	s.mu.Lock()
	s.docs[d.ID] = d
	s.mu.Unlock()
	return d.Document, nil
}

// get returns the document if it exists and belongs to ownerID.
func (s *documentStore) get(ownerID, id string) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(ownerID, id)
	if err != nil {
		return models.Document{}, err
	}
	return d.Document, nil
}

func (s *documentStore) lookup(ownerID, id string) (*document, error) {
	d, ok := s.docs[id]
	if !ok || d.ownerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func (s *documentStore) search(ownerID string, q models.SearchQuery) []models.Document {
	query := strings.ToLower(strings.TrimSpace(q.Query))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Document, 0)
	for _, d := range s.docs {
		if d.ownerID != ownerID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(d.Title), query) {
			continue
		}
		if q.TagKey != "" {
			v, ok := d.Tags[q.TagKey]
			if !ok {
				continue
			}
			if q.TagValue != "" && fmt.Sprint(v) != q.TagValue {
				continue
			}
		}
		out = append(out, d.Document)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (s *documentStore) expiringSoon(ownerID string) []models.ExpiringSoon {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ExpiringSoon, 0)
	for _, d := range s.docs {
		if d.ownerID != ownerID || d.ExpiresAt == nil {
			continue
		}
		left := d.ExpiresAt.Sub(now)
		if left < 0 || left > expiringWindow {
			continue
		}
		out = append(out, models.ExpiringSoon{
			DocumentID: d.ID,
			Title:      d.Title,
			ExpiresAt:  *d.ExpiresAt,
			DaysLeft:   int(math.Ceil(left.Hours() / 24)),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out
}

// addVersion stores content as the newest version and makes it current.
func (s *documentStore) addVersion(ownerID, id, filename, mime string, content []byte) (models.DocumentVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(ownerID, id)
	if err != nil {
		return models.DocumentVersion{}, err
	}

	size := int64(len(content))
	v := version{
		DocumentVersion: models.DocumentVersion{
			VersionNo: len(d.versions) + 1,
			FilePath:  fmt.Sprintf("%s/v%d/%s", d.ID, len(d.versions)+1, filename),
			MimeType:  &mime,
			FileSize:  &size,
			CreatedAt: s.now().UTC(),
		},
		content: content,
	}
	d.versions = append(d.versions, v)
	d.current = len(d.versions) - 1
	d.MimeType = &mime
	d.FileSize = &size

	return v.DocumentVersion, nil
}

func (s *documentStore) versions(ownerID, id string) ([]models.DocumentVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(ownerID, id)
	if err != nil {
		return nil, err
	}
	out := make([]models.DocumentVersion, 0, len(d.versions))
	for _, v := range d.versions {
		out = append(out, v.DocumentVersion)
	}
	return out, nil
}

func (s *documentStore) revert(ownerID, id string, versionNo int) (models.RevertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(ownerID, id)
	if err != nil {
		return models.RevertResult{}, err
	}
	if versionNo < 1 || versionNo > len(d.versions) {
		return models.RevertResult{}, common.ErrorNotFound
	}

	d.current = versionNo - 1
	v := d.versions[d.current]
	d.MimeType = v.MimeType
	d.FileSize = v.FileSize
	return models.RevertResult{CurrentPath: v.FilePath, VersionSetTo: versionNo}, nil
}

// file returns the current file of a document.
func (s *documentStore) file(ownerID, id string) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(ownerID, id)
	if err != nil {
		return "", nil, err
	}
	if d.current < 0 {
		return "", nil, common.ErrorNotFound
	}
	v := d.versions[d.current]
	return *v.MimeType, v.content, nil
}
