// Package wordpress provides a DocumentStore backed by the WordPress REST API.
//
// Documents are posts of the configured types, read with context=edit so raw
// content and custom fields (ACF or registered meta) are available. Writes use
// an application password over basic auth.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	perPage      = 100
	maxBodyBytes = 16 << 20
)

// Config holds WordPress connection settings.
type Config struct {
	// BaseURL is the site root, e.g. https://example.com.
	BaseURL string

	// Username and Password are an application password pair.
	Username string
	Password string

	// Types are the post types searched by GetDocument and by
	// FindDocuments when the filter names none.
	Types []string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store reads and updates WordPress posts.
type Store struct {
	apiBase  string
	username string
	password string
	types    []string
	client   *http.Client

	// typeOf remembers which post type an ID belongs to.
	typeOf sync.Map
}

// NewStore creates a WordPress store.
func NewStore(cfg Config) (*Store, error) {
	var missing []string
	if cfg.BaseURL == "" {
		missing = append(missing, "store.wordpress_url")
	}
	if cfg.Username == "" {
		missing = append(missing, "store.wordpress_user")
	}
	if cfg.Password == "" {
		missing = append(missing, "store.wordpress_app_password")
	}
	if len(missing) > 0 {
		return nil, &domain.ConfigurationError{Component: "wordpress", Missing: missing}
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: wordpress url: %w", domain.ErrInvalidInput, err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	types := cfg.Types
	if len(types) == 0 {
		types = []string{"post"}
	}

	return &Store{
		apiBase:  strings.TrimSuffix(cfg.BaseURL, "/") + "/wp-json/wp/v2",
		username: cfg.Username,
		password: cfg.Password,
		types:    types,
		client:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// GetDocument fetches a post by ID from the first configured type that has it.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, _, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) getPost(ctx context.Context, id string) (*domain.Document, string, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return nil, "", fmt.Errorf("%w: wordpress id %q", domain.ErrNotFound, id)
	}

	types := s.types
	if known, ok := s.typeOf.Load(id); ok {
		types = append([]string{known.(string)}, s.types...)
	}

	for _, postType := range types {
		var p post
		err := s.do(ctx, http.MethodGet, s.itemURL(postType, id), nil, &p, nil)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		doc := p.document()
		s.typeOf.Store(id, postType)
		return &doc, postType, nil
	}
	return nil, "", domain.ErrNotFound
}

// FindDocuments lists posts of the filter's types and applies the filter.
func (s *Store) FindDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	types := filter.Types
	if len(types) == 0 {
		types = s.types
	}

	var docs []domain.Document
	for _, postType := range types {
		for page := 1; ; page++ {
			var posts []post
			var header http.Header
			q := url.Values{}
			q.Set("context", "edit")
			q.Set("status", "publish")
			q.Set("per_page", strconv.Itoa(perPage))
			q.Set("page", strconv.Itoa(page))
			q.Set("orderby", "id")
			q.Set("order", "asc")
			if err := s.do(ctx, http.MethodGet, s.collectionURL(postType)+"?"+q.Encode(), nil, &posts, &header); err != nil {
				return nil, fmt.Errorf("list %s page %d: %w", postType, page, err)
			}
			for _, p := range posts {
				doc := p.document()
				s.typeOf.Store(doc.ID, postType)
				if filter.Matches(&doc) {
					docs = append(docs, doc)
				}
			}
			total, _ := strconv.Atoi(header.Get("X-WP-TotalPages"))
			if len(posts) < perPage || page >= total {
				break
			}
		}
	}

	docs = filter.Arrange(docs)
	logger.Debug("WordPress: %d documents of %v match", len(docs), types)
	return docs, nil
}

// GetField returns a custom field of a post.
func (s *Store) GetField(ctx context.Context, id, name string) (string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.Field(name), nil
}

// InsertContent appends fragment to the raw content of a post.
func (s *Store) InsertContent(ctx context.Context, id, fragment string) error {
	doc, postType, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"content": markup.AppendParagraph(doc.Content, fragment),
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	if err := s.do(ctx, http.MethodPost, s.itemURL(postType, id), body, nil, nil); err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	return nil
}

func (s *Store) collectionURL(postType string) string {
	return s.apiBase + "/" + restBase(postType)
}

func (s *Store) itemURL(postType, id string) string {
	return s.collectionURL(postType) + "/" + id + "?context=edit"
}

// restBase maps built-in types to their plural routes.
func restBase(postType string) string {
	switch postType {
	case "post":
		return "posts"
	case "page":
		return "pages"
	default:
		return url.PathEscape(postType)
	}
}

// do sends a request and decodes a JSON response into out.
func (s *Store) do(ctx context.Context, method, target string, body []byte, out any, header *http.Header) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(s.username, s.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wordpress: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrStoreUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: wordpress: %s", domain.ErrStoreUnavailable, apiErrorMessage(resp.StatusCode, data))
	}

	if header != nil {
		*header = resp.Header
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode wordpress response: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

// apiErrorMessage extracts {code, message} from a WordPress error body.
func apiErrorMessage(status int, body []byte) string {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return fmt.Sprintf("status %d: %s (%s)", status, e.Message, e.Code)
	}
	return fmt.Sprintf("status %d", status)
}

// rendered is a WordPress text field with raw and rendered forms.
type rendered struct {
	Raw      string `json:"raw"`
	Rendered string `json:"rendered"`
}

func (r rendered) text() string {
	if r.Raw != "" {
		return r.Raw
	}
	return html.UnescapeString(r.Rendered)
}

type post struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Link        string          `json:"link"`
	ModifiedGMT string          `json:"modified_gmt"`
	Title       rendered        `json:"title"`
	Content     rendered        `json:"content"`
	Excerpt     rendered        `json:"excerpt"`
	Meta        json.RawMessage `json:"meta"`
	ACF         json.RawMessage `json:"acf"`
}

func (p post) document() domain.Document {
	doc := domain.Document{
		ID:        strconv.FormatInt(p.ID, 10),
		Type:      p.Type,
		Title:     p.Title.text(),
		Content:   p.Content.text(),
		Excerpt:   markup.PlainText(p.Excerpt.text(), 0),
		Permalink: p.Link,
		Status:    p.Status,
		Fields:    make(map[string]string),
	}
	if t, err := time.Parse("2006-01-02T15:04:05", p.ModifiedGMT); err == nil {
		doc.UpdatedAt = t.UTC()
	}
	// ACF values win over registered meta with the same name.
	mergeFields(doc.Fields, p.Meta)
	mergeFields(doc.Fields, p.ACF)
	return doc
}

// mergeFields flattens a meta or acf object into string values.
// WordPress sends [] instead of {} when no fields are set.
func mergeFields(dst map[string]string, raw json.RawMessage) {
	var fields map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return
	}
	for k, v := range fields {
		if s := fieldString(v); s != "" {
			dst[k] = s
		}
	}
}

func fieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := fieldString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
