// Package firestore implements the document store over the Firestore REST API.
package firestore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/brizzai/auth-profile/internal/requester"
	"github.com/brizzai/auth-profile/internal/store"
)

const (
	DefaultBaseURL  = "https://firestore.googleapis.com/v1"
	DefaultDatabase = "(default)"
	DefaultPageSize = 300
)

// Config holds the REST endpoint settings.
type Config struct {
	BaseURL   string
	ProjectID string
	Database  string
	PageSize  int
}

// Store implements store.DocumentStore against a Firestore database.
type Store struct {
	req      *requester.HTTPRequester
	root     string // documents root, relative to the base URL
	pageSize int
}

// New returns a Firestore store. The requester's AuthManager decides how
// requests are authorized, usually with the signed-in user's ID token.
func New(cfg Config, auth requester.AuthManager, opts ...requester.Option) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Store{
		req:      requester.NewHTTPRequester(cfg.BaseURL, auth, opts...),
		root:     fmt.Sprintf("/projects/%s/databases/%s/documents", cfg.ProjectID, cfg.Database),
		pageSize: cfg.PageSize,
	}, nil
}

func (s *Store) collectionPath(collection string) string {
	return s.root + "/" + url.PathEscape(collection)
}

func (s *Store) Create(ctx context.Context, collection string, fields store.Fields) (string, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	var created document
	if _, err := s.req.Do(ctx, http.MethodPost, s.collectionPath(collection), nil, document{Fields: encoded}, &created); err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return path.Base(created.Name), nil
}

// List follows nextPageToken until the collection is exhausted.
func (s *Store) List(ctx context.Context, collection string) ([]store.Document, error) {
	var docs []store.Document
	pageToken := ""
	for {
		q := url.Values{"pageSize": {strconv.Itoa(s.pageSize)}}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page listResponse
		if _, err := s.req.Do(ctx, http.MethodGet, s.collectionPath(collection), q, nil, &page); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, d := range page.Documents {
			fields, err := decodeFields(d.Fields)
			if err != nil {
				return nil, fmt.Errorf("document %s: %w", d.Name, err)
			}
			docs = append(docs, store.Document{ID: path.Base(d.Name), Fields: fields})
		}

		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Close is a no-op; the REST client holds no connections of its own.
func (s *Store) Close(context.Context) error { return nil }
