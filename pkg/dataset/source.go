package dataset

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source opens named dataset objects. A missing object is reported with an
// error matching fs.ErrNotExist regardless of the backing store.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// DirSource reads files from a local directory.
type DirSource struct {
	Root string
	fsys fs.FS
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Root: dir, fsys: os.DirFS(dir)}
}

// Open opens name relative to the root.
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fsys.Open(strings.TrimPrefix(name, "./"))
}

func (s *DirSource) String() string { return "dir:" + s.Root }

// HTTPSource fetches objects below a base URL, the way the browser build
// fetched its static JSON assets.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source for baseURL. A zero timeout keeps the
// client default.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Open issues a GET for name. The caller closes the body.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	u := s.BaseURL + "/" + url.PathEscape(strings.TrimPrefix(name, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, &fs.PathError{Op: "get", Path: name, Err: fs.ErrNotExist}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string { return "http:" + s.BaseURL }
