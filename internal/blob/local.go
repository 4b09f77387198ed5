package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileScheme = "file"

// LocalStore keeps attachment files in one directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(ctx context.Context, filename string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", 0, fmt.Errorf("failed to create attachments directory: %w", err)
	}

	path := filepath.Join(s.dir, objectName(filename))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create attachment file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write attachment: %w", err)
	}
	return pathURI(path), n, nil
}

func (s *LocalStore) Delete(ctx context.Context, uri string) error {
	path, err := s.resolve(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns a reader for the content behind uri.
func (s *LocalStore) Open(uri string) (*os.File, error) {
	path, err := s.resolve(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	uris := []string{}
	for _, de := range dirEntries {
		if de.Type().IsRegular() {
			uris = append(uris, pathURI(filepath.Join(s.dir, de.Name())))
		}
	}
	sort.Strings(uris)
	return uris, nil
}

func (s *LocalStore) Owns(uri string) bool {
	_, err := s.resolve(uri)
	return err == nil
}

// resolve maps a file:// URI to a path, refusing anything outside the store directory.
func (s *LocalStore) resolve(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != fileScheme {
		return "", fmt.Errorf("not a local attachment URI: %s", uri)
	}

	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", err
	}
	path := filepath.Clean(filepath.FromSlash(u.Path))
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("attachment %s is outside %s", uri, s.dir)
	}
	return path, nil
}

func pathURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: fileScheme, Path: filepath.ToSlash(path)}).String()
}
