package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LocalDocumentStore keeps uploaded documents on disk and hands out signed download links
// served by the API itself.
type LocalDocumentStore struct {
	files     *LocalStorage
	signer    *SignedURLSigner
	urlPrefix string
}

// NewLocalDocumentStore wires disk storage with a signer. urlPrefix is the route that
// streams documents back (for example /api/v1/documents).
func NewLocalDocumentStore(files *LocalStorage, signer *SignedURLSigner, urlPrefix string) *LocalDocumentStore {
	return &LocalDocumentStore{files: files, signer: signer, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Put stores the document content under key.
func (s *LocalDocumentStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	_, err := s.files.SaveStream(key, r)
	return err
}

// URL returns a signed link for key.
func (s *LocalDocumentStore) URL(_ context.Context, key string) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Generate("doc", key)
	if err != nil {
		return "", time.Time{}, err
	}
	return fmt.Sprintf("%s/%s", s.urlPrefix, token), expiresAt, nil
}

// Delete removes the stored document.
func (s *LocalDocumentStore) Delete(_ context.Context, key string) error {
	return s.files.Delete(key)
}

// Open validates a download token and opens the referenced document.
func (s *LocalDocumentStore) Open(token string) (*os.File, string, error) {
	_, key, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", err
	}
	file, err := s.files.Open(key)
	if err != nil {
		return nil, "", err
	}
	return file, key, nil
}
