package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// signedURLTTL limits how long a generated read link stays valid.
const signedURLTTL = 5 * time.Minute

type AttachmentStore struct {
	client *storage.Client
	bucket string
}

type AttachmentStoreInterface interface {
	Upload(ctx context.Context, blobName, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, blobName string) error
	SignedURL(blobName string) (string, error)
}

var _ AttachmentStoreInterface = (*AttachmentStore)(nil)

func NewAttachmentStore(ctx context.Context, bucket, credentialsFile string) (*AttachmentStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing storage client: %w", err)
	}
	return &AttachmentStore{client: client, bucket: bucket}, nil
}

// Upload writes the attachment bytes and returns the object URL stored on
// the task document.
func (s *AttachmentStore) Upload(ctx context.Context, blobName, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(blobName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("writing blob %s: %w", blobName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing blob %s: %w", blobName, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, blobName), nil
}

// Delete removes the blob. A missing object is treated as success so that
// deleting twice is not an error.
func (s *AttachmentStore) Delete(ctx context.Context, blobName string) error {
	err := s.client.Bucket(s.bucket).Object(blobName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// SignedURL returns a time-limited read link for the blob.
func (s *AttachmentStore) SignedURL(blobName string) (string, error) {
	return s.client.Bucket(s.bucket).SignedURL(blobName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(signedURLTTL),
	})
}
