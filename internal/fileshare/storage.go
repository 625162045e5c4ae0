package fileshare

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fileshare/fsdeploy/internal/platform/s3"
)

// ErrNotFound is returned by ObjectStore.Get for keys that do not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the storage the service uploads to and downloads from.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
	URL(key string) string
}

// bucketStore backs ObjectStore with a single S3 bucket.
type bucketStore struct {
	client *s3.Client
	bucket string
}

// NewBucketStore creates an ObjectStore over one S3 bucket.
func NewBucketStore(client *s3.Client, bucket string) ObjectStore {
	return &bucketStore{client: client, bucket: bucket}
}

func (s *bucketStore) Put(ctx context.Context, key string, r io.Reader) error {
	return s.client.PutObject(ctx, s.bucket, key, r)
}

func (s *bucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetObject(ctx, s.bucket, key)
	if err != nil {
		if s3.IsNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return data, nil
}

func (s *bucketStore) List(ctx context.Context) ([]string, error) {
	return s.client.ListObjects(ctx, s.bucket, "")
}

func (s *bucketStore) URL(key string) string {
	return s.client.ObjectURL(s.bucket, key)
}
