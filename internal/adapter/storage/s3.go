package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures the object-store client. Credentials themselves are
// sourced from the ambient environment: static AWS env variables first, then
// the shared credentials file under the optional named profile.
type S3Options struct {
	Endpoint string // host[:port], defaults to AWS S3
	Region   string
	Profile  string // optional AWS_PROFILE
	Insecure bool   // plain HTTP, for local object stores in tests
}

// ObjectStore implements Store against an S3-compatible service.
type ObjectStore struct {
	client *minio.Client
}

// NewObjectStore creates the client with an env/file credential chain.
func NewObjectStore(opts S3Options) (*ObjectStore, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{Profile: opts.Profile},
	})
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: !opts.Insecure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}
	return &ObjectStore{client: client}, nil
}

func (s *ObjectStore) Read(ctx context.Context, path string) ([]byte, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *ObjectStore) Write(ctx context.Context, path string, data []byte) error {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// splitS3Path splits "s3://bucket/key" into bucket and key.
func splitS3Path(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, S3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 path %q", path)
	}
	return bucket, key, nil
}
