package document

import (
	"context"
	"errors"
	"garmentflow/bizerror"
	"garmentflow/client/s3"
	"garmentflow/config"
	"io"
	"os"
	"path/filepath"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// FileStore keeps uploaded document content by stored file name.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) error
	// Open returns bizerror.ErrNotFound when nothing is stored under name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

var ActiveFileStore FileStore

// BuildFileStore uses the OSS bucket when one is configured, the upload directory otherwise.
func BuildFileStore(c *config.ServiceConfig) (FileStore, error) {
	if c.OSS.Enabled() {
		bucket, err := s3.BuildBucket(c.OSS.Endpoint, c.OSS.AccessKey, c.OSS.SecretKey, c.OSS.Bucket)
		if err != nil {
			return nil, err
		}
		return &OSSStore{Bucket: bucket, Prefix: "documents/"}, nil
	}
	return NewLocalStore(c.UploadDir)
}

type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, bizerror.ErrNotFound
	}
	return f, err
}

type OSSStore struct {
	Bucket *s3.Bucket
	Prefix string
}

func (s *OSSStore) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	return s.Bucket.PutObject(ctx, s.Prefix+name, r, oss.ContentType(contentType))
}

func (s *OSSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.Bucket.GetObject(ctx, s.Prefix+name)
	if err == s3.ErrNoSuchKey {
		return nil, bizerror.ErrNotFound
	}
	return r, err
}
