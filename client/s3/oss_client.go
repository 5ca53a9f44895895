package s3

import (
	"context"
	"errors"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

var ErrNoSuchKey = errors.New("no such key")

// Bucket is an OSS bucket whose object calls join the span carried by the context.
type Bucket struct {
	bucket *oss.Bucket
}

func BuildBucket(endpoint, accesskey, secretKey, bucketName string) (*Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accesskey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}

	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return &Bucket{bucket: bucket}, nil
}

// GetObject returns ErrNoSuchKey when the object does not exist.
func (b *Bucket) GetObject(ctx context.Context, key string, opts ...oss.Option) (io.ReadCloser, error) {
	sp := startChildSpan(ctx, "get-object", key)
	if sp != nil {
		defer sp.Finish()
	}

	r, err := b.bucket.GetObject(key, opts...)
	if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
		err = ErrNoSuchKey
	}
	if sp != nil {
		ext.Error.Set(sp, err != nil && err != ErrNoSuchKey)
	}
	return r, err
}

func (b *Bucket) PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error {
	sp := startChildSpan(ctx, "put-object", key)
	if sp != nil {
		defer sp.Finish()
	}

	err := b.bucket.PutObject(key, r, opts...)
	if sp != nil {
		ext.Error.Set(sp, err != nil)
	}
	return err
}

func startChildSpan(ctx context.Context, operation, key string) opentracing.Span {
	if ctx == nil {
		return nil
	}
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	sp.SetTag("object-key", key)
	return sp
}
