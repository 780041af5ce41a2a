// Package publish uploads report artifacts to S3-compatible storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	defaultRegion = "us-east-1"
	// LatestDir holds the most recent copy of every artifact.
	LatestDir = "latest"
)

// Sentinel configuration errors.
var (
	ErrNoEndpoint = errors.New("publish endpoint is required")
	ErrNoBucket   = errors.New("publish bucket is required")
	ErrNoRunID    = errors.New("run id is required")
)

var contentTypes = map[string]string{
	".json": "application/json",
	".lz4":  "application/x-lz4",
	".html": "text/html; charset=utf-8",
	".yaml": "application/yaml",
}

// ObjectStore is the part of *minio.Client the publisher uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(
		ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
}

// Config is the upload target.
type Config struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Object is one uploaded object.
type Object struct {
	Key  string
	Size int64
}

// Publisher uploads files under <prefix>/<run>/ and <prefix>/latest/.
type Publisher struct {
	client   ObjectStore
	bucket   string
	prefix   string
	region   string
	initOnce sync.Once
	initErr  error
}

// New creates a Publisher backed by a minio client.
func New(cfg Config) (*Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	var creds *credentials.Credentials
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{Creds: creds, Secure: cfg.UseSSL, Region: region})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	cfg.Region = region

	return NewWithClient(client, cfg)
}

// NewWithClient creates a Publisher over an existing client.
func NewWithClient(client ObjectStore, cfg Config) (*Publisher, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, ErrNoBucket
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		region: region,
	}, nil
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = fmt.Errorf("check bucket: %w", err)

			return
		}

		if exists {
			return
		}

		err = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
		if err != nil {
			p.initErr = fmt.Errorf("create bucket: %w", err)
		}
	})

	return p.initErr
}

// Key returns the object key of name for runID.
func (p *Publisher) Key(runID, name string) string {
	return path.Join(p.prefix, runID, name)
}

// Publish uploads every file twice: under the run directory and under
// latest/.
func (p *Publisher) Publish(ctx context.Context, runID string, files ...string) ([]Object, error) {
	runID = strings.Trim(strings.TrimSpace(runID), "/")
	if runID == "" {
		return nil, ErrNoRunID
	}

	err := p.ensureBucket(ctx)
	if err != nil {
		return nil, err
	}

	var out []Object

	for _, file := range files {
		for _, dir := range []string{runID, LatestDir} {
			obj, putErr := p.put(ctx, p.Key(dir, filepath.Base(file)), file)
			if putErr != nil {
				return out, putErr
			}

			out = append(out, obj)
		}
	}

	return out, nil
}

func (p *Publisher) put(ctx context.Context, key, file string) (Object, error) {
	fd, err := os.Open(file)
	if err != nil {
		return Object{}, fmt.Errorf("open %s: %w", file, err)
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", file, err)
	}

	contentType, ok := contentTypes[filepath.Ext(file)]
	if !ok {
		contentType = "application/octet-stream"
	}

	_, err = p.client.PutObject(ctx, p.bucket, key, fd, info.Size(), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return Object{Key: key, Size: info.Size()}, nil
}

// RunID turns a generated_at timestamp into a key-safe directory name.
func RunID(generatedAt string) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(generatedAt)
}
