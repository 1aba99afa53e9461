// Package source opens the byte streams tables are loaded from: local
// files, standard input, Amazon S3 objects and Google Cloud Storage objects.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ajitpratap0/delimtab/pkg/errors"
	"github.com/ajitpratap0/delimtab/pkg/mmap"
)

// Scheme identifies where a location lives.
type Scheme string

const (
	// SchemeFile is a local path
	SchemeFile Scheme = "file"
	// SchemeStdin is standard input, written as "-"
	SchemeStdin Scheme = "stdin"
	// SchemeS3 is s3://bucket/key
	SchemeS3 Scheme = "s3"
	// SchemeGCS is gs://bucket/object
	SchemeGCS Scheme = "gs"
)

// Location is a parsed source location.
type Location struct {
	Scheme Scheme
	// Path is the local path for SchemeFile
	Path string
	// Bucket and Key address an object store entry
	Bucket string
	Key    string
}

func (l Location) String() string {
	switch l.Scheme {
	case SchemeStdin:
		return "-"
	case SchemeS3, SchemeGCS:
		return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
	default:
		return l.Path
	}
}

// ParseLocation classifies raw. Object store locations need both a bucket
// and a key.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, errors.New(errors.ErrorTypeValidation, "empty source location")
	}
	if raw == "-" {
		return Location{Scheme: SchemeStdin}, nil
	}
	for _, scheme := range []Scheme{SchemeS3, SchemeGCS} {
		prefix := string(scheme) + "://"
		if !strings.HasPrefix(raw, prefix) {
			continue
		}
		bucket, key, _ := strings.Cut(strings.TrimPrefix(raw, prefix), "/")
		if bucket == "" || key == "" {
			return Location{}, errors.Newf(errors.ErrorTypeValidation, "invalid %s location %q: want %sbucket/key", scheme, raw, prefix)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	}
	return Location{Scheme: SchemeFile, Path: strings.TrimPrefix(raw, "file://")}, nil
}

// Open returns a reader for raw. Every failure is a source_unavailable error.
func Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceUnavailable, "invalid source location")
	}

	var rc io.ReadCloser
	switch loc.Scheme {
	case SchemeStdin:
		rc = io.NopCloser(os.Stdin)
	case SchemeS3:
		rc, err = openS3(ctx, loc)
	case SchemeGCS:
		rc, err = openGCS(ctx, loc)
	default:
		rc, err = openFile(loc.Path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceUnavailable, "failed to open "+loc.String()).
			WithDetail("scheme", string(loc.Scheme))
	}
	return rc, nil
}

// MmapThreshold is the size from which local files are memory-mapped
// instead of read through the file descriptor.
var MmapThreshold int64 = 1 << 20

func openFile(path string) (io.ReadCloser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if mmap.Supported && info.Size() >= MmapThreshold {
		if r, err := mmap.Open(path); err == nil {
			return r, nil
		}
	}
	return os.Open(path) //nolint:gosec // G304: path is supplied by the caller on purpose
}

func openS3(ctx context.Context, loc Location) (io.ReadCloser, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// gcsReader closes the storage client together with the object reader.
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func openGCS(ctx context.Context, loc Location) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	r, err := client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &gcsReader{Reader: r, client: client}, nil
}
