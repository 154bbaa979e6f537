package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	// URL openers used by blob.OpenBucket
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/janelia-flyem/omezarr/ngff"
)

func init() {
	for _, scheme := range []string{"", "file", "mem", "s3", "gs"} {
		RegisterScheme(scheme, openBucketStore)
	}
}

// bucketStore is a Store on a gocloud blob bucket.
type bucketStore struct {
	ref    string
	bucket *blob.Bucket
}

// NewBucketStore returns a Store reading from the bucket.  The bucket is
// closed with the store.
func NewBucketStore(ref string, bucket *blob.Bucket) Store {
	return &bucketStore{ref: ref, bucket: bucket}
}

func (s *bucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (s *bucketStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

func (s *bucketStore) String() string {
	return fmt.Sprintf("bucket store @ %s", s.ref)
}

func (s *bucketStore) Close() error {
	if err := s.bucket.Close(); err != nil {
		ngff.Errorf("Error on trying to close bucket store (%s): %v\n", s.ref, err)
		return err
	}
	return nil
}

// OpenBucket opens the bucket for a reference for reading and writing.
// Missing local directories are created.  Closing the bucket of a "mem://"
// reference leaves the named in-memory bucket intact.
func OpenBucket(ctx context.Context, ref string) (*blob.Bucket, error) {
	return openBucket(ctx, ref, true)
}

func openBucket(ctx context.Context, ref string, create bool) (*blob.Bucket, error) {
	scheme, rest := SplitScheme(ref)
	switch scheme {
	case "", "file":
		dir, err := filepath.Abs(filepath.FromSlash(rest))
		if err != nil {
			return nil, err
		}
		if create {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		fi, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("%q is not a directory", dir)
		}
		return fileblob.OpenBucket(dir, nil)
	case "mem":
		name, prefix, _ := strings.Cut(rest, "/")
		memMu.Lock()
		bucket, found := memBuckets[name]
		memMu.Unlock()
		if !found {
			if !create {
				return nil, fmt.Errorf("no in-memory bucket %q", name)
			}
			bucket = MemBucket(name)
		}
		return withPrefix(bucket, prefix), nil
	case "s3", "gs":
		// S3 requires AWS credentials and the AWS_REGION environment variable
		// set in ways gocloud can find them.  GCS uses the default application
		// credentials.
		bucketName, prefix, _ := strings.Cut(rest, "/")
		if bucketName == "" {
			return nil, fmt.Errorf("no bucket name in %q", ref)
		}
		bucket, err := blob.OpenBucket(ctx, scheme+"://"+bucketName)
		if err != nil {
			ngff.Errorf("Can't open bucket reference @ %q: %v\n", ref, err)
			return nil, err
		}
		if prefix = strings.Trim(prefix, "/"); prefix != "" {
			bucket = blob.PrefixedBucket(bucket, prefix+"/")
		}
		return bucket, nil
	}
	return nil, fmt.Errorf("%w %q for buckets", ErrUnsupportedScheme, scheme)
}

// withPrefix wraps a shared bucket so closing the wrapper keeps the underlying bucket open.
func withPrefix(bucket *blob.Bucket, prefix string) *blob.Bucket {
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		prefix += "/"
	}
	return blob.PrefixedBucket(bucket, prefix)
}

// openBucketStore returns a read-only store for a reference of the form
//
//	/path/to/hierarchy
//	file:///path/to/hierarchy
//	mem://<name>/<path to hierarchy>
//	s3://<bucketname>/<path to hierarchy>
//	gs://<bucketname>/<path to hierarchy>
func openBucketStore(ctx context.Context, ref string) (Store, error) {
	bucket, err := openBucket(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	return &bucketStore{ref: ref, bucket: bucket}, nil
}

var (
	memMu      sync.Mutex
	memBuckets = map[string]*blob.Bucket{}
)

// MemBucket returns the named in-memory bucket, creating it if needed.  A
// "mem://<name>" reference opens a store on it.
func MemBucket(name string) *blob.Bucket {
	memMu.Lock()
	defer memMu.Unlock()
	b, found := memBuckets[name]
	if !found {
		b = memblob.OpenBucket(nil)
		memBuckets[name] = b
	}
	return b
}
