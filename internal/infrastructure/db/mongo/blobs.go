package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

const defaultBucket = "uploads"

type blobMetadata struct {
	ContentType  string `bson:"content_type"`
	OriginalName string `bson:"original_name"`
	OwnerID      string `bson:"owner_id"`
}

// BlobStore implements ports.BlobStore on GridFS. Objects are addressed by
// their path, stored as the GridFS filename.
type BlobStore struct {
	store      *Store
	bucketName string
	baseURL    string
	timeout    time.Duration
}

// NewBlobStore serves download URLs under baseURL + "/files/".
func NewBlobStore(store *Store, bucketName, baseURL string, timeout time.Duration) *BlobStore {
	if bucketName == "" {
		bucketName = defaultBucket
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BlobStore{
		store:      store,
		bucketName: bucketName,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// bucket returns a fresh handle; gridfs.Bucket keeps per-operation state and
// must not be shared between goroutines.
func (b *BlobStore) bucket() (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(b.store.db, options.GridFSBucket().SetName(b.bucketName))
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", b.bucketName, err)
	}
	return bucket, nil
}

func (b *BlobStore) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(b.timeout)
	if cd, ok := ctx.Deadline(); ok && cd.Before(d) {
		return cd
	}
	return d
}

func (b *BlobStore) Upload(ctx context.Context, path string, data []byte, meta ports.BlobMetadata) error {
	if err := b.store.writable(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bucket, err := b.bucket()
	if err != nil {
		return err
	}
	if err := bucket.SetWriteDeadline(b.deadline(ctx)); err != nil {
		return err
	}

	opts := options.GridFSUpload().SetMetadata(blobMetadata{
		ContentType:  meta.ContentType,
		OriginalName: meta.OriginalName,
		OwnerID:      meta.OwnerID,
	})
	if _, err := bucket.UploadFromStream(path, bytes.NewReader(data), opts); err != nil {
		return classify(fmt.Errorf("upload %s: %w", path, err))
	}
	return nil
}

func (b *BlobStore) DownloadURL(path string) string {
	return b.baseURL + "/files/" + strings.TrimLeft(path, "/")
}

func (b *BlobStore) Delete(ctx context.Context, path string) error {
	if err := b.store.writable(); err != nil {
		return err
	}

	bucket, err := b.bucket()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	files, err := b.find(ctx, bucket, bson.M{"filename": path}, 0)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return domain.ErrFileNotFound
	}
	for _, f := range files {
		if err := bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return classify(fmt.Errorf("delete %s: %w", path, err))
		}
	}
	return nil
}

// List returns at most limit objects whose path starts with prefix, newest
// first.
func (b *BlobStore) List(ctx context.Context, prefix string, limit int) ([]domain.StoredFile, error) {
	if err := b.store.writable(); err != nil {
		return nil, err
	}

	bucket, err := b.bucket()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	filter := bson.M{"filename": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	files, err := b.find(ctx, bucket, filter, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.StoredFile, 0, len(files))
	for _, f := range files {
		out = append(out, b.describe(f))
	}
	return out, nil
}

// Open streams the newest revision stored at path.
func (b *BlobStore) Open(ctx context.Context, path string) (io.ReadCloser, *domain.StoredFile, error) {
	if err := b.store.writable(); err != nil {
		return nil, nil, err
	}

	bucket, err := b.bucket()
	if err != nil {
		return nil, nil, err
	}
	if err := bucket.SetReadDeadline(b.deadline(ctx)); err != nil {
		return nil, nil, err
	}

	stream, err := bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, domain.ErrFileNotFound
		}
		return nil, nil, classify(fmt.Errorf("open %s: %w", path, err))
	}
	file := b.describe(stream.GetFile())
	return stream, &file, nil
}

func (b *BlobStore) find(ctx context.Context, bucket *gridfs.Bucket, filter bson.M, limit int) ([]*gridfs.File, error) {
	opts := options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int32(limit))
	}

	cur, err := bucket.FindContext(ctx, filter, opts)
	if err != nil {
		return nil, classify(fmt.Errorf("find files: %w", err))
	}
	var files []*gridfs.File
	if err := cur.All(ctx, &files); err != nil {
		return nil, classify(fmt.Errorf("decode files: %w", err))
	}
	return files, nil
}

func (b *BlobStore) describe(f *gridfs.File) domain.StoredFile {
	var meta blobMetadata
	if len(f.Metadata) > 0 {
		_ = bson.Unmarshal(f.Metadata, &meta)
	}
	return domain.StoredFile{
		Path:         f.Name,
		URL:          b.DownloadURL(f.Name),
		ContentType:  meta.ContentType,
		Size:         f.Length,
		OriginalName: meta.OriginalName,
		OwnerID:      meta.OwnerID,
	}
}

// classify tags network failures and timeouts as domain.ErrTransient so
// callers can retry them.
func classify(err error) error {
	if isTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return err
}
