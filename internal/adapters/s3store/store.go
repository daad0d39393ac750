// Package s3store implements a storage backend on top of Amazon S3 compatible object stores.
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Storage           = (*Store)(nil)
	_ ports.StorageMaintainer = (*Store)(nil)
)

// keyMetadata is the user metadata field carrying the cache key of an object.
const keyMetadata = "cogni-key"

// Client is the subset of the S3 API used by Store.
type Client interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store keeps each entry as one JSON object under bucket/prefix.
type Store struct {
	client Client
	bucket string
	prefix string
	hasher ports.Hasher
	now    func() time.Time
}

// New creates a Store writing to bucket. prefix is prepended to every object name.
func New(client Client, bucket, prefix string, hasher ports.Hasher) (*Store, error) {
	if bucket == "" {
		return nil, zerr.Wrap(domain.ErrInvalidStorageSpec, "s3 store requires a bucket")
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		hasher: hasher,
		now:    time.Now,
	}, nil
}

// Name identifies the backend in metrics.
func (s *Store) Name() string {
	return domain.StorageS3
}

// Has reports whether an object for key exists.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	objectKey := s.objectKey(key)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, s.wrap(err, domain.ErrStoreReadFailed, "cannot stat object", objectKey)
	}
	if stored, ok := out.Metadata[keyMetadata]; ok && stored != key {
		return false, nil
	}
	return true, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (any, error) {
	objectKey := s.objectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "cannot read object"), "key", key)
		}
		return nil, s.wrap(err, domain.ErrStoreReadFailed, "cannot read object", objectKey)
	}
	defer out.Body.Close() //nolint:errcheck // Best effort close in defer

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, s.wrap(err, domain.ErrStoreReadFailed, "cannot read object", objectKey)
	}

	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, s.wrap(err, domain.ErrStoreUnmarshalFailed, "cannot read object", objectKey)
	}
	if entry.Key != key {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrEntryKeyMismatch, "cannot read object"), "key", key), "object", objectKey)
	}
	return entry.Value, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	objectKey := s.objectKey(key)
	data, err := json.Marshal(domain.Entry{Key: key, Value: value, StoredAt: s.now().UTC()})
	if err != nil {
		return s.wrap(err, domain.ErrStoreMarshalFailed, "cannot write object", objectKey)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{keyMetadata: key},
	})
	if err != nil {
		return s.wrap(err, domain.ErrStoreWriteFailed, "cannot write object", objectKey)
	}
	return nil
}

// List returns the objects under the store prefix.
func (s *Store) List(ctx context.Context) ([]domain.EntryInfo, error) {
	objects, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]domain.EntryInfo, len(objects))
	for i, obj := range objects {
		infos[i] = obj.info
	}
	return infos, nil
}

// Purge deletes objects last modified more than olderThan ago. Zero or less deletes every object.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	objects, err := s.list(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, obj := range objects {
		if olderThan > 0 && !obj.info.StoredAt.Before(cutoff) {
			continue
		}
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(obj.key),
		})
		if err != nil {
			return removed, s.wrap(err, domain.ErrStorePurgeFailed, "cannot delete object", obj.key)
		}
		removed++
	}
	return removed, nil
}

type object struct {
	key  string
	info domain.EntryInfo
}

func (s *Store) list(ctx context.Context) ([]object, error) {
	var objects []object
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, s.wrap(err, domain.ErrStoreReadFailed, "cannot list objects", s.prefix)
		}
		for _, obj := range page.Contents {
			objectKey := aws.ToString(obj.Key)
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return nil, s.wrap(err, domain.ErrStoreReadFailed, "cannot stat object", objectKey)
			}
			objects = append(objects, object{
				key: objectKey,
				info: domain.EntryInfo{
					Key:      head.Metadata[keyMetadata],
					Path:     "s3://" + path.Join(s.bucket, objectKey),
					Size:     aws.ToInt64(obj.Size),
					StoredAt: aws.ToTime(obj.LastModified),
				},
			})
		}
	}
	return objects, nil
}

func (s *Store) objectKey(key string) string {
	return s.prefix + s.hasher.Key(key) + ".json"
}

func (s *Store) wrap(err, kind error, msg, objectKey string) error {
	return zerr.With(zerr.With(zerr.Wrap(errors.Join(kind, err), msg), "bucket", s.bucket), "object", objectKey)
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
