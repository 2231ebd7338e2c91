package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/storagesync/internal/common"
	"github.com/dmitrijs2005/storagesync/internal/logging"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/codec"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/records"
)

// s3API is the part of *s3.Client the store uses.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config locates the bucket and credentials.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Prefix       string
}

// S3Store keeps the manifest and items as objects in one bucket:
//
//	<prefix>/manifest
//	<prefix>/items/<identifier key>
//
// Manifest writes are conditional on the ETag read just before, so two
// devices cannot both commit on top of the same version.
type S3Store struct {
	api    s3API
	bucket string
	prefix string
	logger logging.Logger
}

var _ Store = (*S3Store)(nil)

func NewS3Store(ctx context.Context, cfg S3Config, logger logging.Logger) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithAPI(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewS3StoreWithAPI allows injecting a fake client.
func NewS3StoreWithAPI(api s3API, bucket, prefix string, logger logging.Logger) *S3Store {
	return &S3Store{api: api, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *S3Store) manifestKey() string {
	return path.Join(s.prefix, "manifest")
}

func (s *S3Store) itemKey(id records.StorageIdentifier) string {
	return path.Join(s.prefix, "items", id.Key())
}

// get returns the object body and ETag, or common.ErrorNotFound.
func (s *S3Store) get(ctx context.Context, key string) ([]byte, *string, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, out.ETag, nil
}

func (s *S3Store) readManifest(ctx context.Context) (records.Manifest, *string, error) {
	b, etag, err := s.get(ctx, s.manifestKey())
	if errors.Is(err, common.ErrorNotFound) {
		return records.Manifest{}, nil, nil
	}
	if err != nil {
		return records.Manifest{}, nil, err
	}
	m, err := codec.DecodeManifest(b)
	if err != nil {
		return records.Manifest{}, nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m, etag, nil
}

func (s *S3Store) FetchManifest(ctx context.Context, greaterThan uint64) (*records.Manifest, error) {
	m, _, err := s.readManifest(ctx)
	if err != nil {
		return nil, err
	}
	if m.Version <= greaterThan {
		return nil, nil
	}
	return &m, nil
}

func (s *S3Store) FetchItems(ctx context.Context, ids []records.StorageIdentifier) ([]records.StorageItem, error) {
	out := make([]records.StorageItem, 0, len(ids))
	for _, id := range ids {
		b, _, err := s.get(ctx, s.itemKey(id))
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "manifest references a missing item", "id", id.String())
			continue
		}
		if err != nil {
			return nil, err
		}
		item, err := codec.DecodeItem(id, b)
		if err != nil {
			return nil, fmt.Errorf("decode item %s: %w", id, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *S3Store) WriteChanges(ctx context.Context, previousVersion uint64, changes ChangeSet) error {
	current, etag, err := s.readManifest(ctx)
	if err != nil {
		return err
	}
	if current.Version != previousVersion {
		return fmt.Errorf("%w: remote is at %d, expected %d", common.ErrVersionConflict, current.Version, previousVersion)
	}

	// Items go first; until the manifest points at them they are invisible.
	for _, item := range changes.Inserts {
		b, err := codec.EncodeItem(item)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", item.Identifier, err)
		}
		if err := s.put(ctx, s.itemKey(item.Identifier), b, nil, false); err != nil {
			return err
		}
	}

	err = s.put(ctx, s.manifestKey(), codec.EncodeManifest(changes.Manifest), etag, etag == nil)
	if err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("%w: manifest changed during write", common.ErrVersionConflict)
		}
		return err
	}

	for _, id := range changes.Deletes {
		_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.itemKey(id)),
		})
		if err != nil {
			// The manifest no longer references it; a leftover object is harmless.
			s.logger.Warn(ctx, "failed to delete item", "id", id.String(), "error", err)
		}
	}
	return nil
}

func (s *S3Store) put(ctx context.Context, key string, body []byte, ifMatch *string, ifNoneMatch bool) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/octet-stream"),
		IfMatch:       ifMatch,
	}
	if ifNoneMatch {
		in.IfNoneMatch = aws.String("*")
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
