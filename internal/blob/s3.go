package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/julianstephens/ledger/internal/constants"
)

const s3Scheme = "s3"

var loadDefaultAWSConfig = config.LoadDefaultConfig

// objectAPI is the slice of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3Config struct {
	Bucket string
	Region string
	// Endpoint points at an S3-compatible service such as MinIO. Path-style
	// addressing is used when set.
	Endpoint  string
	AccessKey string
	SecretKey string
	// Prefix is prepended to every object key.
	Prefix string
}

// S3Store keeps attachment content in an S3 bucket.
type S3Store struct {
	client objectAPI
	bucket string
	prefix string
}

// NewS3Store builds a client from cfg. Static credentials are used when an access
// key is configured; otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Store(client objectAPI, bucket, prefix string) *S3Store {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = constants.AttachmentsDirName
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) Put(ctx context.Context, filename string, r io.Reader) (string, int64, error) {
	// Buffer so the request carries a content length and can be signed
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read attachment: %w", err)
	}

	key := path.Join(s.prefix, objectName(filename))
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(n),
	}); err != nil {
		return "", 0, fmt.Errorf("failed to upload attachment: %w", err)
	}
	return s.uri(key), n, nil
}

func (s *S3Store) Delete(ctx context.Context, uri string) error {
	key, err := s.key(uri)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	uris := []string{}
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + "/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list attachments: %w", err)
		}
		for _, obj := range page.Contents {
			uris = append(uris, s.uri(aws.ToString(obj.Key)))
		}
	}
	return uris, nil
}

func (s *S3Store) Owns(uri string) bool {
	_, err := s.key(uri)
	return err == nil
}

func (s *S3Store) uri(key string) string {
	return (&url.URL{Scheme: s3Scheme, Host: s.bucket, Path: "/" + key}).String()
}

func (s *S3Store) key(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != s3Scheme || u.Host != s.bucket {
		return "", fmt.Errorf("not an attachment in bucket %s: %s", s.bucket, uri)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(key, s.prefix+"/") {
		return "", fmt.Errorf("attachment %s is outside prefix %s", uri, s.prefix)
	}
	return key, nil
}
