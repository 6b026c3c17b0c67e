package uploads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_api/internal/adapters/observability"
)

type S3Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 puts uploads into a bucket. Hotel records still reference them as
// /uploads/<name>; Handler redirects those paths to the public bucket URL.
type S3 struct {
	client objectAPI
	opts   S3Options
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if o.Region == "" {
		o.Region = "auto"
	}
	loadOpts := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(o.Region)}
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, "")))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})
	return newS3(client, o), nil
}

func newS3(c objectAPI, o S3Options) *S3 { return &S3{client: c, opts: o} }

func (s *S3) key(name string) string { return path.Join(s.opts.Prefix, path.Base(name)) }

func (s *S3) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (err error) {
	defer func() { observability.ObserveUpload("s3", err) }()

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(s.key(name)),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		log.Error().Err(err).Str("key", s.key(name)).Msg("failed to upload file to S3")
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// PublicURL is where a stored object can be fetched from.
func (s *S3) PublicURL(name string) string {
	return strings.TrimRight(s.opts.PublicURL, "/") + "/" + s.key(name)
}

// Handler redirects /uploads/{name} to the object's public URL; mount it
// on a chi router.
func (s *S3) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		if name == "" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, s.PublicURL(name), http.StatusFound)
	})
}
