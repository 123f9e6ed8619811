// Package storage uploads recipe and avatar images to an S3-compatible
// object store and returns the public URL recorded on the recipe or profile.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"

	"github.com/sakif/recipe-share/internal/apperror"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

// Folders group objects by what they illustrate.
const (
	FolderRecipes = "recipes"
	FolderAvatars = "avatars"
	FolderSteps   = "steps"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// objectPutter is the one S3 call the store makes; *s3.Client satisfies it.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Endpoint  string // empty for AWS itself
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from; derived when empty
}

type ImageStore struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// NewS3 builds a store from static credentials. A custom endpoint switches to
// path-style addressing, which MinIO and most S3 clones require.
func NewS3(ctx context.Context, opts Options) (*ImageStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newImageStore(client, opts), nil
}

func newImageStore(client objectPutter, opts Options) *ImageStore {
	public := opts.PublicURL
	switch {
	case public != "":
	case opts.Endpoint != "":
		public = fmt.Sprintf("%s/%s", strings.TrimRight(opts.Endpoint, "/"), opts.Bucket)
	default:
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return &ImageStore{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(public, "/"),
	}
}

// Upload stores data under folder with a generated name and returns its URL.
// The content type is sniffed from the bytes; the client's claim is ignored.
func (s *ImageStore) Upload(ctx context.Context, folder string, data []byte) (string, error) {
	switch folder {
	case FolderRecipes, FolderAvatars, FolderSteps:
	default:
		return "", apperror.ValidationFailed("folder", fmt.Sprintf("unknown image folder %q", folder))
	}
	if len(data) == 0 {
		return "", apperror.ValidationFailed("file", "image is empty")
	}
	if len(data) > MaxImageSize {
		return "", apperror.ValidationFailed("file", "image must be 5 MB or smaller")
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperror.ValidationFailed("file", "only JPEG, PNG, GIF and WebP images are accepted")
	}

	key := folder + "/" + xid.New().String() + ext
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}
