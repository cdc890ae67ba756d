package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/clipstream/backend/internal/config"
)

// S3Host implements Host backed by an S3-compatible object store. Blobs are
// keyed by kind so video and image namespaces never collide; the key doubles
// as the public identifier stored alongside each resource.
type S3Host struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Host configures an uploader and deleter targeting the provided object store.
func NewS3Host(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Host, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 media host: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Host{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload streams the content to the bucket and returns its public location.
func (h *S3Host) Upload(ctx context.Context, kind Kind, name string, r io.Reader) (Asset, error) {
	if h == nil {
		return Asset{}, ErrHostUnavailable
	}

	key := path.Join(string(kind), strings.TrimLeft(name, "/"))
	if key == "" || key == string(kind) {
		return Asset{}, fmt.Errorf("s3 media host: empty key")
	}

	_, err := h.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(r),
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("s3 media host upload %s: %w", key, err)
	}

	url := key
	if h.baseURL != "" {
		url = fmt.Sprintf("%s/%s", h.baseURL, key)
	}

	return Asset{URL: url, PublicID: key}, nil
}

// Delete removes a previously uploaded blob. The kind must match the one the
// blob was uploaded under; a public id from another kind is rejected rather
// than silently scoped.
func (h *S3Host) Delete(ctx context.Context, publicID string, kind Kind) error {
	if h == nil {
		return ErrHostUnavailable
	}
	if publicID == "" {
		return nil
	}
	if !strings.HasPrefix(publicID, string(kind)+"/") {
		return fmt.Errorf("s3 media host: public id %q is not a %s blob", publicID, kind)
	}

	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("s3 media host delete %s: %w", publicID, err)
	}

	return nil
}

var _ Host = (*S3Host)(nil)
