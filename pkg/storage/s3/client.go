package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Object is an upload request. Folder is a logical prefix such as "products".
type Object struct {
	Folder      string
	Extension   string
	ContentType string
	Body        []byte
}

// Client uploads images and returns their public URL.
type Client struct {
	api           putter
	bucket        string
	publicBaseURL string
	newName       func() string
}

// NewClient loads AWS credentials from the default chain.
func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("storage bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws configuration: %w", err)
	}
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	client := newClient(api, cfg)
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"bucket": cfg.Bucket,
			"region": cfg.Region,
		}), "object storage initialised")
	}
	return client, nil
}

func newClient(api putter, cfg config.StorageConfig) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		switch {
		case cfg.Endpoint != "":
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &Client{
		api:           api,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
		newName:       uuid.NewString,
	}
}

// Upload stores obj under <folder>/<random>.<ext> and returns its public URL.
func (c *Client) Upload(ctx context.Context, obj Object) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("object storage not configured")
	}
	if len(obj.Body) == 0 {
		return "", errors.New("empty upload")
	}

	name := c.newName()
	if ext := strings.TrimPrefix(obj.Extension, "."); ext != "" {
		name += "." + ext
	}
	key := path.Join(strings.Trim(obj.Folder, "/"), name)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if _, err := c.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return c.publicBaseURL + "/" + key, nil
}
