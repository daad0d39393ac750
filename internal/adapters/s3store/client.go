package s3store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/zerr"
)

// NewClient builds an S3 client from the default AWS configuration chain
// (environment, shared config, instance metadata). A custom endpoint switches
// the client to path-style addressing for S3 compatible servers.
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStorageOpenFailed, err), "cannot load aws config"), "region", region)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
