package dispatch

import (
	"context"
	"fmt"

	"github.com/emarketeer/em-commons/internal/domain/slsvars"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// checkBucket verifies provider.deploymentBucket exists before deploying.
// A bucket name that cannot be resolved locally only produces a warning.
func (w Workflow) checkBucket(ctx context.Context, root *yaml.Node, req Request) error {
	if w.Buckets == nil || root == nil {
		return nil
	}
	resolver := slsvars.Resolver{
		Self:      root,
		Options:   slsvars.ParseOptions(req.Selection.Forwarded),
		LookupEnv: req.LookupEnv,
	}
	bucket, err := resolver.ResolvePath("provider.deploymentBucket")
	if err != nil {
		w.warn(fmt.Sprintf("Skipping bucket preflight: %v", err))
		return nil
	}
	region, err := resolver.ResolvePath("provider.region")
	if err != nil {
		region = ""
	}
	w.logger().Debug("preflight", zap.String("bucket", bucket), zap.String("region", region))

	ok, err := w.Buckets.BucketExists(ctx, region, bucket)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrBucketMissing, bucket)
	}
	if w.UserInterface != nil {
		w.UserInterface.Success(fmt.Sprintf("Deployment bucket %s found", bucket))
	}
	return nil
}

func (w Workflow) warn(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Warn(msg)
	}
}
