package engine

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/pulumi/pulumi/sdk/v3/go/auto"
)

// awsPluginVersion pins the provider plugin to the same major line as the
// pulumi-aws SDK used by the site programs.
const awsPluginVersion = "v6.66.3"

// Bootstrap prepares the local engine workspace and verifies cloud
// credentials against the account. It runs once at process start and either
// failure must abort startup.
func Bootstrap(ctx context.Context, region string) error {
	ws, err := auto.NewLocalWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	if err := ws.InstallPlugin(ctx, "aws", awsPluginVersion); err != nil {
		return fmt.Errorf("installing aws plugin %s: %w", awsPluginVersion, err)
	}
	return validateCredentials(ctx, region)
}

// validateCredentials confirms the configured AWS credentials identify a
// real principal before any stack operation can fail halfway through an
// apply for the same reason.
func validateCredentials(ctx context.Context, region string) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}
	if _, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return fmt.Errorf("aws credentials rejected, ensure AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY match a valid IAM user: %w", err)
	}
	return nil
}
