// Package sitespec builds the resource graph for one tenant website: a
// public-read S3 bucket configured for static hosting, seeded with starter
// content, with versioning enabled. A Spec is a pure value derived from
// tenant parameters; the engine receives its Program, never a closure over
// request state.
package sitespec

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/geostacks/sitehost/internal/domain"
)

// WebsiteURLOutput is the stack output holding the public site endpoint.
const WebsiteURLOutput = "website_url"

//go:embed assets/under-construction.gif
var underConstructionGIF []byte

// Spec describes one site's resource graph.
type Spec struct {
	DisplayName string
	CreatedAt   time.Time
}

// New derives a Spec from tenant parameters.
func New(params domain.SiteParams) Spec {
	return Spec{
		DisplayName: params.DisplayName,
		CreatedAt:   time.Now(),
	}
}

// IndexHTML renders the seed landing page for the site.
func (s Spec) IndexHTML() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>My GeoStacks Website</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            text-align: center;
            color: #0000ff;
            background-color: #c0c0c0;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Welcome to %s's Page</h1>
        <img src="under-construction.gif">
        <p>Under construction</p>
        <p>Created at: %s</p>
    </div>
</body>
</html>
`, s.DisplayName, s.CreatedAt.Format("2006-01-02 15:04:05"))
}

// Program returns the engine-executable form of the spec. The resulting
// program exports the bucket's website endpoint under WebsiteURLOutput.
func (s Spec) Program() pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		bucket, err := s3.NewBucketV2(ctx, "site-bucket", nil)
		if err != nil {
			return err
		}

		siteConfig, err := s.seedContent(ctx, bucket)
		if err != nil {
			return err
		}

		if err := publicReadAccess(ctx, bucket); err != nil {
			return err
		}

		_, err = s3.NewBucketVersioningV2(ctx, "site-versioning", &s3.BucketVersioningV2Args{
			Bucket: bucket.ID(),
			VersioningConfiguration: &s3.BucketVersioningV2VersioningConfigurationArgs{
				Status: pulumi.String("Enabled"),
			},
		})
		if err != nil {
			return err
		}

		ctx.Export(WebsiteURLOutput, siteConfig.WebsiteEndpoint)
		return nil
	}
}

// seedContent configures static website hosting on the bucket and uploads
// the starter assets.
func (s Spec) seedContent(ctx *pulumi.Context, bucket *s3.BucketV2) (*s3.BucketWebsiteConfigurationV2, error) {
	siteConfig, err := s3.NewBucketWebsiteConfigurationV2(ctx, "site-config", &s3.BucketWebsiteConfigurationV2Args{
		Bucket: bucket.ID(),
		IndexDocument: &s3.BucketWebsiteConfigurationV2IndexDocumentArgs{
			Suffix: pulumi.String("index.html"),
		},
		ErrorDocument: &s3.BucketWebsiteConfigurationV2ErrorDocumentArgs{
			Key: pulumi.String("error.html"),
		},
	})
	if err != nil {
		return nil, err
	}

	_, err = s3.NewBucketObject(ctx, "index", &s3.BucketObjectArgs{
		Bucket:      bucket.ID(),
		Key:         pulumi.String("index.html"),
		Content:     pulumi.String(s.IndexHTML()),
		ContentType: pulumi.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return nil, err
	}

	_, err = s3.NewBucketObject(ctx, "construction-img", &s3.BucketObjectArgs{
		Bucket:        bucket.ID(),
		Key:           pulumi.String("under-construction.gif"),
		ContentBase64: pulumi.String(base64.StdEncoding.EncodeToString(underConstructionGIF)),
		ContentType:   pulumi.String("image/gif"),
	})
	if err != nil {
		return nil, err
	}

	return siteConfig, nil
}

// publicReadAccess lifts the account-level public access block for the
// bucket and attaches an anonymous-read policy. The policy must depend on
// the access block or S3 rejects it.
func publicReadAccess(ctx *pulumi.Context, bucket *s3.BucketV2) error {
	accessBlock, err := s3.NewBucketPublicAccessBlock(ctx, "site-public-access-block", &s3.BucketPublicAccessBlockArgs{
		Bucket:                bucket.ID(),
		BlockPublicAcls:       pulumi.Bool(false),
		IgnorePublicAcls:      pulumi.Bool(false),
		BlockPublicPolicy:     pulumi.Bool(false),
		RestrictPublicBuckets: pulumi.Bool(false),
	}, pulumi.DependsOn([]pulumi.Resource{bucket}))
	if err != nil {
		return err
	}

	_, err = s3.NewBucketPolicy(ctx, "site-policy", &s3.BucketPolicyArgs{
		Bucket: bucket.ID(),
		Policy: pulumi.Sprintf(`{
    "Version": "2012-10-17",
    "Statement": [{
        "Effect": "Allow",
        "Principal": "*",
        "Action": ["s3:GetObject"],
        "Resource": ["arn:aws:s3:::%s/*"]
    }]
}`, bucket.ID()),
	}, pulumi.DependsOn([]pulumi.Resource{accessBlock}))
	return err
}
