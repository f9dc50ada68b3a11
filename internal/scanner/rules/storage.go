package rules

import (
	"fmt"
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// PublicAccessBlockRule flags buckets without all four public-access-block
// protections enabled as high, and emits bucket assets.
type PublicAccessBlockRule struct{}

func (PublicAccessBlockRule) ID() string               { return "storage_public_access_block" }
func (PublicAccessBlockRule) Area() models.ServiceArea { return models.AreaStorage }

func (PublicAccessBlockRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, b := range sig.Storage.Buckets {
		res.Assets = append(res.Assets, &models.Asset{
			Name:       b.Name,
			Type:       "bucket",
			ExternalID: bucketExternalID(b),
			Region:     b.Region,
			Metadata:   map[string]any{"encrypted": b.Encrypted, "logging_enabled": b.LoggingEnabled},
		})
		if b.PublicAccessBlock.AllEnabled() {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"storage_public_access_block",
			fmt.Sprintf("Bucket %s does not block all public access", b.Name),
			models.SeverityHigh,
			bucketRef(b),
			map[string]any{
				"block_public_acls":       b.PublicAccessBlock.BlockPublicACLs,
				"ignore_public_acls":      b.PublicAccessBlock.IgnorePublicACLs,
				"block_public_policy":     b.PublicAccessBlock.BlockPublicPolicy,
				"restrict_public_buckets": b.PublicAccessBlock.RestrictPublicBuckets,
			},
		))
	}
	return res
}

// BucketEncryptionRule flags buckets without server-side encryption as medium
type BucketEncryptionRule struct{}

func (BucketEncryptionRule) ID() string               { return "storage_encryption_disabled" }
func (BucketEncryptionRule) Area() models.ServiceArea { return models.AreaStorage }

func (BucketEncryptionRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, b := range sig.Storage.Buckets {
		if b.Encrypted {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"storage_encryption_disabled",
			fmt.Sprintf("Bucket %s has no server-side encryption", b.Name),
			models.SeverityMedium,
			bucketRef(b),
			nil,
		))
	}
	return res
}

// BucketLoggingRule flags buckets without access logging as low
type BucketLoggingRule struct{}

func (BucketLoggingRule) ID() string               { return "storage_access_logs_disabled" }
func (BucketLoggingRule) Area() models.ServiceArea { return models.AreaStorage }

func (BucketLoggingRule) Evaluate(sig *models.CloudSignal, _ time.Time) Result {
	var res Result
	for _, b := range sig.Storage.Buckets {
		if b.LoggingEnabled {
			continue
		}
		res.Findings = append(res.Findings, newFinding(
			"storage_access_logs_disabled",
			fmt.Sprintf("Bucket %s has access logging disabled", b.Name),
			models.SeverityLow,
			bucketRef(b),
			nil,
		))
	}
	return res
}

func bucketRef(b models.Bucket) models.ResourceRef {
	return models.ResourceRef{ARN: b.ARN, Type: "bucket", ID: b.Name}
}

func bucketExternalID(b models.Bucket) string {
	if b.ARN != "" {
		return b.ARN
	}
	return b.Name
}
