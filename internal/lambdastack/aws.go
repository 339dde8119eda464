package lambdastack

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	ktypes "github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// loadAWSConfig resolves credentials via the standard aws-sdk-go-v2 chain,
// with an optional shared-config profile.
func loadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	optFns := []func(*awscfg.LoadOptions) error{}
	if region != "" {
		optFns = append(optFns, awscfg.WithRegion(region))
	}
	if profile != "" {
		optFns = append(optFns, awscfg.WithSharedConfigProfile(profile))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

// ResolveAccountID returns the caller's AWS account id via STS. It is used
// to fill ACCOUNT_ID when the environment does not provide one.
func ResolveAccountID(ctx context.Context, region, profile string) (string, error) {
	cfg, err := loadAWSConfig(ctx, region, profile)
	if err != nil {
		return "", err
	}
	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	return aws.ToString(identity.Account), nil
}

// awsChecker implements ResourceChecker against the real AWS control plane.
type awsChecker struct {
	secrets *secretsmanager.Client
	kinesis *kinesis.Client
	logs    *cloudwatchlogs.Client
}

// NewChecker creates a ResourceChecker backed by Secrets Manager, Kinesis,
// and CloudWatch Logs clients.
func NewChecker(ctx context.Context, region, profile string) (ResourceChecker, error) {
	cfg, err := loadAWSConfig(ctx, region, profile)
	if err != nil {
		return nil, err
	}
	return &awsChecker{
		secrets: secretsmanager.NewFromConfig(cfg),
		kinesis: kinesis.NewFromConfig(cfg),
		logs:    cloudwatchlogs.NewFromConfig(cfg),
	}, nil
}

// SecretExists reports whether the secret with the given ARN exists.
func (c *awsChecker) SecretExists(ctx context.Context, arn string) (bool, error) {
	_, err := c.secrets.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("DescribeSecret: %w", err)
	}
	return true, nil
}

// StreamExists reports whether the Kinesis stream with the given ARN exists.
func (c *awsChecker) StreamExists(ctx context.Context, arn string) (bool, error) {
	_, err := c.kinesis.DescribeStreamSummary(ctx, &kinesis.DescribeStreamSummaryInput{
		StreamARN: aws.String(arn),
	})
	if err != nil {
		var notFound *ktypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("DescribeStreamSummary: %w", err)
	}
	return true, nil
}

// LogGroupExists reports whether a log group with exactly the given name
// exists. DescribeLogGroups matches by prefix, so results are re-checked
// for an exact name match.
func (c *awsChecker) LogGroupExists(ctx context.Context, name string) (bool, error) {
	out, err := c.logs.DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: aws.String(name),
	})
	if err != nil {
		return false, fmt.Errorf("DescribeLogGroups: %w", err)
	}
	for _, group := range out.LogGroups {
		if aws.ToString(group.LogGroupName) == name {
			return true, nil
		}
	}
	return false, nil
}
