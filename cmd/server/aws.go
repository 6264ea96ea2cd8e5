package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// awsLoader resolves the shared AWS config on first use so deployments
// without SageMaker or S3 never touch AWS credentials.
type awsLoader func() (aws.Config, error)

func newAWSLoader(ctx context.Context, region string) awsLoader {
	return sync.OnceValues(func() (aws.Config, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return cfg, nil
	})
}
