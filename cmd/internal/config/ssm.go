package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const (
	ParamsPrefix  = "/leadfinder/prod/"
	DefaultRegion = "us-east-2"
)

// ParameterStore is the part of the SSM client used to load parameters.
type ParameterStore interface {
	GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// NewSSMClient builds a Parameter Store client for the given region.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// ExportParameters copies every parameter under prefix into the process
// environment, the variable name being the parameter path minus prefix.
// It returns how many variables were set.
func ExportParameters(ctx context.Context, store ParameterStore, prefix string) (int, error) {
	var count int
	var next *string

	for {
		out, err := store.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
			NextToken:      next,
		})
		if err != nil {
			return count, fmt.Errorf("unable to load prod environment: %w", err)
		}

		prefixLength := len(prefix)
		for _, param := range out.Parameters {
			if param.Name == nil || param.Value == nil || len(*param.Name) <= prefixLength {
				continue
			}

			key := (*param.Name)[prefixLength:]
			if err = os.Setenv(key, *param.Value); err != nil {
				return count, fmt.Errorf("unable to set environment variable: %w", err)
			}
			count++
		}

		if out.NextToken == nil || *out.NextToken == "" {
			return count, nil
		}
		next = out.NextToken
	}
}
