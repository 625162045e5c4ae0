package iam

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// iamAPI is the subset of the IAM API the client uses.
type iamAPI interface {
	CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
}

// stsAPI is the subset of the STS API the client uses.
type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client creates IAM policies and workload identity roles.
type Client struct {
	iam iamAPI
	sts stsAPI
}

// WorkloadIdentity holds the created identity resources.
type WorkloadIdentity struct {
	PolicyARN string
	RoleARN   string
	RoleName  string
}

// NewClient creates an IAM client using the ambient AWS credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		iam: iam.NewFromConfig(cfg),
		sts: sts.NewFromConfig(cfg),
	}, nil
}

// AccountID resolves the AWS account of the active credentials.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}

// CreateWorkloadIdentity creates the bucket-access policy, a role trusting
// the service account through the cluster's OIDC issuer, and attaches the
// policy to the role. The policy document is also written to policyPath as
// a local artifact of the run.
func (c *Client) CreateWorkloadIdentity(ctx context.Context, in WorkloadIdentityInput) (*WorkloadIdentity, error) {
	accountID, err := c.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	policyJSON, err := BucketAccessPolicy(in.BucketName).JSON()
	if err != nil {
		return nil, err
	}

	if in.PolicyPath != "" {
		if err := os.WriteFile(in.PolicyPath, policyJSON, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write policy document to %s: %w", in.PolicyPath, err)
		}
	}

	policyOut, err := c.iam.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(in.PolicyName),
		PolicyDocument: aws.String(string(policyJSON)),
		Description:    aws.String(fmt.Sprintf("Bucket access for %s", in.BucketName)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create policy %s: %w", in.PolicyName, err)
	}

	trustJSON, err := TrustPolicy(accountID, in.OIDCIssuer, in.Namespace, in.ServiceAccount).JSON()
	if err != nil {
		return nil, err
	}

	roleOut, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(in.RoleName),
		AssumeRolePolicyDocument: aws.String(string(trustJSON)),
		Description:              aws.String(fmt.Sprintf("Workload identity for %s/%s", in.Namespace, in.ServiceAccount)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create role %s: %w", in.RoleName, err)
	}

	if _, err := c.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  roleOut.Role.RoleName,
		PolicyArn: policyOut.Policy.Arn,
	}); err != nil {
		return nil, fmt.Errorf("failed to attach policy to role %s: %w", in.RoleName, err)
	}

	return &WorkloadIdentity{
		PolicyARN: aws.ToString(policyOut.Policy.Arn),
		RoleARN:   aws.ToString(roleOut.Role.Arn),
		RoleName:  aws.ToString(roleOut.Role.RoleName),
	}, nil
}

// WorkloadIdentityInput parameterizes CreateWorkloadIdentity.
type WorkloadIdentityInput struct {
	BucketName     string
	PolicyName     string
	RoleName       string
	OIDCIssuer     string
	Namespace      string
	ServiceAccount string
	// PolicyPath, when set, receives the policy document as a local file.
	PolicyPath string
}
