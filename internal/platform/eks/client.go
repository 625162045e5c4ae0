// Package eks provisions the managed Kubernetes cluster and its node group.
//
// Creation is happy-path by design: names are assumed free, and a failed
// call aborts the run. Pre-existing clusters are not reconciled.
package eks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/aws/smithy-go"

	"github.com/fileshare/fsdeploy/internal/util/retry"
)

// api is the subset of the EKS API the client uses. Narrowed for test fakes.
type api interface {
	CreateCluster(ctx context.Context, params *eks.CreateClusterInput, optFns ...func(*eks.Options)) (*eks.CreateClusterOutput, error)
	DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
	CreateNodegroup(ctx context.Context, params *eks.CreateNodegroupInput, optFns ...func(*eks.Options)) (*eks.CreateNodegroupOutput, error)
	DescribeNodegroup(ctx context.Context, params *eks.DescribeNodegroupInput, optFns ...func(*eks.Options)) (*eks.DescribeNodegroupOutput, error)
}

// ClusterSpec describes the cluster to create.
type ClusterSpec struct {
	Name              string
	Region            string
	KubernetesVersion string
	RoleARN           string
	NodeRoleARN       string
	SubnetIDs         []string
	NodegroupName     string
	NodeType          string
	MinNodes          int32
	MaxNodes          int32
	DesiredNodes      int32
}

// Cluster holds the results of a successful provision needed downstream.
type Cluster struct {
	Name       string
	ARN        string
	Endpoint   string
	CAData     string // base64-encoded cluster certificate authority
	OIDCIssuer string // issuer URL for workload identity federation
}

// Client provisions EKS clusters.
type Client struct {
	api    api
	region string

	// Polling budget for cluster/nodegroup status. Cluster creation
	// routinely takes over ten minutes.
	pollAttempts int
	pollInterval time.Duration

	// Backoff for the create calls. Describe calls are paced by Poll
	// and need no backoff of their own.
	backoff []retry.Option
}

// NewClient creates an EKS client for the given region using the ambient
// AWS credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:          eks.NewFromConfig(cfg),
		region:       region,
		pollAttempts: 60,
		pollInterval: 30 * time.Second,
		backoff: []retry.Option{
			retry.WithMaxRetries(4),
			retry.WithInitialDelay(2 * time.Second),
		},
	}, nil
}

// Provision creates the cluster and its managed node group, waiting for
// both to reach ACTIVE.
func (c *Client) Provision(ctx context.Context, spec ClusterSpec) (*Cluster, error) {
	err := retry.WithExponentialBackoff(ctx, func() error {
		_, err := c.api.CreateCluster(ctx, &eks.CreateClusterInput{
			Name:    aws.String(spec.Name),
			Version: aws.String(spec.KubernetesVersion),
			RoleArn: aws.String(spec.RoleARN),
			ResourcesVpcConfig: &types.VpcConfigRequest{
				SubnetIds: spec.SubnetIDs,
			},
		})
		return classifyCreateError(err)
	}, c.backoff...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster %s: %w", spec.Name, err)
	}

	cluster, err := c.waitClusterActive(ctx, spec.Name)
	if err != nil {
		return nil, err
	}

	err = retry.WithExponentialBackoff(ctx, func() error {
		_, err := c.api.CreateNodegroup(ctx, &eks.CreateNodegroupInput{
			ClusterName:   aws.String(spec.Name),
			NodegroupName: aws.String(spec.NodegroupName),
			NodeRole:      aws.String(spec.NodeRoleARN),
			Subnets:       spec.SubnetIDs,
			InstanceTypes: []string{spec.NodeType},
			ScalingConfig: &types.NodegroupScalingConfig{
				MinSize:     aws.Int32(spec.MinNodes),
				MaxSize:     aws.Int32(spec.MaxNodes),
				DesiredSize: aws.Int32(spec.DesiredNodes),
			},
		})
		return classifyCreateError(err)
	}, c.backoff...)
	if err != nil {
		return nil, fmt.Errorf("failed to create node group %s: %w", spec.NodegroupName, err)
	}

	if err := c.waitNodegroupActive(ctx, spec.Name, spec.NodegroupName); err != nil {
		return nil, err
	}

	return cluster, nil
}

// waitClusterActive polls DescribeCluster until the cluster is ACTIVE and
// returns its connection details.
func (c *Client) waitClusterActive(ctx context.Context, name string) (*Cluster, error) {
	var cluster *Cluster

	err := retry.Poll(ctx, c.pollAttempts, c.pollInterval, func(ctx context.Context) (bool, error) {
		out, err := c.api.DescribeCluster(ctx, &eks.DescribeClusterInput{
			Name: aws.String(name),
		})
		if err != nil {
			return false, fmt.Errorf("failed to describe cluster %s: %w", name, err)
		}

		switch out.Cluster.Status {
		case types.ClusterStatusActive:
			cluster = clusterFromAPI(out.Cluster)
			return true, nil
		case types.ClusterStatusFailed:
			return false, fmt.Errorf("cluster %s entered FAILED state", name)
		default:
			return false, nil
		}
	})
	if err != nil {
		return nil, fmt.Errorf("waiting for cluster %s: %w", name, err)
	}

	return cluster, nil
}

// waitNodegroupActive polls DescribeNodegroup until the node group is ACTIVE.
func (c *Client) waitNodegroupActive(ctx context.Context, clusterName, nodegroupName string) error {
	err := retry.Poll(ctx, c.pollAttempts, c.pollInterval, func(ctx context.Context) (bool, error) {
		out, err := c.api.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
			ClusterName:   aws.String(clusterName),
			NodegroupName: aws.String(nodegroupName),
		})
		if err != nil {
			return false, fmt.Errorf("failed to describe node group %s: %w", nodegroupName, err)
		}

		switch out.Nodegroup.Status {
		case types.NodegroupStatusActive:
			return true, nil
		case types.NodegroupStatusCreateFailed, types.NodegroupStatusDegraded:
			return false, fmt.Errorf("node group %s entered %s state", nodegroupName, out.Nodegroup.Status)
		default:
			return false, nil
		}
	})
	if err != nil {
		return fmt.Errorf("waiting for node group %s: %w", nodegroupName, err)
	}

	return nil
}

// classifyCreateError marks errors that fail identically on every attempt
// (bad input, missing permissions, account limits) as fatal so only
// transient failures such as throttling are retried.
func classifyCreateError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidParameterException",
			"InvalidRequestException",
			"ResourceInUseException",
			"ResourceLimitExceededException",
			"UnsupportedAvailabilityZoneException",
			"AccessDeniedException":
			return retry.Fatal(err)
		}
	}
	return err
}

func clusterFromAPI(c *types.Cluster) *Cluster {
	out := &Cluster{
		Name:     aws.ToString(c.Name),
		ARN:      aws.ToString(c.Arn),
		Endpoint: aws.ToString(c.Endpoint),
	}
	if c.CertificateAuthority != nil {
		out.CAData = aws.ToString(c.CertificateAuthority.Data)
	}
	if c.Identity != nil && c.Identity.Oidc != nil {
		out.OIDCIssuer = aws.ToString(c.Identity.Oidc.Issuer)
	}
	return out
}
