// Package iam creates the access policy and workload identity binding that
// give the application pods access to the run's bucket.
package iam

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PolicyDocument is a typed IAM policy document.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single IAM policy statement.
type Statement struct {
	Effect    string                       `json:"Effect"`
	Principal map[string]string            `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// BucketAccessPolicy builds the policy granting read/write/list access to a
// single bucket. Object-level actions apply to the bucket's keys, ListBucket
// to the bucket itself.
func BucketAccessPolicy(bucketName string) PolicyDocument {
	bucketARN := fmt.Sprintf("arn:aws:s3:::%s", bucketName)
	return PolicyDocument{
		Version: "2012-10-17",
		Statement: []Statement{
			{
				Effect:   "Allow",
				Action:   []string{"s3:GetObject", "s3:PutObject"},
				Resource: []string{bucketARN + "/*"},
			},
			{
				Effect:   "Allow",
				Action:   []string{"s3:ListBucket"},
				Resource: []string{bucketARN},
			},
		},
	}
}

// TrustPolicy builds the federated trust policy allowing the given service
// account to assume the role through the cluster's OIDC issuer.
func TrustPolicy(accountID, oidcIssuer, namespace, serviceAccount string) PolicyDocument {
	host := strings.TrimPrefix(oidcIssuer, "https://")
	return PolicyDocument{
		Version: "2012-10-17",
		Statement: []Statement{
			{
				Effect: "Allow",
				Principal: map[string]string{
					"Federated": fmt.Sprintf("arn:aws:iam::%s:oidc-provider/%s", accountID, host),
				},
				Action: []string{"sts:AssumeRoleWithWebIdentity"},
				Condition: map[string]map[string]string{
					"StringEquals": {
						host + ":sub": fmt.Sprintf("system:serviceaccount:%s:%s", namespace, serviceAccount),
						host + ":aud": "sts.amazonaws.com",
					},
				},
			},
		},
	}
}

// JSON marshals the document for the IAM API and the on-disk artifact.
func (d PolicyDocument) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return data, nil
}
