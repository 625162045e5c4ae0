package provisioning

import (
	"fmt"

	"github.com/fileshare/fsdeploy/internal/platform/eks"
	"github.com/fileshare/fsdeploy/internal/util/naming"
)

// ClusterPhase provisions the managed cluster and its bounded node group.
type ClusterPhase struct{}

func (ClusterPhase) Name() string { return "cluster" }

func (ClusterPhase) Provision(ctx *Context) error {
	cc := ctx.Config.Cluster
	spec := eks.ClusterSpec{
		Name:              cc.Name,
		Region:            cc.Region,
		KubernetesVersion: cc.KubernetesVersion,
		RoleARN:           cc.RoleARN,
		NodeRoleARN:       cc.NodeRoleARN,
		SubnetIDs:         cc.SubnetIDs,
		NodegroupName:     naming.Nodegroup(cc.Name),
		NodeType:          cc.NodeType,
		MinNodes:          cc.MinNodes,
		MaxNodes:          cc.MaxNodes,
		DesiredNodes:      cc.DesiredNodes,
	}

	ctx.Observer.Event(Event{Type: EventResourceCreating, Phase: "cluster", Resource: cc.Name})
	cluster, err := ctx.Clients.Cluster.Provision(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to provision cluster: %w", err)
	}

	ctx.State.Cluster = cluster
	ctx.State.Kubeconfig = eks.Kubeconfig(cluster, cc.Region)
	ctx.Observer.Event(Event{Type: EventResourceCreated, Phase: "cluster", Resource: cluster.ARN})
	return nil
}
