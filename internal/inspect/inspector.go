// Package inspect projects the fleet's current GCP monitoring configuration
// into the normalized state the reconciler diffs against.
package inspect

import (
	"context"
	"fmt"

	"github.com/fleetsync-io/fleetsync/internal/fleet"
	"github.com/fleetsync-io/fleetsync/internal/ir"
	"github.com/fleetsync-io/fleetsync/internal/logging"
)

// gcpPackage is the Fleet package name identifying GCP integrations.
const gcpPackage = "gcp"

// Inspector reads the deployed configuration through the Fleet API.
type Inspector struct {
	api      fleet.API
	agentTag string
}

func New(api fleet.API, agentTag string) *Inspector {
	return &Inspector{api: api, agentTag: agentTag}
}

// Inspect discovers the agents carrying the configured tag, walks their
// policies and returns the normalized project → package policy map, the ID
// of the agent policy new integrations attach to, and a report for operator
// visibility. The report never feeds back into reconciliation.
//
// Returns an error wrapping fleet.ErrNotFound when no agent matches the tag:
// with no policy to attach to there is nothing to reconcile against.
func (i *Inspector) Inspect(ctx context.Context) (*ir.CurrentState, string, *ir.InspectionReport, error) {
	kuery := fmt.Sprintf("tags:%q", i.agentTag)
	agents, err := i.api.AgentsByQuery(ctx, kuery)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to list agents: %w", err)
	}
	if len(agents) == 0 {
		return nil, "", nil, fmt.Errorf("no agents matched tag %q: %w", i.agentTag, fleet.ErrNotFound)
	}

	current := ir.NewCurrentState()
	report := &ir.InspectionReport{}
	seen := make(map[string]*ir.PolicyReport)
	var parentPolicyID string

	for _, agent := range agents {
		logging.Debug("inspecting agent",
			"agent", agent.Agent.ID,
			"version", agent.Agent.Version,
			"policy", agent.PolicyID)

		policy, err := i.api.AgentPolicy(ctx, agent.PolicyID)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to fetch agent policy %s: %w", agent.PolicyID, err)
		}
		parentPolicyID = policy.ID

		pr, ok := seen[policy.ID]
		if !ok {
			pr = &ir.PolicyReport{ID: policy.ID, Revision: policy.Revision}
			seen[policy.ID] = pr
			report.Policies = append(report.Policies, pr)
			harvest(policy, current, pr)
		}
		pr.Agents = append(pr.Agents, ir.AgentReport{
			ID:      agent.Agent.ID,
			Version: agent.Agent.Version,
		})
	}

	return current, parentPolicyID, report, nil
}

// harvest records every GCP project the policy's integrations read from.
// CurrentState insertion is first-wins, preserving the integration a project
// was first seen with.
func harvest(policy *fleet.FullPolicy, current *ir.CurrentState, pr *ir.PolicyReport) {
	for _, input := range policy.Inputs {
		if input.Meta.Package.Name != gcpPackage {
			continue
		}
		integration := ir.IntegrationReport{
			Name:            input.Name,
			PackagePolicyID: input.PackagePolicyID,
		}
		for _, stream := range input.Streams {
			integration.Streams = append(integration.Streams, ir.StreamReport{
				Project:  stream.ProjectID,
				Dataset:  stream.DataStream.Dataset,
				Datatype: stream.DataStream.Type,
			})
			current.Insert(stream.ProjectID, input.PackagePolicyID)
		}
		pr.Integrations = append(pr.Integrations, integration)
	}
}
