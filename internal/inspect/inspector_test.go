package inspect

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fleetsync-io/fleetsync/internal/fleet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	agents       []fleet.Agent
	agentsErr    error
	agentQueries []string
	policies     map[string]*fleet.FullPolicy
}

func (f *fakeAPI) AgentsByQuery(ctx context.Context, kuery string) ([]fleet.Agent, error) {
	f.agentQueries = append(f.agentQueries, kuery)
	return f.agents, f.agentsErr
}

func (f *fakeAPI) AgentPolicy(ctx context.Context, policyID string) (*fleet.FullPolicy, error) {
	policy, ok := f.policies[policyID]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", policyID, fleet.ErrNotFound)
	}
	return policy, nil
}

func (f *fakeAPI) PoliciesByQuery(ctx context.Context, kuery string, full bool) ([]fleet.AgentPolicy, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAPI) CreatePackagePolicy(ctx context.Context, req *fleet.PackagePolicyRequest) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeAPI) UpdatePackagePolicy(ctx context.Context, packagePolicyID string, req *fleet.PackagePolicyRequest) (int, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeAPI) DeletePackagePolicy(ctx context.Context, packagePolicyID string) (int, error) {
	return 0, errors.New("not implemented")
}

func gcpInput(name, packagePolicyID string, projects ...string) fleet.Input {
	input := fleet.Input{
		Name:            name,
		PackagePolicyID: packagePolicyID,
		Meta:            fleet.InputMeta{Package: fleet.PackageRef{Name: "gcp", Version: "2.11.0"}},
	}
	for _, p := range projects {
		input.Streams = append(input.Streams, fleet.Stream{
			ProjectID:  p,
			DataStream: fleet.DataStream{Dataset: "gcp.audit", Type: "logs"},
		})
	}
	return input
}

func TestInspect_BuildsCurrentState(t *testing.T) {
	api := &fakeAPI{
		agents: []fleet.Agent{
			{PolicyID: "policy-1", Agent: fleet.AgentMeta{ID: "agent-1", Version: "8.15.0"}},
		},
		policies: map[string]*fleet.FullPolicy{
			"policy-1": {
				ID:       "policy-1",
				Revision: 4,
				Inputs: []fleet.Input{
					gcpInput("gcp-P1", "pp-1", "P1"),
					gcpInput("gcp-P2", "pp-2", "P2"),
				},
			},
		},
	}

	current, parentID, report, err := New(api, "gcp").Inspect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "policy-1", parentID)
	assert.Equal(t, []string{"P1", "P2"}, current.Keys())

	id, _ := current.ID("P1")
	assert.Equal(t, "pp-1", id)
	id, _ = current.ID("P2")
	assert.Equal(t, "pp-2", id)

	require.Len(t, report.Policies, 1)
	assert.Equal(t, 4, report.Policies[0].Revision)
	require.Len(t, report.Policies[0].Integrations, 2)
	assert.Equal(t, "logs", report.Policies[0].Integrations[0].Streams[0].Datatype)

	require.Len(t, api.agentQueries, 1)
	assert.Equal(t, `tags:"gcp"`, api.agentQueries[0])
}

func TestInspect_FirstWinsAcrossInputs(t *testing.T) {
	// Two integrations reading the same project: the project stays bound to
	// the package policy it was first seen with.
	api := &fakeAPI{
		agents: []fleet.Agent{
			{PolicyID: "policy-1", Agent: fleet.AgentMeta{ID: "agent-1", Version: "8.15.0"}},
		},
		policies: map[string]*fleet.FullPolicy{
			"policy-1": {
				ID: "policy-1",
				Inputs: []fleet.Input{
					gcpInput("gcp-first", "pp-first", "P1"),
					gcpInput("gcp-second", "pp-second", "P1"),
				},
			},
		},
	}

	current, _, _, err := New(api, "gcp").Inspect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"P1"}, current.Keys())
	id, _ := current.ID("P1")
	assert.Equal(t, "pp-first", id)
}

func TestInspect_SharedPolicyReportedOnce(t *testing.T) {
	api := &fakeAPI{
		agents: []fleet.Agent{
			{PolicyID: "policy-1", Agent: fleet.AgentMeta{ID: "agent-1", Version: "8.15.0"}},
			{PolicyID: "policy-1", Agent: fleet.AgentMeta{ID: "agent-2", Version: "8.15.1"}},
		},
		policies: map[string]*fleet.FullPolicy{
			"policy-1": {
				ID:     "policy-1",
				Inputs: []fleet.Input{gcpInput("gcp-P1", "pp-1", "P1")},
			},
		},
	}

	current, _, report, err := New(api, "gcp").Inspect(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Policies, 1)
	assert.Len(t, report.Policies[0].Agents, 2)
	assert.Len(t, report.Policies[0].Integrations, 1)
	assert.Equal(t, []string{"P1"}, current.Keys())
}

func TestInspect_FiltersNonGCPInputs(t *testing.T) {
	system := fleet.Input{
		Name:            "system-metrics",
		PackagePolicyID: "pp-sys",
		Meta:            fleet.InputMeta{Package: fleet.PackageRef{Name: "system", Version: "1.60.0"}},
		Streams:         []fleet.Stream{{ProjectID: "ignored"}},
	}
	api := &fakeAPI{
		agents: []fleet.Agent{
			{PolicyID: "policy-1", Agent: fleet.AgentMeta{ID: "agent-1", Version: "8.15.0"}},
		},
		policies: map[string]*fleet.FullPolicy{
			"policy-1": {
				ID:     "policy-1",
				Inputs: []fleet.Input{system, gcpInput("gcp-P1", "pp-1", "P1")},
			},
		},
	}

	current, _, report, err := New(api, "gcp").Inspect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"P1"}, current.Keys())
	require.Len(t, report.Policies[0].Integrations, 1)
	assert.Equal(t, "gcp-P1", report.Policies[0].Integrations[0].Name)
}

func TestInspect_NoAgentsIsNotFound(t *testing.T) {
	api := &fakeAPI{}

	_, _, _, err := New(api, "gcp").Inspect(context.Background())
	assert.ErrorIs(t, err, fleet.ErrNotFound)
}

func TestInspect_AgentListFailureIsFatal(t *testing.T) {
	api := &fakeAPI{agentsErr: errors.New("connection refused")}

	_, _, _, err := New(api, "gcp").Inspect(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fleet.ErrNotFound)
}

func TestInspect_ParentPolicyIsLastAgentPolicy(t *testing.T) {
	api := &fakeAPI{
		agents: []fleet.Agent{
			{PolicyID: "policy-1", Agent: fleet.AgentMeta{ID: "agent-1", Version: "8.15.0"}},
			{PolicyID: "policy-2", Agent: fleet.AgentMeta{ID: "agent-2", Version: "8.15.0"}},
		},
		policies: map[string]*fleet.FullPolicy{
			"policy-1": {ID: "policy-1"},
			"policy-2": {ID: "policy-2"},
		},
	}

	_, parentID, report, err := New(api, "gcp").Inspect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "policy-2", parentID)
	assert.Len(t, report.Policies, 2)
}
