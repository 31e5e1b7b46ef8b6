// Package engine implements the reconciliation core: diffing active GCP
// projects against deployed integration policies and applying the minimal
// set of creates, deletes and template-driven updates.
package engine

import (
	"context"
	"fmt"

	"github.com/fleetsync-io/fleetsync/internal/fleet"
	"github.com/fleetsync-io/fleetsync/internal/logging"
)

// RevisionStore persists the template revision last seen by a completed
// update pass.
type RevisionStore interface {
	Has() (bool, error)
	Get() (int, error)
	Set(revision int) error
	Insert(revision int) error
}

// Engine drives the Fleet API to make deployed configuration match the
// active project set. One Engine serves one run; the master template is
// fetched at most once and memoized for the lifetime of the Engine.
type Engine struct {
	api              fleet.API
	masterPolicyName string

	template *fleet.PackagePolicy
}

func New(api fleet.API, masterPolicyName string) *Engine {
	return &Engine{
		api:              api,
		masterPolicyName: masterPolicyName,
	}
}

// masterTemplate returns the single integration policy attached to the
// master agent policy. The master policy is the operator-curated source of
// truth for what every per-project integration should look like.
func (e *Engine) masterTemplate(ctx context.Context) (*fleet.PackagePolicy, error) {
	if e.template != nil {
		return e.template, nil
	}

	kuery := fmt.Sprintf("name:%q", e.masterPolicyName)
	policies, err := e.api.PoliciesByQuery(ctx, kuery, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch master agent policy: %w", err)
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("master agent policy %q: %w", e.masterPolicyName, fleet.ErrNotFound)
	}
	if len(policies[0].PackagePolicies) == 0 {
		return nil, fmt.Errorf("master agent policy %q has no integration policy: %w", e.masterPolicyName, fleet.ErrNotFound)
	}

	e.template = &policies[0].PackagePolicies[0]
	logging.Debug("fetched master template",
		"name", e.template.Name,
		"revision", e.template.Revision)
	return e.template, nil
}
