package engine

import (
	"context"
	"fmt"

	"github.com/fleetsync-io/fleetsync/internal/ir"
	"github.com/fleetsync-io/fleetsync/internal/logging"
)

// Apply executes a plan against Fleet: one create per new project, derived
// from the master template, and one delete per vanished project. A failed
// write is recorded in the report and logged; it never blocks the remaining
// projects, since the next scheduled run re-converges whatever is left.
//
// Only a failure to read the master template aborts: without it no create
// can be derived.
func (e *Engine) Apply(ctx context.Context, plan *ir.Plan, current *ir.CurrentState, agentPolicyID string) (*ir.Report, error) {
	report := &ir.Report{}

	if len(plan.ToCreate) > 0 {
		template, err := e.masterTemplate(ctx)
		if err != nil {
			return report, err
		}
		for _, project := range plan.ToCreate {
			req := template.DeriveRequest(project, agentPolicyID)
			status, err := e.api.CreatePackagePolicy(ctx, req)
			err = writeOutcome(status, err)
			report.Add(project, ir.ActionCreate, err)
			if err != nil {
				logging.Warn("failed to create integration", "project", project, "error", err)
				continue
			}
			logging.Info("created integration", "project", project, "agent_policy", agentPolicyID)
		}
	}

	for _, project := range plan.ToDelete {
		packagePolicyID, ok := current.ID(project)
		if !ok {
			// Diff only emits deletes for recorded projects; a miss here
			// means the caller passed mismatched inputs.
			report.Add(project, ir.ActionDelete, fmt.Errorf("project %s not in current state", project))
			continue
		}
		status, err := e.api.DeletePackagePolicy(ctx, packagePolicyID)
		err = writeOutcome(status, err)
		report.Add(project, ir.ActionDelete, err)
		if err != nil {
			logging.Warn("failed to delete integration", "project", project, "package_policy", packagePolicyID, "error", err)
			continue
		}
		logging.Info("deleted integration", "project", project, "package_policy", packagePolicyID)
	}

	return report, nil
}

// writeOutcome folds a write's HTTP status and transport error into a single
// per-project error.
func writeOutcome(status int, err error) error {
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("fleet returned status %d", status)
	}
	return nil
}
