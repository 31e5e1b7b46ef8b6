package engine

import (
	"context"
	"fmt"

	"github.com/fleetsync-io/fleetsync/internal/ir"
	"github.com/fleetsync-io/fleetsync/internal/logging"
)

// SyncTemplateChanges propagates edits of the master template to every
// managed integration. The template's own revision counter is the change
// signal: when it differs from the revision stored by the last completed
// pass (in either direction), every remaining project — current state minus
// the projects just deleted minus the ignore set — gets an update derived
// from the now-current template.
//
// On the very first run the store is empty; the current revision is recorded
// and no updates are applied. The new revision is persisted after a changed
// pass even when individual updates failed, so a failed update is only
// retried by a later template edit.
//
// Returns whether an update pass ran, the per-project report, and a fatal
// error for template or store failures.
func (e *Engine) SyncTemplateChanges(ctx context.Context, current *ir.CurrentState, deleted []string, ignore ir.IgnoreSet, agentPolicyID string, store RevisionStore) (bool, *ir.Report, error) {
	report := &ir.Report{}

	template, err := e.masterTemplate(ctx)
	if err != nil {
		return false, report, err
	}

	stored, err := store.Has()
	if err != nil {
		return false, report, fmt.Errorf("failed to read revision store: %w", err)
	}
	if !stored {
		if err := store.Insert(template.Revision); err != nil {
			return false, report, fmt.Errorf("failed to record initial revision: %w", err)
		}
		logging.Info("recorded initial template revision", "revision", template.Revision)
		return false, report, nil
	}

	lastSeen, err := store.Get()
	if err != nil {
		return false, report, fmt.Errorf("failed to read revision store: %w", err)
	}
	if lastSeen == template.Revision {
		logging.Debug("template unchanged", "revision", template.Revision)
		return false, report, nil
	}

	logging.Info("template revision changed, updating managed integrations",
		"last_seen", lastSeen,
		"revision", template.Revision)

	deletedSet := make(map[string]struct{}, len(deleted))
	for _, project := range deleted {
		deletedSet[project] = struct{}{}
	}

	for _, project := range current.Keys() {
		if ignore.Has(project) {
			continue
		}
		if _, gone := deletedSet[project]; gone {
			continue
		}
		packagePolicyID, _ := current.ID(project)
		req := template.DeriveRequest(project, agentPolicyID)
		status, err := e.api.UpdatePackagePolicy(ctx, packagePolicyID, req)
		err = writeOutcome(status, err)
		report.Add(project, ir.ActionUpdate, err)
		if err != nil {
			logging.Warn("failed to update integration", "project", project, "package_policy", packagePolicyID, "error", err)
			continue
		}
		logging.Info("updated integration", "project", project, "package_policy", packagePolicyID)
	}

	if err := store.Set(template.Revision); err != nil {
		return true, report, fmt.Errorf("failed to persist revision: %w", err)
	}
	return true, report, nil
}
