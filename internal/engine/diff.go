package engine

import (
	"github.com/fleetsync-io/fleetsync/internal/ir"
)

// Diff computes the changes needed to make the deployed configuration match
// the active project set. Pure set difference: active projects without an
// integration go to ToCreate (in active order, deduplicated), integrations
// whose project left the active set go to ToDelete (in current state order).
// Ignored projects appear in neither list regardless of membership. Inputs
// are not modified.
func Diff(active []string, current *ir.CurrentState, ignore ir.IgnoreSet) *ir.Plan {
	plan := &ir.Plan{}

	activeSet := make(map[string]struct{}, len(active))
	for _, project := range active {
		if _, dup := activeSet[project]; dup {
			continue
		}
		activeSet[project] = struct{}{}
		if ignore.Has(project) {
			continue
		}
		if !current.Has(project) {
			plan.ToCreate = append(plan.ToCreate, project)
		}
	}

	for _, project := range current.Keys() {
		if ignore.Has(project) {
			continue
		}
		if _, ok := activeSet[project]; !ok {
			plan.ToDelete = append(plan.ToDelete, project)
		}
	}

	plan.Summary = ir.PlanSummary{
		Create: len(plan.ToCreate),
		Delete: len(plan.ToDelete),
	}
	return plan
}
