package cli

import (
	"fmt"

	"github.com/fleetsync-io/fleetsync/internal/config"
	"github.com/fleetsync-io/fleetsync/internal/engine"
	"github.com/fleetsync-io/fleetsync/internal/fleet"
	"github.com/fleetsync-io/fleetsync/internal/inspect"
	"github.com/fleetsync-io/fleetsync/internal/inventory"
	"github.com/fleetsync-io/fleetsync/internal/ir"
	"github.com/fleetsync-io/fleetsync/internal/logging"
	"github.com/fleetsync-io/fleetsync/internal/state"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// runSync performs one full reconcile cycle. Fatal conditions (missing
// configuration, failed reads, nothing to reconcile against) return an error
// and a nonzero exit; individual write failures are logged and reported but
// do not affect the exit code.
func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel)

	store, err := state.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer store.Close()

	fleetAPI := fleet.NewClient(cfg.KibanaEndpoint, cfg.APIKey)
	inv := inventory.NewGCPProjects(cfg.QuotaProject)
	inspector := inspect.New(fleetAPI, cfg.AgentTag)
	eng := engine.New(fleetAPI, cfg.MasterPolicyName)
	ignore := ir.NewIgnoreSet(cfg.IgnoreProjects...)

	// 1. Authoritative inventory
	active, err := inv.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active projects: %w", err)
	}
	fmt.Printf("Active GCP projects: %v\n", active)

	// 2. Deployed configuration
	current, agentPolicyID, inspection, err := inspector.Inspect(ctx)
	if err != nil {
		return err
	}
	fmt.Println("\nCurrent fleet configuration:")
	renderInspection(inspection)
	fmt.Printf("Agent configured projects: %v\n", current.Keys())

	// 3. Diff and apply
	plan := engine.Diff(active, current, ignore)
	if plan.Empty() {
		fmt.Println("\nNo new or removed projects. Integrations are up-to-date.")
	} else {
		fmt.Printf("\nProjects needing integrations: %v\n", plan.ToCreate)
		fmt.Printf("Integrations for removed projects: %v\n", plan.ToDelete)
	}

	applied, err := eng.Apply(ctx, plan, current, agentPolicyID)
	if err != nil {
		return err
	}

	// 4. Revision-gated template sync
	updated, updates, err := eng.SyncTemplateChanges(ctx, current, plan.ToDelete, ignore, agentPolicyID, store)
	if err != nil {
		return err
	}

	renderSummary(plan, applied, updated, updates)
	return nil
}

func renderInspection(report *ir.InspectionReport) {
	data, err := yaml.Marshal(report)
	if err != nil {
		logging.Warn("failed to render inspection report", "error", err)
		return
	}
	fmt.Print(string(data))
}

func renderSummary(plan *ir.Plan, applied *ir.Report, updated bool, updates *ir.Report) {
	created := plan.Summary.Create
	deleted := plan.Summary.Delete
	var updatedCount int
	if updated {
		updatedCount = len(updates.Outcomes)
	}
	failed := applied.FailureCount() + updates.FailureCount()

	fmt.Printf("\nSync complete! Integrations: %d added, %d removed, %d updated.\n",
		created-countFailed(applied, ir.ActionCreate),
		deleted-countFailed(applied, ir.ActionDelete),
		updatedCount-updates.FailureCount())

	if failed > 0 {
		fmt.Printf("%d operation(s) failed; the next run will re-converge:\n", failed)
		for _, o := range append(applied.Failed(), updates.Failed()...) {
			fmt.Printf("  %s %s: %v\n", o.Action, o.Project, o.Err)
		}
	}
}

func countFailed(report *ir.Report, action ir.Action) int {
	var n int
	for _, o := range report.Failed() {
		if o.Action == action {
			n++
		}
	}
	return n
}
