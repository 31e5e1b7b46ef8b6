package ir

// Plan represents the calculated set of reconciliation changes.
type Plan struct {
	ToCreate []string
	ToDelete []string
	Summary  PlanSummary
}

type PlanSummary struct {
	Create int
	Delete int
}

// Empty reports whether the plan contains no changes.
func (p *Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToDelete) == 0
}
