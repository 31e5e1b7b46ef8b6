package ir

type Action string

const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
	ActionUpdate Action = "update"
)

// Outcome records the result of a single write against Fleet.
type Outcome struct {
	Project string
	Action  Action
	Err     error
}

// Report enumerates per-project outcomes of an apply or update pass.
// Failures are recorded here and logged; they never abort sibling writes.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) Add(project string, action Action, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{Project: project, Action: action, Err: err})
}

// Failed returns the outcomes that did not succeed.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r *Report) FailureCount() int {
	return len(r.Failed())
}

// InspectionReport is a human-readable projection of the fleet's current GCP
// monitoring configuration. It is observational only and never feeds back
// into reconciliation decisions.
type InspectionReport struct {
	Policies []*PolicyReport `yaml:"policies"`
}

type PolicyReport struct {
	ID           string              `yaml:"id"`
	Revision     int                 `yaml:"revision"`
	Agents       []AgentReport       `yaml:"agents"`
	Integrations []IntegrationReport `yaml:"integrations"`
}

type AgentReport struct {
	ID      string `yaml:"id"`
	Version string `yaml:"version"`
}

type IntegrationReport struct {
	Name            string         `yaml:"name"`
	PackagePolicyID string         `yaml:"packagePolicyId"`
	Streams         []StreamReport `yaml:"streams"`
}

type StreamReport struct {
	Project  string `yaml:"project"`
	Dataset  string `yaml:"dataset"`
	Datatype string `yaml:"datatype"`
}
