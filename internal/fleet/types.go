package fleet

// Agent is one enrolled Elastic Agent as returned by the agents listing.
type Agent struct {
	PolicyID string    `json:"policy_id"`
	Agent    AgentMeta `json:"agent"`
}

type AgentMeta struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// FullPolicy is the compiled form of an agent policy, with every integration
// flattened into inputs.
type FullPolicy struct {
	ID       string  `json:"id"`
	Revision int     `json:"revision"`
	Inputs   []Input `json:"inputs"`
}

// Input is one integration input inside a compiled agent policy.
type Input struct {
	Name            string    `json:"name"`
	PackagePolicyID string    `json:"package_policy_id"`
	Meta            InputMeta `json:"meta"`
	Streams         []Stream  `json:"streams"`
}

type InputMeta struct {
	Package PackageRef `json:"package"`
}

type PackageRef struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
}

// Stream is one data stream of an input, carrying the GCP project it reads
// from and the dataset/type it ships.
type Stream struct {
	ProjectID  string     `json:"project_id"`
	DataStream DataStream `json:"data_stream"`
}

type DataStream struct {
	Dataset string `json:"dataset"`
	Type    string `json:"type"`
}

// AgentPolicy is the editable form of an agent policy, as returned by the
// policy listing. With full=true the attached package policies are included.
type AgentPolicy struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Revision        int             `json:"revision"`
	PackagePolicies []PackagePolicy `json:"package_policies"`
}

// PackagePolicy is an integration policy as Fleet returns it. The id,
// version, revision and audit fields are server-assigned; they are read here
// but never echoed back on writes (see PackagePolicyRequest).
type PackagePolicy struct {
	ID          string         `json:"id"`
	Version     string         `json:"version"`
	Revision    int            `json:"revision"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Namespace   string         `json:"namespace"`
	PolicyID    string         `json:"policy_id"`
	Enabled     bool           `json:"enabled"`
	Package     PackageRef     `json:"package"`
	Vars        map[string]Var `json:"vars"`
	// Inputs carry the package-specific stream configuration. They are
	// submitted back unchanged, so their inner shape stays opaque here.
	Inputs    []map[string]any `json:"inputs"`
	CreatedAt string           `json:"created_at"`
	CreatedBy string           `json:"created_by"`
	UpdatedAt string           `json:"updated_at"`
	UpdatedBy string           `json:"updated_by"`
}

// Var is a single integration variable.
type Var struct {
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

// VarProjectID is the variable carrying the GCP project an integration
// policy monitors.
const VarProjectID = "project_id"

// PackagePolicyRequest is the write body for package policy creates and
// updates. Server-assigned fields have no place in this struct, which is
// what guarantees they are stripped from every submission.
type PackagePolicyRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Namespace   string           `json:"namespace,omitempty"`
	PolicyID    string           `json:"policy_id"`
	Enabled     bool             `json:"enabled"`
	Package     PackageRef       `json:"package"`
	Vars        map[string]Var   `json:"vars,omitempty"`
	Inputs      []map[string]any `json:"inputs,omitempty"`
}

// DeriveRequest builds a write body for one project from this policy acting
// as the template: the project ID is substituted into the policy name and
// the project_id variable, and the target agent policy is set. The receiver
// is not modified, so a memoized template can derive many requests.
func (p *PackagePolicy) DeriveRequest(projectID, agentPolicyID string) *PackagePolicyRequest {
	vars := make(map[string]Var, len(p.Vars))
	for name, v := range p.Vars {
		vars[name] = v
	}
	vars[VarProjectID] = Var{Value: projectID, Type: p.Vars[VarProjectID].Type}

	return &PackagePolicyRequest{
		Name:        projectID,
		Description: p.Description,
		Namespace:   p.Namespace,
		PolicyID:    agentPolicyID,
		Enabled:     p.Enabled,
		Package:     p.Package,
		Vars:        vars,
		Inputs:      p.Inputs,
	}
}
