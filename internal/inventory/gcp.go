// Package inventory lists the externally discovered resources the fleet
// configuration is reconciled against: active GCP projects.
package inventory

import (
	"context"
	"fmt"

	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"github.com/fleetsync-io/fleetsync/internal/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Provider lists currently active resources. Pure read; a failure here is
// fatal for the run.
type Provider interface {
	ListActive(ctx context.Context) ([]string, error)
}

// GCPProjects lists active GCP projects via the Resource Manager API.
// Credentials come from Application Default Credentials.
type GCPProjects struct {
	quotaProject string
}

var _ Provider = (*GCPProjects)(nil)

func NewGCPProjects(quotaProject string) *GCPProjects {
	return &GCPProjects{quotaProject: quotaProject}
}

// ListActive returns the IDs of every project in ACTIVE state visible to the
// caller's credentials.
func (g *GCPProjects) ListActive(ctx context.Context) ([]string, error) {
	client, err := resourcemanager.NewProjectsClient(ctx, option.WithQuotaProject(g.quotaProject))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource manager client: %w", err)
	}
	defer client.Close()

	it := client.SearchProjects(ctx, &resourcemanagerpb.SearchProjectsRequest{
		Query: "state:ACTIVE",
	})

	var projects []string
	for {
		project, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("project search failed: %w", err)
		}
		projects = append(projects, project.GetProjectId())
	}

	logging.Debug("listed active projects", "count", len(projects))
	return projects, nil
}
