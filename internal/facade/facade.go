package facade

import (
	"github.com/devmesh-org/taskmesh/internal/context"
	"github.com/devmesh-org/taskmesh/internal/kernel"
	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/internal/repository"
	"github.com/devmesh-org/taskmesh/internal/tasks"
)

// Facade composes the three engines and the one repository contract
// (ProjectRepository) that has no dedicated engine of its own — project
// create/get/list/update/delete are plain CRUD with no orchestration
// logic, so they are called directly rather than routed through a fourth
// engine (spec §2: project lifecycle CRUD is not part of the Coordination
// Kernel's 30% share, which covers orchestration over an existing
// project).
type Facade struct {
	kernel   *kernel.Kernel
	taskSvc  *tasks.Service
	ctxEng   *context.Engine
	projects repository.ProjectRepository
	logger   observability.Logger
	metrics  observability.MetricsClient
}

// New constructs a Facade over the given engines.
func New(k *kernel.Kernel, taskSvc *tasks.Service, ctxEng *context.Engine, projects repository.ProjectRepository, logger observability.Logger, metrics observability.MetricsClient) *Facade {
	return &Facade{kernel: k, taskSvc: taskSvc, ctxEng: ctxEng, projects: projects, logger: logger, metrics: metrics}
}
