package kernel

import (
	"context"
	"time"

	"github.com/devmesh-org/taskmesh/internal/apperrors"
	"github.com/devmesh-org/taskmesh/pkg/models"
	"github.com/google/uuid"
)

// StartWorkSession opens a session for agentID on taskID, failing NotFound
// if the task is not owned by this project and Forbidden if the branch's
// assigned agent is not the requesting agent (spec §4.1.a, §5: session
// creation is where the "agent registered AND assigned to the task's
// branch" precondition of §3 is enforced).
func (k *Kernel) StartWorkSession(ctx context.Context, projectID, agentID string, taskID uuid.UUID, maxDuration *time.Duration) (*models.WorkSession, error) {
	p, err := k.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	task, err := k.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	branch, ok := p.Branches[task.BranchID.String()]
	if !ok {
		return nil, apperrors.NotFound("task", taskID.String())
	}
	if branch.AssignedAgentID == nil || *branch.AssignedAgentID != agentID {
		return nil, apperrors.Forbidden("agent %s is not assigned to branch %s", agentID, branch.ID)
	}

	session, err := models.NewWorkSession(projectID, agentID, taskID, task.BranchID, maxDuration)
	if err != nil {
		return nil, err
	}
	if err := k.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	if agent, ok := p.Agents[agentID]; ok {
		agent.AddActiveTask(taskID.String())
		_ = k.projects.UpsertAgent(ctx, projectID, agent)
	}
	return session, nil
}

// PauseSession/ResumeSession/CompleteSession/CancelSession are thin
// load-mutate-persist wrappers around the WorkSession state machine (spec
// §4.1.e).
func (k *Kernel) PauseSession(ctx context.Context, id uuid.UUID) error {
	return k.mutateSession(ctx, id, (*models.WorkSession).Pause)
}

func (k *Kernel) ResumeSession(ctx context.Context, id uuid.UUID) error {
	return k.mutateSession(ctx, id, (*models.WorkSession).Resume)
}

func (k *Kernel) CompleteSession(ctx context.Context, id uuid.UUID) error {
	return k.mutateSession(ctx, id, (*models.WorkSession).Complete)
}

func (k *Kernel) CancelSession(ctx context.Context, id uuid.UUID) error {
	return k.mutateSession(ctx, id, (*models.WorkSession).Cancel)
}

func (k *Kernel) mutateSession(ctx context.Context, id uuid.UUID, mutate func(*models.WorkSession) error) error {
	s, err := k.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := mutate(s); err != nil {
		return err
	}
	if s.Status != models.SessionActive && s.Status != models.SessionPaused {
		k.releaseSessionLocks(ctx, s)
	}
	return k.sessions.Update(ctx, s)
}

// releaseSessionLocks clears the project's advisory resource locks and the
// agent's active-task entry for a session that has reached a terminal
// state (spec §4.1.e).
func (k *Kernel) releaseSessionLocks(ctx context.Context, s *models.WorkSession) {
	for key := range s.ResourcesLocked {
		_ = k.projects.ReleaseResourceLock(ctx, s.ProjectID, key)
	}
	agent, err := k.projects.GetAgent(ctx, s.AgentID)
	if err == nil {
		agent.RemoveActiveTask(s.TaskID.String())
		_ = k.projects.UpsertAgent(ctx, s.ProjectID, agent)
	}
}

// LockResource/UnlockResource manage a session's advisory resource locks,
// mirroring the change into the project aggregate atomically with the
// session update (spec §5: "must be acquired/released atomically with
// session state transitions").
func (k *Kernel) LockResource(ctx context.Context, sessionID uuid.UUID, resourceKey string) error {
	s, err := k.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	s.LockResource(resourceKey)
	if err := k.projects.UpsertResourceLock(ctx, s.ProjectID, resourceKey, s.AgentID); err != nil {
		return err
	}
	return k.sessions.Update(ctx, s)
}

func (k *Kernel) UnlockResource(ctx context.Context, sessionID uuid.UUID, resourceKey string) error {
	s, err := k.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	s.UnlockResource(resourceKey)
	if err := k.projects.ReleaseResourceLock(ctx, s.ProjectID, resourceKey); err != nil {
		return err
	}
	return k.sessions.Update(ctx, s)
}

// Sweep scans every active/paused session older than its max_duration and
// times it out, releasing resource locks and the agent's active-task entry
// (spec §4.1.e, §5: "sweeps are idempotent"). It is driven by an external
// scheduler (cmd/server wires robfig/cron to call this periodically).
func (k *Kernel) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	candidates, err := k.sessions.ListActiveOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	timedOut := 0
	for _, s := range candidates {
		if !s.IsTimedOut() {
			continue
		}
		if err := s.TimeoutNow(); err != nil {
			k.logger.Warn("sweep: session timeout transition failed", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
			continue
		}
		k.releaseSessionLocks(ctx, s)
		if err := k.sessions.Update(ctx, s); err != nil {
			return timedOut, err
		}
		timedOut++
		k.metrics.IncrementCounter("kernel_sessions_timed_out_total", 1)
	}
	return timedOut, nil
}

// Conflict describes two sessions contending for the same resource key
// (spec §4.1.f).
type Conflict struct {
	ResourceKey string
	Older       *models.WorkSession
	Newer       *models.WorkSession
}

// DetectConflicts finds every pair of active project sessions holding the
// same resource key (spec §4.1.f).
func (k *Kernel) DetectConflicts(ctx context.Context, projectID string) ([]Conflict, error) {
	sessions, err := k.sessions.ListActive(ctx, projectID)
	if err != nil {
		return nil, err
	}
	holders := map[string][]*models.WorkSession{}
	for _, s := range sessions {
		for key := range s.ResourcesLocked {
			holders[key] = append(holders[key], s)
		}
	}
	var conflicts []Conflict
	for key, holding := range holders {
		if len(holding) < 2 {
			continue
		}
		older, newer := holding[0], holding[1]
		if newer.StartedAt.Before(older.StartedAt) {
			older, newer = newer, older
		}
		conflicts = append(conflicts, Conflict{ResourceKey: key, Older: older, Newer: newer})
	}
	return conflicts, nil
}

// ResolveConflict applies the spec's default, asymmetric policy: the
// older session releases the resource, the newer keeps it (spec §4.1.f,
// flagged as an open design question in DESIGN.md — implemented as
// specified, not re-litigated).
func (k *Kernel) ResolveConflict(ctx context.Context, c Conflict) error {
	if err := k.UnlockResource(ctx, c.Older.ID, c.ResourceKey); err != nil {
		return err
	}
	// UnlockResource drops the project's entry for the key outright; record
	// the newer session as its holder again.
	return k.projects.UpsertResourceLock(ctx, c.Newer.ProjectID, c.ResourceKey, c.Newer.AgentID)
}
