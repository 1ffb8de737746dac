// Package lifecycle owns the report status state machine.
package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"go-hazardwatch/notify"
	"go-hazardwatch/store"
	"go-hazardwatch/types"
)

var (
	// ErrInvalidStatus means the requested target status is not one of
	// Acknowledged, Resolved or Rejected.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition means the report is already in a terminal state.
	ErrInvalidTransition = errors.New("report is in a terminal state")

	// ErrForbidden means the actor's role may not transition reports.
	ErrForbidden = errors.New("actor is not allowed to update report status")
)

// Actor identifies who requested a transition.
type Actor struct {
	ID   string
	Role string
}

const (
	RoleAuthority = "authority"
	RoleAdmin     = "admin"
)

// CanTransition reports whether the actor's role may drive the state machine.
func (a Actor) CanTransition() bool {
	return a.Role == RoleAuthority || a.Role == RoleAdmin
}

// Manager validates and persists status transitions and fires the
// reporter notification afterwards.
type Manager struct {
	store    store.Store
	notifier notify.Notifier
}

func NewManager(s store.Store, n notify.Notifier) *Manager {
	return &Manager{store: s, notifier: n}
}

// allowedTargets: a transition may only land on one of these. Pending is
// the initial state and never a target.
func allowedTarget(s types.Status) bool {
	return s == types.StatusAcknowledged || s == types.StatusResolved || s == types.StatusRejected
}

// Transition moves a report to newStatus, recording authority notes and
// the update time. Validation happens before any persistence; the
// notification runs strictly after persistence succeeds and its outcome
// never affects the returned result.
func (m *Manager) Transition(ctx context.Context, id string, newStatus types.Status, notes string, actor Actor) (types.Report, error) {
	if !actor.CanTransition() {
		return types.Report{}, ErrForbidden
	}
	if !allowedTarget(newStatus) {
		return types.Report{}, ErrInvalidStatus
	}

	updated, err := m.store.Update(ctx, id, func(r *types.Report) error {
		if r.Status.Terminal() {
			return ErrInvalidTransition
		}
		r.Status = newStatus
		r.AuthorityNotes = notes
		r.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return types.Report{}, err
	}

	if updated.ReporterID != "" {
		// Fire and forget: the HTTP response must not wait on delivery,
		// and a delivery failure must not fail the transition.
		go func(r types.Report) {
			nctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := m.notifier.NotifyStatusChange(nctx, r.ReporterID, r.Title, r.Status, r.AuthorityNotes); err != nil {
				log.Printf("notification failed for report %s: %v", r.ID, err)
			}
		}(updated)
	}

	return updated, nil
}
