package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hazardwatch/store"
	"go-hazardwatch/types"
)

type sentNotification struct {
	reporterID string
	title      string
	status     types.Status
	notes      string
}

// recordingNotifier captures deliveries on a channel so tests can wait for
// the fire-and-forget goroutine.
type recordingNotifier struct {
	sent chan sentNotification
	err  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan sentNotification, 8)}
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, reporterID, title string, status types.Status, notes string) error {
	n.sent <- sentNotification{reporterID: reporterID, title: title, status: status, notes: notes}
	return n.err
}

func newTestManager(t *testing.T, notifier *recordingNotifier) (*Manager, *store.FileStore) {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewManager(fs, notifier), fs
}

func seedReport(t *testing.T, fs *store.FileStore, status types.Status, reporterID string) types.Report {
	t.Helper()
	r := types.Report{
		ID:         types.NewReportID(),
		Category:   types.CategoryMunicipality,
		Title:      "Flooded underpass",
		Type:       "Flood",
		CreatedAt:  time.Now().UTC(),
		Status:     status,
		ReporterID: reporterID,
	}
	require.NoError(t, fs.Create(context.Background(), r))
	return r
}

var authority = Actor{ID: "auth-1", Role: RoleAuthority}

func TestTransition_Acknowledge(t *testing.T) {
	notifier := newRecordingNotifier()
	m, fs := newTestManager(t, notifier)
	r := seedReport(t, fs, types.StatusPending, "user-7")

	updated, err := m.Transition(context.Background(), r.ID, types.StatusAcknowledged, "crew dispatched", authority)
	require.NoError(t, err)
	assert.Equal(t, types.StatusAcknowledged, updated.Status)
	assert.Equal(t, "crew dispatched", updated.AuthorityNotes)
	assert.False(t, updated.UpdatedAt.IsZero())

	select {
	case n := <-notifier.sent:
		assert.Equal(t, "user-7", n.reporterID)
		assert.Equal(t, "Flooded underpass", n.title)
		assert.Equal(t, types.StatusAcknowledged, n.status)
		assert.Equal(t, "crew dispatched", n.notes)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never dispatched")
	}
}

func TestTransition_AdminAllowed(t *testing.T) {
	m, fs := newTestManager(t, newRecordingNotifier())
	r := seedReport(t, fs, types.StatusPending, "")

	_, err := m.Transition(context.Background(), r.ID, types.StatusResolved, "", Actor{ID: "admin-1", Role: RoleAdmin})
	assert.NoError(t, err)
}

func TestTransition_CitizenForbidden(t *testing.T) {
	m, fs := newTestManager(t, newRecordingNotifier())
	r := seedReport(t, fs, types.StatusPending, "user-7")

	_, err := m.Transition(context.Background(), r.ID, types.StatusResolved, "", Actor{ID: "user-7", Role: "citizen"})
	assert.ErrorIs(t, err, ErrForbidden)

	// The role check runs before any persistence.
	got, err := fs.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestTransition_InvalidStatus(t *testing.T) {
	m, fs := newTestManager(t, newRecordingNotifier())
	r := seedReport(t, fs, types.StatusPending, "")

	_, err := m.Transition(context.Background(), r.ID, types.Status("Deleted"), "", authority)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := fs.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestTransition_PendingIsNotATarget(t *testing.T) {
	m, fs := newTestManager(t, newRecordingNotifier())
	r := seedReport(t, fs, types.StatusAcknowledged, "")

	_, err := m.Transition(context.Background(), r.ID, types.StatusPending, "", authority)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransition_FromAcknowledged(t *testing.T) {
	m, fs := newTestManager(t, newRecordingNotifier())
	r := seedReport(t, fs, types.StatusAcknowledged, "")

	updated, err := m.Transition(context.Background(), r.ID, types.StatusResolved, "fixed", authority)
	require.NoError(t, err)
	assert.Equal(t, types.StatusResolved, updated.Status)
}

func TestTransition_TerminalStateRejected(t *testing.T) {
	for _, terminal := range []types.Status{types.StatusResolved, types.StatusRejected} {
		t.Run(string(terminal), func(t *testing.T) {
			m, fs := newTestManager(t, newRecordingNotifier())
			r := seedReport(t, fs, terminal, "")

			_, err := m.Transition(context.Background(), r.ID, types.StatusAcknowledged, "", authority)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			got, err := fs.Get(context.Background(), r.ID)
			require.NoError(t, err)
			assert.Equal(t, terminal, got.Status)
		})
	}
}

func TestTransition_UnknownReport(t *testing.T) {
	m, _ := newTestManager(t, newRecordingNotifier())

	_, err := m.Transition(context.Background(), "missing", types.StatusResolved, "", authority)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransition_NotificationFailureSwallowed(t *testing.T) {
	notifier := newRecordingNotifier()
	notifier.err = errors.New("smtp down")
	m, fs := newTestManager(t, notifier)
	r := seedReport(t, fs, types.StatusPending, "user-7")

	updated, err := m.Transition(context.Background(), r.ID, types.StatusResolved, "", authority)
	require.NoError(t, err)
	assert.Equal(t, types.StatusResolved, updated.Status)

	select {
	case <-notifier.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never attempted")
	}
}

func TestTransition_AnonymousReporterSkipsNotification(t *testing.T) {
	notifier := newRecordingNotifier()
	m, fs := newTestManager(t, notifier)
	r := seedReport(t, fs, types.StatusPending, "")

	_, err := m.Transition(context.Background(), r.ID, types.StatusResolved, "", authority)
	require.NoError(t, err)

	select {
	case n := <-notifier.sent:
		t.Fatalf("unexpected notification for anonymous report: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}
