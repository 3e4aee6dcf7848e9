package task

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/events"
	"github.com/calfield/brief-api/internal/platform/metrics"
	"github.com/calfield/brief-api/internal/store"
)

type engineFixture struct {
	engine            *Engine
	db                *sql.DB
	mock              sqlmock.Sqlmock
	taskStore         *fakeTaskStore
	tenantStore       *fakeTenantStore
	summaryStore      *fakeSummaryStore
	notificationStore *fakeNotificationStore
	summarizer        *fakeSummarizer
	emitter           *fakeEmitter
}

func newEngineFixture(t *testing.T, devMode bool) *engineFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &engineFixture{
		db:                db,
		mock:              mock,
		taskStore:         newFakeTaskStore(),
		tenantStore:       newFakeTenantStore(),
		summaryStore:      newFakeSummaryStore(),
		notificationStore: newFakeNotificationStore(),
		summarizer:        &fakeSummarizer{text: "a concise summary"},
		emitter:           &fakeEmitter{},
	}

	f.engine, err = NewEngine(
		db,
		f.taskStore,
		f.tenantStore,
		f.summaryStore,
		f.notificationStore,
		f.summarizer,
		f.emitter,
		metrics.New(),
		testLogger(),
		devMode,
	)
	require.NoError(t, err)

	return f
}

func (f *engineFixture) addTenant(t *testing.T, channels ...domain.Channel) *domain.Tenant {
	t.Helper()

	if len(channels) == 0 {
		channels = []domain.Channel{domain.ChannelEmail}
	}
	tenant, err := domain.NewTenant("Acme Corp", "ops@acme.example", "+15550100", "tasks.example.com", channels)
	require.NoError(t, err)
	f.tenantStore.add(tenant)
	return tenant
}

func (f *engineFixture) addPendingTask(t *testing.T, tenantID uuid.UUID) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(tenantID, "Summarize this text.")
	require.NoError(t, err)
	f.taskStore.add(task)
	return task
}

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = NewEngine(nil, newFakeTaskStore(), newFakeTenantStore(), newFakeSummaryStore(),
		newFakeNotificationStore(), &fakeSummarizer{}, &fakeEmitter{}, metrics.New(), testLogger(), false)
	require.ErrorIs(t, err, ErrNilDB)

	_, err = NewEngine(db, nil, newFakeTenantStore(), newFakeSummaryStore(),
		newFakeNotificationStore(), &fakeSummarizer{}, &fakeEmitter{}, metrics.New(), testLogger(), false)
	require.ErrorIs(t, err, ErrNilTaskStore)

	_, err = NewEngine(db, newFakeTaskStore(), newFakeTenantStore(), newFakeSummaryStore(),
		newFakeNotificationStore(), nil, &fakeEmitter{}, metrics.New(), testLogger(), false)
	require.ErrorIs(t, err, ErrNilSummarizer)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	tenant := f.addTenant(t)

	task, err := f.engine.CreateTask(context.Background(), tenant.ID, "Summarize this text.")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, tenant.ID, task.TenantID)

	// The task is durable in the store.
	stored := f.taskStore.get(task.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.TaskStatusPending, stored.Status)

	// A task_created event went out carrying the task ID.
	emitted := f.emitter.emitted()
	require.Len(t, emitted, 1)
	assert.Equal(t, events.EventTypeTaskCreated, emitted[0].Type)

	var payload events.TaskCreatedPayload
	require.NoError(t, emitted[0].UnmarshalPayload(&payload))
	assert.Equal(t, task.ID, payload.TaskID)
}

func TestCreateTaskUnknownTenant(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)

	_, err := f.engine.CreateTask(context.Background(), uuid.New(), "text")
	require.ErrorIs(t, err, store.ErrTenantNotFound)
	assert.Empty(t, f.emitter.emitted())
}

func TestCreateTaskEmptyText(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	tenant := f.addTenant(t)

	_, err := f.engine.CreateTask(context.Background(), tenant.ID, "")
	require.ErrorIs(t, err, domain.ErrEmptyTaskText)
}

func TestCreateTaskEmitFailure(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	f.emitter.err = errors.New("bus unavailable")
	tenant := f.addTenant(t)

	// The task survives a failed emit; the recovery sweeper owns it now.
	task, err := f.engine.CreateTask(context.Background(), tenant.ID, "Summarize this text.")
	require.NoError(t, err)
	require.NotNil(t, f.taskStore.get(task.ID))
}

func TestRunLifecycleCompletion(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	tenant := f.addTenant(t, domain.ChannelEmail, domain.ChannelWhatsApp)
	task := f.addPendingTask(t, tenant.ID)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	ran, err := f.engine.RunLifecycle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, ran)

	// The task landed completed with the summary text as its output.
	stored := f.taskStore.get(task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	assert.Equal(t, "a concise summary", stored.OutputText)

	// Exactly one summary, tied to the task and tenant.
	summaries := f.summaryStore.all()
	require.Len(t, summaries, 1)
	assert.Equal(t, task.ID, summaries[0].TaskID)
	assert.Equal(t, tenant.ID, summaries[0].TenantID)
	assert.Equal(t, "a concise summary", summaries[0].Text)

	// One pending notification event per enabled channel.
	evts := f.notificationStore.all()
	require.Len(t, evts, 2)
	channels := map[domain.Channel]bool{}
	for _, e := range evts {
		assert.Equal(t, domain.NotificationStatusPending, e.Status)
		assert.Equal(t, summaries[0].ID, e.SummaryID)
		assert.Equal(t, tenant.ID, e.TenantID)
		channels[e.Channel] = true
	}
	assert.True(t, channels[domain.ChannelEmail])
	assert.True(t, channels[domain.ChannelWhatsApp])

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRunLifecycleFailure(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	f.summarizer.err = errors.New("provider exploded")
	tenant := f.addTenant(t)
	task := f.addPendingTask(t, tenant.ID)

	// Recording the failure is a successful lifecycle run.
	ran, err := f.engine.RunLifecycle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, ran)

	stored := f.taskStore.get(task.ID)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)
	// Production output is the fixed sentinel, never the raw provider error.
	assert.Equal(t, domain.FailedTaskOutput, stored.OutputText)

	assert.Empty(t, f.summaryStore.all())
	assert.Empty(t, f.notificationStore.all())
}

func TestRunLifecycleFailureDevMode(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, true)
	f.summarizer.err = errors.New("provider exploded")
	tenant := f.addTenant(t)
	task := f.addPendingTask(t, tenant.ID)

	_, err := f.engine.RunLifecycle(context.Background(), task.ID)
	require.NoError(t, err)

	stored := f.taskStore.get(task.ID)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)
	assert.Equal(t, "provider exploded", stored.OutputText)
}

func TestRunLifecycleAlreadyClaimed(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	tenant := f.addTenant(t)
	task := f.addPendingTask(t, tenant.ID)
	f.taskStore.get(task.ID).Status = domain.TaskStatusProcessing

	// Losing the claim race is not an error and triggers no work.
	ran, err := f.engine.RunLifecycle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, 0, f.summarizer.calls)
}

func TestRunLifecycleMissingTask(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)

	_, err := f.engine.RunLifecycle(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestRunLifecycleSummaryWriteRollsBack(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	f.summaryStore.createErr = errors.New("disk full")
	tenant := f.addTenant(t)
	task := f.addPendingTask(t, tenant.ID)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.engine.RunLifecycle(context.Background(), task.ID)
	require.Error(t, err)

	// Nothing was fanned out and the task never reached completed.
	assert.Empty(t, f.notificationStore.all())
	stored := f.taskStore.get(task.ID)
	assert.NotEqual(t, domain.TaskStatusCompleted, stored.Status)

	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRunLifecycleFanOutFailureKeepsTaskCompleted(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, false)
	f.notificationStore.createErr = errors.New("disk full")
	tenant := f.addTenant(t)
	task := f.addPendingTask(t, tenant.ID)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	// Fan-out is not a precondition for task success: the summary exists, so
	// the task completes even when no notification event could be written.
	ran, err := f.engine.RunLifecycle(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, ran)

	stored := f.taskStore.get(task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	assert.Equal(t, "a concise summary", stored.OutputText)

	require.Len(t, f.summaryStore.all(), 1)
	assert.Empty(t, f.notificationStore.all())

	require.NoError(t, f.mock.ExpectationsWereMet())
}
