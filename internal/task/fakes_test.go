package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/events"
	"github.com/calfield/brief-api/internal/store"
)

// In-memory store fakes shared by the engine and sweeper tests. WithTx is a
// no-op on all of them: the tests assert on the writes themselves, not on
// transaction plumbing.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*domain.Task
	finished  []*domain.Task
	claimErr  error
	finishErr error
	findErr   error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) add(task *domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
}

func (f *fakeTaskStore) get(id uuid.UUID) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	f.add(task)
	return nil
}

func (f *fakeTaskStore) GetForTenant(ctx context.Context, tenantID, taskID uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.TenantID != tenantID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Claim(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if task.Status != domain.TaskStatusPending {
		return nil, store.ErrNotClaimed
	}
	if err := task.MarkProcessing(); err != nil {
		return nil, err
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) Finish(ctx context.Context, task *domain.Task) error {
	if f.finishErr != nil {
		return f.finishErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if stored.Status != domain.TaskStatusProcessing {
		return store.ErrUpdateFailed
	}
	copied := *task
	f.tasks[task.ID] = &copied
	f.finished = append(f.finished, &copied)
	return nil
}

func (f *fakeTaskStore) FindByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.Task, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Task, 0)
	for _, task := range f.tasks {
		if task.Status == status && len(out) < limit {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return f }

type fakeTenantStore struct {
	tenants map[uuid.UUID]*domain.Tenant
	getErr  error
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: make(map[uuid.UUID]*domain.Tenant)}
}

func (f *fakeTenantStore) add(tenant *domain.Tenant) {
	f.tenants[tenant.ID] = tenant
}

func (f *fakeTenantStore) Create(ctx context.Context, tenant *domain.Tenant) error {
	f.add(tenant)
	return nil
}

func (f *fakeTenantStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, store.ErrTenantNotFound
	}
	return tenant, nil
}

func (f *fakeTenantStore) GetByInboundAddress(ctx context.Context, address string) (*domain.Tenant, error) {
	for _, tenant := range f.tenants {
		if tenant.InboundAddress == address {
			return tenant, nil
		}
	}
	return nil, store.ErrTenantNotFound
}

func (f *fakeTenantStore) Update(ctx context.Context, tenant *domain.Tenant) error {
	if _, ok := f.tenants[tenant.ID]; !ok {
		return store.ErrTenantNotFound
	}
	f.tenants[tenant.ID] = tenant
	return nil
}

func (f *fakeTenantStore) WithTx(tx *sql.Tx) store.TenantStore { return f }

type fakeSummaryStore struct {
	mu        sync.Mutex
	summaries map[uuid.UUID]*domain.Summary
	createErr error
	getErr    error
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{summaries: make(map[uuid.UUID]*domain.Summary)}
}

func (f *fakeSummaryStore) add(summary *domain.Summary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[summary.ID] = summary
}

func (f *fakeSummaryStore) all() []*domain.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Summary, 0, len(f.summaries))
	for _, s := range f.summaries {
		out = append(out, s)
	}
	return out
}

func (f *fakeSummaryStore) Create(ctx context.Context, summary *domain.Summary) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.all() {
		if existing.TaskID == summary.TaskID {
			return store.ErrSummaryExists
		}
	}
	f.add(summary)
	return nil
}

func (f *fakeSummaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	summary, ok := f.summaries[id]
	if !ok {
		return nil, store.ErrSummaryNotFound
	}
	return summary, nil
}

func (f *fakeSummaryStore) ListForTenant(ctx context.Context, tenantID uuid.UUID, order domain.ReportOrder) ([]*domain.Summary, error) {
	out := make([]*domain.Summary, 0)
	for _, s := range f.all() {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaryStore) WithTx(tx *sql.Tx) store.SummaryStore { return f }

type fakeNotificationStore struct {
	mu        sync.Mutex
	events    map[uuid.UUID]*domain.NotificationEvent
	updated   []*domain.NotificationEvent
	createErr error
	findErr   error
	updateErr error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{events: make(map[uuid.UUID]*domain.NotificationEvent)}
}

func (f *fakeNotificationStore) add(event *domain.NotificationEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *event
	f.events[event.ID] = &copied
}

func (f *fakeNotificationStore) get(id uuid.UUID) *domain.NotificationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id]
}

func (f *fakeNotificationStore) all() []*domain.NotificationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.NotificationEvent, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out
}

func (f *fakeNotificationStore) Create(ctx context.Context, event *domain.NotificationEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	if err := event.Validate(); err != nil {
		return err
	}
	f.add(event)
	return nil
}

func (f *fakeNotificationStore) FindPending(ctx context.Context, limit int) ([]*domain.NotificationEvent, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}

	out := make([]*domain.NotificationEvent, 0)
	for _, e := range f.all() {
		if e.Status == domain.NotificationStatusPending && len(out) < limit {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) UpdateStatus(ctx context.Context, event *domain.NotificationEvent) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.events[event.ID]
	if !ok {
		return store.ErrNotificationNotFound
	}
	if stored.Status != domain.NotificationStatusPending {
		return store.ErrUpdateFailed
	}
	copied := *event
	f.events[event.ID] = &copied
	f.updated = append(f.updated, &copied)
	return nil
}

func (f *fakeNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore { return f }

type fakeSummarizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (f *fakeEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEmitter) emitted() []*events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*events.Event(nil), f.events...)
}

type fakeDispatcher struct {
	channel    domain.Channel
	deliveryID string
	err        error
	mu         sync.Mutex
	sent       []sentMessage
}

type sentMessage struct {
	recipient string
	subject   string
	body      string
}

func (f *fakeDispatcher) Channel() domain.Channel { return f.channel }

func (f *fakeDispatcher) Send(ctx context.Context, recipient, subject, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{recipient: recipient, subject: subject, body: body})
	return f.deliveryID, nil
}

func (f *fakeDispatcher) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}
