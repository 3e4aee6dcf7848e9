package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calfield/brief-api/internal/domain"
	"github.com/calfield/brief-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTenantStore struct {
	tenants   map[uuid.UUID]*domain.Tenant
	createErr error
	updateErr error
	getErr    error
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{tenants: make(map[uuid.UUID]*domain.Tenant)}
}

func (f *fakeTenantStore) add(tenant *domain.Tenant) {
	f.tenants[tenant.ID] = tenant
}

func (f *fakeTenantStore) Create(ctx context.Context, tenant *domain.Tenant) error {
	if f.createErr != nil {
		return f.createErr
	}
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
	copied := *tenant
	return &copied, nil
}

func (f *fakeTenantStore) GetByInboundAddress(ctx context.Context, address string) (*domain.Tenant, error) {
	for _, tenant := range f.tenants {
		if tenant.InboundAddress == address {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, store.ErrTenantNotFound
}

func (f *fakeTenantStore) Update(ctx context.Context, tenant *domain.Tenant) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.tenants[tenant.ID]; !ok {
		return store.ErrTenantNotFound
	}
	copied := *tenant
	f.tenants[tenant.ID] = &copied
	return nil
}

func (f *fakeTenantStore) WithTx(tx *sql.Tx) store.TenantStore { return f }

type fakeSummaryStore struct {
	summaries []*domain.Summary
	listErr   error
}

func (f *fakeSummaryStore) Create(ctx context.Context, summary *domain.Summary) error {
	f.summaries = append(f.summaries, summary)
	return nil
}

func (f *fakeSummaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Summary, error) {
	for _, s := range f.summaries {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, store.ErrSummaryNotFound
}

// ListForTenant filters by tenant and returns summaries in insertion order
// for oldest_first, reversed for newest_first, mirroring the real store.
func (f *fakeSummaryStore) ListForTenant(ctx context.Context, tenantID uuid.UUID, order domain.ReportOrder) ([]*domain.Summary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]*domain.Summary, 0)
	for _, s := range f.summaries {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	if order == domain.ReportOrderNewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (f *fakeSummaryStore) WithTx(tx *sql.Tx) store.SummaryStore { return f }

type fakeInboundEmailStore struct {
	emails    []*domain.InboundEmail
	createErr error
}

func (f *fakeInboundEmailStore) Create(ctx context.Context, email *domain.InboundEmail) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeInboundEmailStore) WithTx(tx *sql.Tx) store.InboundEmailStore { return f }

type fakeTaskCreator struct {
	err     error
	created []createdTask
}

type createdTask struct {
	tenantID  uuid.UUID
	inputText string
}

func (f *fakeTaskCreator) CreateTask(ctx context.Context, tenantID uuid.UUID, inputText string) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, createdTask{tenantID: tenantID, inputText: inputText})
	return domain.NewTask(tenantID, inputText)
}
