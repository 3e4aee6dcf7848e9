package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calfield/brief-api/internal/domain"
)

const testInboundDomain = "tasks.example.com"

type inboundFixture struct {
	svc     InboundService
	tenants *fakeTenantStore
	emails  *fakeInboundEmailStore
	tasks   *fakeTaskCreator
}

func newInboundFixture(t *testing.T, inboundDomain string) *inboundFixture {
	t.Helper()

	f := &inboundFixture{
		tenants: newFakeTenantStore(),
		emails:  &fakeInboundEmailStore{},
		tasks:   &fakeTaskCreator{},
	}
	f.svc = NewInboundService(f.tenants, f.emails, f.tasks, inboundDomain, testLogger())
	return f
}

func (f *inboundFixture) addTenant(t *testing.T) *domain.Tenant {
	t.Helper()

	tenant, err := domain.NewTenant("Acme Corp", "ops@acme.example", "", testInboundDomain,
		[]domain.Channel{domain.ChannelEmail})
	require.NoError(t, err)
	f.tenants.add(tenant)
	return tenant
}

func TestReceiveEmail(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, testInboundDomain)
	tenant := f.addTenant(t)

	err := f.svc.ReceiveEmail(context.Background(),
		"alice@example.com", tenant.InboundAddress, "Meeting notes", "We agreed to ship Friday.")
	require.NoError(t, err)

	// An audit record landed.
	require.Len(t, f.emails.emails, 1)
	assert.Equal(t, tenant.ID, f.emails.emails[0].TenantID)
	assert.Equal(t, "alice@example.com", f.emails.emails[0].Sender)

	// A task was created from the email content.
	require.Len(t, f.tasks.created, 1)
	assert.Equal(t, tenant.ID, f.tasks.created[0].tenantID)
	assert.Contains(t, f.tasks.created[0].inputText, "From: alice@example.com")
	assert.Contains(t, f.tasks.created[0].inputText, "Subject: Meeting notes")
	assert.Contains(t, f.tasks.created[0].inputText, "We agreed to ship Friday.")
}

func TestReceiveEmailCaseInsensitiveRecipient(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, testInboundDomain)
	tenant := f.addTenant(t)

	err := f.svc.ReceiveEmail(context.Background(),
		"alice@example.com", strings.ToUpper(tenant.InboundAddress), "s", "b")
	require.NoError(t, err)
	require.Len(t, f.tasks.created, 1)
}

func TestReceiveEmailUnknownTenant(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, testInboundDomain)

	err := f.svc.ReceiveEmail(context.Background(),
		"alice@example.com", "task+a1b2c3d4-e5f6-4789-8abc-def012345678@"+testInboundDomain, "s", "b")

	var routeErr *RoutingError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "no tenant owns this address", routeErr.Reason)

	// Routing failures persist nothing.
	assert.Empty(t, f.emails.emails)
	assert.Empty(t, f.tasks.created)
}

func TestReceiveEmailBadAddresses(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, testInboundDomain)
	f.addTenant(t)

	cases := []struct {
		name      string
		recipient string
	}{
		{"no at sign", "not-an-address"},
		{"wrong domain", "task+a1b2c3d4-e5f6-4789-8abc-def012345678@elsewhere.com"},
		{"missing prefix", "a1b2c3d4-e5f6-4789-8abc-def012345678@" + testInboundDomain},
		{"malformed tenant id", "task+not-a-uuid@" + testInboundDomain},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.ReceiveEmail(context.Background(), "alice@example.com", tc.recipient, "s", "b")

			var routeErr *RoutingError
			require.ErrorAs(t, err, &routeErr)
		})
	}

	assert.Empty(t, f.emails.emails)
	assert.Empty(t, f.tasks.created)
}

func TestReceiveEmailRoutingDisabled(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, "")

	err := f.svc.ReceiveEmail(context.Background(),
		"alice@example.com", "task+a1b2c3d4-e5f6-4789-8abc-def012345678@anywhere.com", "s", "b")

	var routeErr *RoutingError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "inbound routing is not configured", routeErr.Reason)
}

func TestReceiveEmailTaskCreationFailureStillAcks(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, testInboundDomain)
	f.tasks.err = errors.New("engine unavailable")
	tenant := f.addTenant(t)

	// The email record is durable; the webhook caller still gets its ack.
	err := f.svc.ReceiveEmail(context.Background(),
		"alice@example.com", tenant.InboundAddress, "s", "b")
	require.NoError(t, err)
	require.Len(t, f.emails.emails, 1)
}

func TestReceiveEmailStoreFailure(t *testing.T) {
	t.Parallel()

	f := newInboundFixture(t, testInboundDomain)
	f.emails.createErr = errors.New("disk full")
	tenant := f.addTenant(t)

	err := f.svc.ReceiveEmail(context.Background(),
		"alice@example.com", tenant.InboundAddress, "s", "b")
	require.Error(t, err)
	assert.Empty(t, f.tasks.created)
}

func TestRoutingErrorMessage(t *testing.T) {
	t.Parallel()

	err := &RoutingError{Address: "x@y.com", Reason: "not a valid email address"}
	assert.Equal(t, `cannot route inbound email to "x@y.com": not a valid email address`, err.Error())
}
