package identity

import (
	"github.com/shelfsight/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTenant = "Tenant"

// Event type constants
const (
	EventTypeTenantCreated       = "TenantCreated"
	EventTypeTenantStatusChanged = "TenantStatusChanged"
	EventTypeTenantLimitsUpdated = "TenantLimitsUpdated"
)

// TenantCreatedEvent is published when a new tenant is created
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	Code string     `json:"code"`
	Name string     `json:"name"`
	Plan TenantPlan `json:"plan"`
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(tenant *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantCreated, AggregateTypeTenant, tenant.ID, tenant.ID),
		Code:            tenant.Code,
		Name:            tenant.Name,
		Plan:            tenant.Plan,
	}
}

// TenantStatusChangedEvent is published when a tenant is activated,
// deactivated or suspended
type TenantStatusChangedEvent struct {
	shared.BaseDomainEvent
	Status TenantStatus `json:"status"`
}

// NewTenantStatusChangedEvent creates a new TenantStatusChangedEvent
func NewTenantStatusChangedEvent(tenant *Tenant) *TenantStatusChangedEvent {
	return &TenantStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantStatusChanged, AggregateTypeTenant, tenant.ID, tenant.ID),
		Status:          tenant.Status,
	}
}

// TenantLimitsUpdatedEvent is published when an admin changes resource limits
type TenantLimitsUpdatedEvent struct {
	shared.BaseDomainEvent
	Limits ResourceLimits `json:"limits"`
}

// NewTenantLimitsUpdatedEvent creates a new TenantLimitsUpdatedEvent
func NewTenantLimitsUpdatedEvent(tenant *Tenant) *TenantLimitsUpdatedEvent {
	return &TenantLimitsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantLimitsUpdated, AggregateTypeTenant, tenant.ID, tenant.ID),
		Limits:          tenant.Limits,
	}
}
