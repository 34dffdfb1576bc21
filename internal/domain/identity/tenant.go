package identity

import (
	"strings"
	"time"

	"github.com/shelfsight/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended" // Suspended due to payment/violation issues
)

// TenantPlan represents the subscription plan of a tenant
type TenantPlan string

const (
	TenantPlanFree       TenantPlan = "free"
	TenantPlanStarter    TenantPlan = "starter"
	TenantPlanPro        TenantPlan = "pro"
	TenantPlanEnterprise TenantPlan = "enterprise"
)

// ResourceLimits holds the per-tenant quota ceilings. A zero limit means
// the tenant may not consume that resource at all; limits are never
// interpreted as unlimited.
type ResourceLimits struct {
	MaxSKUs           int64 `json:"max_skus"`
	MaxImagesPerWeek  int64 `json:"max_images_per_week"`
	MaxImagesPerMonth int64 `json:"max_images_per_month"`
	MaxImagesPerYear  int64 `json:"max_images_per_year"`
}

// DefaultResourceLimits returns the limits assigned to a new free-plan tenant
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		MaxSKUs:           25,
		MaxImagesPerWeek:  100,
		MaxImagesPerMonth: 300,
		MaxImagesPerYear:  3000,
	}
}

// Tenant represents an isolated customer account in the multi-tenant system.
// It is the aggregate root for tenant-related operations.
type Tenant struct {
	shared.BaseAggregateRoot
	Code         string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string         `gorm:"type:varchar(200);not null"`
	Status       TenantStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	Plan         TenantPlan     `gorm:"type:varchar(20);not null;default:'free'"`
	ContactEmail string         `gorm:"type:varchar(200)"`
	Limits       ResourceLimits `gorm:"embedded;embeddedPrefix:limit_"`
	Notes        string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}

	tenant := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
		Plan:              TenantPlanFree,
		Limits:            DefaultResourceLimits(),
	}

	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))

	return tenant, nil
}

// IsActive returns true if the tenant can use the service.
// Anything other than active freezes quota checks to denied.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// UpdateLimits replaces the tenant's resource limits (admin operation)
func (t *Tenant) UpdateLimits(limits ResourceLimits) error {
	if limits.MaxSKUs < 0 || limits.MaxImagesPerWeek < 0 ||
		limits.MaxImagesPerMonth < 0 || limits.MaxImagesPerYear < 0 {
		return shared.NewDomainError("INVALID_LIMITS", "Resource limits cannot be negative")
	}
	t.Limits = limits
	t.UpdatedAt = time.Now().UTC()
	t.AddDomainEvent(NewTenantLimitsUpdatedEvent(t))
	return nil
}

// Activate reactivates a deactivated tenant
func (t *Tenant) Activate() {
	if t.Status == TenantStatusActive {
		return
	}
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now().UTC()
	t.AddDomainEvent(NewTenantStatusChangedEvent(t))
}

// Deactivate freezes the tenant; all subsequent quota checks are denied
func (t *Tenant) Deactivate() {
	if t.Status == TenantStatusInactive {
		return
	}
	t.Status = TenantStatusInactive
	t.UpdatedAt = time.Now().UTC()
	t.AddDomainEvent(NewTenantStatusChangedEvent(t))
}

// Suspend marks the tenant suspended; quota checks are denied
func (t *Tenant) Suspend() {
	if t.Status == TenantStatusSuspended {
		return
	}
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now().UTC()
	t.AddDomainEvent(NewTenantStatusChangedEvent(t))
}

// ChangePlan updates the subscription plan
func (t *Tenant) ChangePlan(plan TenantPlan) error {
	switch plan {
	case TenantPlanFree, TenantPlanStarter, TenantPlanPro, TenantPlanEnterprise:
	default:
		return shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan")
	}
	t.Plan = plan
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// validateTenantCode checks the tenant code format
func validateTenantCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return shared.NewDomainError("INVALID_CODE", "Tenant code may only contain letters, digits, '-' and '_'")
		}
	}
	return nil
}
