package usage

import (
	"github.com/shelfsight/backend/internal/domain/identity"
)

// QuotaStatus summarizes a tenant's standing against its image quotas
type QuotaStatus string

const (
	// QuotaStatusOK indicates usage is within normal limits
	QuotaStatusOK QuotaStatus = "ok"

	// QuotaStatusNearLimit indicates monthly usage is at or above the
	// warning threshold
	QuotaStatusNearLimit QuotaStatus = "near_limit"

	// QuotaStatusExceeded indicates at least one window is at or over
	// its limit
	QuotaStatusExceeded QuotaStatus = "quota_exceeded"

	// QuotaStatusInactive indicates the tenant is frozen
	QuotaStatusInactive QuotaStatus = "inactive"
)

// String returns the string representation of QuotaStatus
func (s QuotaStatus) String() string {
	return string(s)
}

// NearLimitThreshold is the fraction of the monthly limit at which a
// tenant is flagged as approaching its quota.
const NearLimitThreshold = 0.8

// QuotaInfo is the full answer to "can this tenant process another
// image / register another SKU right now?"
type QuotaInfo struct {
	CanProcess   bool        `json:"can_process"`
	CanAddSKU    bool        `json:"can_add_sku"`
	WeeklyUsage  int64       `json:"weekly_usage"`
	WeeklyLimit  int64       `json:"weekly_limit"`
	MonthlyUsage int64       `json:"monthly_usage"`
	MonthlyLimit int64       `json:"monthly_limit"`
	YearlyUsage  int64       `json:"yearly_usage"`
	YearlyLimit  int64       `json:"yearly_limit"`
	SKUCount     int64       `json:"sku_count"`
	SKULimit     int64       `json:"sku_limit"`
	Status       QuotaStatus `json:"status"`
}

// Evaluate is the pure quota decision over a ledger snapshot, the
// tenant's limits and its current SKU count. No I/O happens here.
//
// Rules, first match wins for status:
//  1. Inactive tenant: nothing is allowed.
//  2. Any window at or over its limit: processing denied.
//  3. Monthly usage at or above the warning threshold: allowed, flagged.
//  4. Otherwise ok.
//
// A zero limit counts as already at the limit, never as unlimited
// headroom.
func Evaluate(tenant *identity.Tenant, snapshot Snapshot, skuCount int64) QuotaInfo {
	limits := tenant.Limits

	info := QuotaInfo{
		WeeklyUsage:  snapshot.WeeklyUsage,
		WeeklyLimit:  limits.MaxImagesPerWeek,
		MonthlyUsage: snapshot.MonthlyUsage,
		MonthlyLimit: limits.MaxImagesPerMonth,
		YearlyUsage:  snapshot.YearlyUsage,
		YearlyLimit:  limits.MaxImagesPerYear,
		SKUCount:     skuCount,
		SKULimit:     limits.MaxSKUs,
	}

	if !tenant.IsActive() {
		info.Status = QuotaStatusInactive
		return info
	}

	info.CanAddSKU = skuCount < limits.MaxSKUs

	if snapshot.MonthlyUsage >= limits.MaxImagesPerMonth ||
		snapshot.WeeklyUsage >= limits.MaxImagesPerWeek ||
		snapshot.YearlyUsage >= limits.MaxImagesPerYear {
		info.Status = QuotaStatusExceeded
		return info
	}

	info.CanProcess = true

	if float64(snapshot.MonthlyUsage) >= NearLimitThreshold*float64(limits.MaxImagesPerMonth) {
		info.Status = QuotaStatusNearLimit
		return info
	}

	info.Status = QuotaStatusOK
	return info
}

// ShouldWarn reports whether this quota state warrants a quota_warning
// notification
func (q QuotaInfo) ShouldWarn() bool {
	return q.Status == QuotaStatusNearLimit || q.Status == QuotaStatusExceeded
}
