package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/shelfsight/backend/internal/application/identity"
	appquota "github.com/shelfsight/backend/internal/application/quota"
	"github.com/shelfsight/backend/internal/domain/identity"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/domain/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTenantRepository implements identity.TenantRepository for testing
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func newTenantHandlerRouter(tenantRepo identity.TenantRepository, skuRepo *MockSKURepository, ledger *MockLedger) *gin.Engine {
	tenantService := appidentity.NewTenantService(tenantRepo, nil, zap.NewNop())
	quotaService := appquota.NewQuotaService(tenantRepo, skuRepo, ledger, zap.NewNop())
	h := NewTenantHandler(tenantService, quotaService)

	r := gin.New()
	r.POST("/api/v1/tenants", h.Create)
	r.GET("/api/v1/tenants/:id", h.GetByID)
	r.PUT("/api/v1/tenants/:id/limits", h.UpdateLimits)
	r.PUT("/api/v1/tenants/:id/status", h.ChangeStatus)
	r.GET("/api/v1/tenants/:id/quota", h.GetQuota)
	return r
}

func TestTenantHandler_Create(t *testing.T) {
	t.Run("provisions a tenant", func(t *testing.T) {
		repo := new(MockTenantRepository)
		repo.On("FindByCode", mock.Anything, "ACME").Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Tenant")).Return(nil)
		router := newTenantHandlerRouter(repo, new(MockSKURepository), new(MockLedger))

		body, _ := json.Marshal(CreateTenantRequest{Code: "ACME", Name: "Acme Retail", Plan: "pro"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Data TenantResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ACME", resp.Data.Code)
		assert.Equal(t, "pro", resp.Data.Plan)
		assert.Equal(t, "active", resp.Data.Status)
	})

	t.Run("duplicate code returns 409", func(t *testing.T) {
		existing, err := identity.NewTenant("ACME", "Acme Retail")
		require.NoError(t, err)
		repo := new(MockTenantRepository)
		repo.On("FindByCode", mock.Anything, "ACME").Return(existing, nil)
		router := newTenantHandlerRouter(repo, new(MockSKURepository), new(MockLedger))

		body, _ := json.Marshal(CreateTenantRequest{Code: "ACME", Name: "Another Acme"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "TENANT_CODE_TAKEN")
	})

	t.Run("invalid plan returns 400", func(t *testing.T) {
		router := newTenantHandlerRouter(new(MockTenantRepository), new(MockSKURepository), new(MockLedger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants",
			bytes.NewReader([]byte(`{"code":"ACME","name":"Acme","plan":"platinum"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTenantHandler_GetByID(t *testing.T) {
	t.Run("returns a tenant", func(t *testing.T) {
		tenant, err := identity.NewTenant("ACME", "Acme Retail")
		require.NoError(t, err)
		repo := new(MockTenantRepository)
		repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
		router := newTenantHandlerRouter(repo, new(MockSKURepository), new(MockLedger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/"+tenant.ID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ACME")
	})

	t.Run("unknown tenant returns 404", func(t *testing.T) {
		id := uuid.New()
		repo := new(MockTenantRepository)
		repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)
		router := newTenantHandlerRouter(repo, new(MockSKURepository), new(MockLedger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/"+id.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTenantHandler_UpdateLimits(t *testing.T) {
	tenant, err := identity.NewTenant("ACME", "Acme Retail")
	require.NoError(t, err)
	repo := new(MockTenantRepository)
	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("Save", mock.Anything, tenant).Return(nil)
	router := newTenantHandlerRouter(repo, new(MockSKURepository), new(MockLedger))

	body, _ := json.Marshal(UpdateLimitsRequest{
		MaxSKUs:           100,
		MaxImagesPerWeek:  500,
		MaxImagesPerMonth: 1500,
		MaxImagesPerYear:  15000,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tenants/"+tenant.ID.String()+"/limits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data TenantResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.Data.Limits.MaxSKUs)
	assert.Equal(t, int64(1500), resp.Data.Limits.MaxImagesPerMonth)
}

func TestTenantHandler_ChangeStatus(t *testing.T) {
	t.Run("suspends a tenant", func(t *testing.T) {
		tenant, err := identity.NewTenant("ACME", "Acme Retail")
		require.NoError(t, err)
		repo := new(MockTenantRepository)
		repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
		repo.On("Save", mock.Anything, tenant).Return(nil)
		router := newTenantHandlerRouter(repo, new(MockSKURepository), new(MockLedger))

		body, _ := json.Marshal(ChangeStatusRequest{Status: "suspended"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/tenants/"+tenant.ID.String()+"/status", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"suspended"`)
	})

	t.Run("unknown status returns 400", func(t *testing.T) {
		router := newTenantHandlerRouter(new(MockTenantRepository), new(MockSKURepository), new(MockLedger))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/tenants/"+uuid.NewString()+"/status",
			bytes.NewReader([]byte(`{"status":"archived"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTenantHandler_GetQuota(t *testing.T) {
	tenant, err := identity.NewTenant("ACME", "Acme Retail")
	require.NoError(t, err)
	repo := new(MockTenantRepository)
	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	skuRepo := new(MockSKURepository)
	skuRepo.On("CountByTenant", mock.Anything, tenant.ID).Return(int64(5), nil)
	ledger := new(MockLedger)
	ledger.On("Snapshot", mock.Anything, tenant.ID).Return(usage.Snapshot{
		WeeklyUsage:  10,
		MonthlyUsage: 40,
		YearlyUsage:  200,
	}, nil)
	router := newTenantHandlerRouter(repo, skuRepo, ledger)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/"+tenant.ID.String()+"/quota", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data usage.QuotaInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.CanProcess)
	assert.Equal(t, int64(5), resp.Data.SKUCount)
	assert.Equal(t, usage.QuotaStatusOK, resp.Data.Status)
}
