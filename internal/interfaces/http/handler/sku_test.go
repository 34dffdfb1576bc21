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
	appcatalog "github.com/shelfsight/backend/internal/application/catalog"
	"github.com/shelfsight/backend/internal/domain/catalog"
	"github.com/shelfsight/backend/internal/domain/shared"
	"github.com/shelfsight/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSKUQuotaGate implements appcatalog.SKUQuotaGate for testing
type stubSKUQuotaGate struct {
	err error
}

func (g *stubSKUQuotaGate) EnsureCanAddSKU(ctx context.Context, tenantID uuid.UUID) error {
	return g.err
}

func newSKUTestRouter(skuRepo catalog.SKURepository, gate appcatalog.SKUQuotaGate) *gin.Engine {
	service := appcatalog.NewSKUService(skuRepo, gate, nil, zap.NewNop())
	h := NewSKUHandler(service)

	r := gin.New()
	r.Use(middleware.TenantWithConfig(middleware.TenantConfig{Required: true}))
	r.POST("/api/v1/skus", h.Create)
	r.GET("/api/v1/skus", h.List)
	r.GET("/api/v1/skus/:id", h.GetByID)
	r.PATCH("/api/v1/skus/:id", h.Rename)
	r.POST("/api/v1/skus/:id/training", h.Transition)
	return r
}

func TestSKUHandler_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("registers a SKU", func(t *testing.T) {
		repo := new(MockSKURepository)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.SKU")).Return(nil)
		router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

		body, _ := json.Marshal(CreateSKURequest{Name: "Cola 330ml", Category: "Beverages"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/skus", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Data SKUResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Cola 330ml", resp.Data.Name)
		assert.Equal(t, "pending", resp.Data.TrainingStatus)
		repo.AssertExpectations(t)
	})

	t.Run("quota denial returns 429", func(t *testing.T) {
		repo := new(MockSKURepository)
		gate := &stubSKUQuotaGate{err: shared.NewDomainError(shared.ErrCodeQuotaExceeded, "SKU limit reached (25/25)")}
		router := newSKUTestRouter(repo, gate)

		body, _ := json.Marshal(CreateSKURequest{Name: "Cola 330ml", Category: "Beverages"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/skus", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("blank name returns 400", func(t *testing.T) {
		router := newSKUTestRouter(new(MockSKURepository), &stubSKUQuotaGate{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/skus", bytes.NewReader([]byte(`{"category":"Beverages"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSKUHandler_GetByID(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns a SKU", func(t *testing.T) {
		sku, err := catalog.NewSKU(tenantID, "Cola 330ml", "Beverages")
		require.NoError(t, err)
		repo := new(MockSKURepository)
		repo.On("FindByID", mock.Anything, tenantID, sku.ID).Return(sku, nil)
		router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/skus/"+sku.ID.String(), nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), sku.ID.String())
	})

	t.Run("unknown SKU returns 404", func(t *testing.T) {
		id := uuid.New()
		repo := new(MockSKURepository)
		repo.On("FindByID", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)
		router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/skus/"+id.String(), nil)
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSKUHandler_List(t *testing.T) {
	tenantID := uuid.New()

	sku, err := catalog.NewSKU(tenantID, "Cola 330ml", "Beverages")
	require.NoError(t, err)
	repo := new(MockSKURepository)
	repo.On("FindByTenant", mock.Anything, tenantID, mock.Anything).Return([]*catalog.SKU{sku}, nil)
	router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/skus", nil)
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []SKUResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestSKUHandler_Transition(t *testing.T) {
	tenantID := uuid.New()

	t.Run("advances training state", func(t *testing.T) {
		sku, err := catalog.NewSKU(tenantID, "Cola 330ml", "Beverages")
		require.NoError(t, err)
		repo := new(MockSKURepository)
		repo.On("FindByID", mock.Anything, tenantID, sku.ID).Return(sku, nil)
		repo.On("Save", mock.Anything, sku).Return(nil)
		router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

		body, _ := json.Marshal(TrainingTransitionRequest{Status: "training"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/skus/"+sku.ID.String()+"/training", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"training_status":"training"`)
	})

	t.Run("disallowed transition returns 422", func(t *testing.T) {
		sku, err := catalog.NewSKU(tenantID, "Cola 330ml", "Beverages")
		require.NoError(t, err)
		repo := new(MockSKURepository)
		repo.On("FindByID", mock.Anything, tenantID, sku.ID).Return(sku, nil)
		router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

		body, _ := json.Marshal(TrainingTransitionRequest{Status: "completed"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/skus/"+sku.ID.String()+"/training", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown status returns 400", func(t *testing.T) {
		router := newSKUTestRouter(new(MockSKURepository), &stubSKUQuotaGate{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/skus/"+uuid.NewString()+"/training",
			bytes.NewReader([]byte(`{"status":"shipped"}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSKUHandler_Rename(t *testing.T) {
	tenantID := uuid.New()

	sku, err := catalog.NewSKU(tenantID, "Cola 330ml", "Beverages")
	require.NoError(t, err)
	repo := new(MockSKURepository)
	repo.On("FindByID", mock.Anything, tenantID, sku.ID).Return(sku, nil)
	repo.On("Save", mock.Anything, sku).Return(nil)
	router := newSKUTestRouter(repo, &stubSKUQuotaGate{})

	body, _ := json.Marshal(RenameSKURequest{Name: "Cola Zero 330ml"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/skus/"+sku.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Cola Zero 330ml")
}
