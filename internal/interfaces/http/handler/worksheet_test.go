package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appsub "github.com/erp/subcontracting/internal/application/subcontracting"
	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/erp/subcontracting/internal/interfaces/http/dto"
	"github.com/erp/subcontracting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockExternalProductionService is a mock implementation of ExternalProductionService
type MockExternalProductionService struct {
	mock.Mock
}

func (m *MockExternalProductionService) Open(ctx context.Context, req appsub.OpenWorksheetRequest) (*subcontracting.Worksheet, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subcontracting.Worksheet), args.Error(1)
}

func (m *MockExternalProductionService) GetWorksheet(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subcontracting.Worksheet), args.Error(1)
}

func (m *MockExternalProductionService) UpdateWorksheet(ctx context.Context, id uuid.UUID, req appsub.UpdateWorksheetRequest) (*subcontracting.Worksheet, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subcontracting.Worksheet), args.Error(1)
}

func (m *MockExternalProductionService) PrefillVendors(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subcontracting.Worksheet), args.Error(1)
}

func (m *MockExternalProductionService) ComputeStock(ctx context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subcontracting.Worksheet), args.Error(1)
}

func (m *MockExternalProductionService) ProduceExternally(ctx context.Context, id uuid.UUID) (*appsub.ProduceResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsub.ProduceResult), args.Error(1)
}

func (m *MockExternalProductionService) CloseWorksheet(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setupWorksheetRouter(svc *MockExternalProductionService) *gin.Engine {
	middleware.SetupValidator()
	router := gin.New()
	router.Use(middleware.RequestID())
	NewWorksheetHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func newTestWorksheet() *subcontracting.Worksheet {
	return &subcontracting.Worksheet{
		ID:                  uuid.New(),
		Scope:               subcontracting.Scope{Kind: subcontracting.ScopeOrder, ProductionID: uuid.New()},
		OperationType:       subcontracting.OperationNormal,
		CreatePurchaseOrder: true,
	}
}

const basePath = "/api/v1/external-production/worksheets"

func TestWorksheetHandler_Open(t *testing.T) {
	t.Run("opens on a production order", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)
		orderID := uuid.New()
		ws := newTestWorksheet()

		svc.On("Open", mock.Anything, mock.MatchedBy(func(req appsub.OpenWorksheetRequest) bool {
			return req.ProductionOrderID != nil && *req.ProductionOrderID == orderID && req.WorkOrderID == nil
		})).Return(ws, nil)

		w := doJSON(router, http.MethodPost, basePath, map[string]any{"production_order_id": orderID})

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success bool                     `json:"success"`
			Data    subcontracting.Worksheet `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, ws.ID, resp.Data.ID)
		svc.AssertExpectations(t)
	})

	t.Run("requires an order or work order", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)

		w := doJSON(router, http.MethodPost, basePath, map[string]any{})

		require.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeInvalidInput, errInfo.Code)
		assert.NotEmpty(t, errInfo.Details)
		assert.NotEmpty(t, errInfo.RequestID)
		svc.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("rejects both targets at once", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)

		w := doJSON(router, http.MethodPost, basePath, map[string]any{
			"production_order_id": uuid.New(),
			"work_order_id":       uuid.New(),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)

		w := doJSON(router, http.MethodPost, basePath, `{"production_order_id":`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)
		svc.On("Open", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		w := doJSON(router, http.MethodPost, basePath, map[string]any{"work_order_id": uuid.New()})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Code)
	})
}

func TestWorksheetHandler_Get(t *testing.T) {
	svc := new(MockExternalProductionService)
	router := setupWorksheetRouter(svc)
	ws := newTestWorksheet()
	svc.On("GetWorksheet", mock.Anything, ws.ID).Return(ws, nil)

	w := doJSON(router, http.MethodGet, basePath+"/"+ws.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, basePath+"/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeError(t, w).Code)

	svc.AssertNumberOfCalls(t, "GetWorksheet", 1)
}

func TestWorksheetHandler_Update(t *testing.T) {
	t.Run("passes partners and flags through", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)
		ws := newTestWorksheet()
		partnerID := uuid.New()

		svc.On("UpdateWorksheet", mock.Anything, ws.ID, mock.MatchedBy(func(req appsub.UpdateWorksheetRequest) bool {
			return len(req.Partners) == 1 && req.Partners[0].PartnerID == partnerID &&
				req.MergePurchaseOrder != nil && *req.MergePurchaseOrder &&
				req.CreatePurchaseOrder == nil
		})).Return(ws, nil)

		w := doJSON(router, http.MethodPut, basePath+"/"+ws.ID.String(), map[string]any{
			"partners":             []map[string]any{{"partner_id": partnerID, "delay_days": 3}},
			"merge_purchase_order": true,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects the same partner twice", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)
		partnerID := uuid.New()

		w := doJSON(router, http.MethodPut, basePath+"/"+uuid.NewString(), map[string]any{
			"partners": []map[string]any{{"partner_id": partnerID}, {"partner_id": partnerID}},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeError(t, w)
		require.Len(t, errInfo.Details, 1)
		assert.Equal(t, "partners", errInfo.Details[0].Field)
		svc.AssertNotCalled(t, "UpdateWorksheet", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWorksheetHandler_Actions(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		method string
	}{
		{"prefill vendors", "/prefill-vendors", "PrefillVendors"},
		{"compute stock", "/stock", "ComputeStock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockExternalProductionService)
			router := setupWorksheetRouter(svc)
			ws := newTestWorksheet()
			svc.On(tt.method, mock.Anything, ws.ID).Return(ws, nil)

			w := doJSON(router, http.MethodPost, basePath+"/"+ws.ID.String()+tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestWorksheetHandler_Produce(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        shared.NewValidationError("Select at least one partner"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeValidation,
		},
		{
			name:       "missing picking type",
			err:        fmt.Errorf("create pickings: %w", shared.NewConfigurationError("No outgoing picking type for warehouse %s", "Main Warehouse")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeConfiguration,
		},
		{
			name:       "already submitted",
			err:        shared.NewDomainError(shared.CodeInvalidState, "Worksheet was already submitted"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrCodeInvalidState,
		},
		{
			name:       "unexpected failure is opaque",
			err:        fmt.Errorf("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockExternalProductionService)
			router := setupWorksheetRouter(svc)
			svc.On("ProduceExternally", mock.Anything, id).Return(nil, tt.err)

			w := doJSON(router, http.MethodPost, basePath+"/"+id.String()+"/produce", nil)

			require.Equal(t, tt.wantStatus, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.wantCode, errInfo.Code)
			if tt.wantCode == dto.ErrCodeInternal {
				assert.NotContains(t, errInfo.Message, "connection reset")
			}
			if tt.wantCode == dto.ErrCodeConfiguration {
				assert.Contains(t, errInfo.Message, "Main Warehouse")
			}
		})
	}

	t.Run("success returns generated documents", func(t *testing.T) {
		svc := new(MockExternalProductionService)
		router := setupWorksheetRouter(svc)
		partnerID, poID, inID := uuid.New(), uuid.New(), uuid.New()
		svc.On("ProduceExternally", mock.Anything, id).Return(&appsub.ProduceResult{
			ProductionOrderID: uuid.New(),
			State:             "external",
			Partners: []appsub.PartnerResult{{
				PartnerID:         partnerID,
				IncomingPickingID: &inID,
				PurchaseOrderID:   &poID,
			}},
		}, nil)

		w := doJSON(router, http.MethodPost, basePath+"/"+id.String()+"/produce", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data appsub.ProduceResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "external", resp.Data.State)
		require.Len(t, resp.Data.Partners, 1)
		assert.Equal(t, poID, *resp.Data.Partners[0].PurchaseOrderID)
		assert.Equal(t, inID, *resp.Data.Partners[0].IncomingPickingID)
		assert.Nil(t, resp.Data.Partners[0].OutgoingPickingID)
		assert.NotContains(t, w.Body.String(), "outgoing_picking_id")
	})
}

func TestWorksheetHandler_Close(t *testing.T) {
	svc := new(MockExternalProductionService)
	router := setupWorksheetRouter(svc)
	id := uuid.New()
	svc.On("CloseWorksheet", mock.Anything, id).Return(nil)

	w := doJSON(router, http.MethodDelete, basePath+"/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}
