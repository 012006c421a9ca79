package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
	"roadside-assist-service/internal/service"
	"roadside-assist-service/internal/simulator"
)

type envelope struct {
	Success  bool            `json:"success"`
	Count    int             `json:"count"`
	Fallback bool            `json:"fallback"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
}

type testEnv struct {
	router *gin.Engine
	orders *repository.MemoryOrderRepository
}

func setup(t *testing.T, strict bool, adminKey string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	sim, err := simulator.New(simulator.DefaultConfig())
	require.NoError(t, err)

	orders := repository.NewMemoryOrderRepository()
	garages := repository.NewMemoryGarageRepository(service.SeedGarages()...)
	opts := service.Options{StrictMode: strict, Logger: log, Locks: service.NewKeyedLocker()}

	router := NewRouter(RouterConfig{
		Orders: NewOrderController(
			service.NewOrderService(orders, garages, opts),
			service.NewTrackingService(orders, nil, sim, opts),
		),
		Garages:     NewGarageController(service.NewGarageService(garages, nil, 10, opts), service.NewEstimator()),
		AdminAPIKey: adminKey,
		Logger:      log,
	})
	return &testEnv{router: router, orders: orders}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestNearbyGarages(t *testing.T) {
	env := setup(t, false, "")

	w, res := env.do(t, http.MethodGet, "/api/garages/nearby?lat=37.78825&lng=-122.4324", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Count)
	assert.False(t, res.Fallback)

	var garages []model.Garage
	require.NoError(t, json.Unmarshal(res.Data, &garages))
	assert.Equal(t, "Quick Fix Motors", garages[0].Name)
}

func TestNearbyGaragesMissingParams(t *testing.T) {
	w, res := setup(t, false, "").do(t, http.MethodGet, "/api/garages/nearby?lat=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, res.Success)
	assert.True(t, res.Fallback)
	assert.Equal(t, 2, res.Count)

	w, res = setup(t, true, "").do(t, http.MethodGet, "/api/garages/nearby", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, res.Success)
}

func TestCreateAndTrackOrder(t *testing.T) {
	env := setup(t, false, "")

	w, res := env.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"userId":         "user123",
		"garageId":       "1",
		"vehicleDetails": map[string]string{"make": "Toyota", "model": "Camry", "year": "2020", "issue": "Won't start"},
		"userLocation":   map[string]float64{"lat": 37.77825, "lng": -122.4224},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Order
	require.NoError(t, json.Unmarshal(res.Data, &created))
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, model.Coordinate{Lat: 37.78825, Lng: -122.4324}, created.MechanicLocation)

	w, res = env.do(t, http.MethodGet, "/api/orders/"+created.ID+"/track", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tracked model.Order
	require.NoError(t, json.Unmarshal(res.Data, &tracked))
	assert.Equal(t, model.StatusOnTheWay, tracked.Status)
	assert.InDelta(t, 37.78725, tracked.MechanicLocation.Lat, 1e-9)

	// GET sin /track no mueve nada
	w, res = env.do(t, http.MethodGet, "/api/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap model.Order
	require.NoError(t, json.Unmarshal(res.Data, &snap))
	assert.Equal(t, tracked.MechanicLocation, snap.MechanicLocation)

	w, res = env.do(t, http.MethodGet, "/api/orders?userId=user123", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, res.Count)
}

func TestCreateOrderValidation(t *testing.T) {
	w, res := setup(t, false, "").do(t, http.MethodPost, "/api/orders", map[string]string{"garageId": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, res.Success)

	w, _ = setup(t, true, "").do(t, http.MethodPost, "/api/orders", map[string]string{"userId": "u", "garageId": "404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackUnknownOrder(t *testing.T) {
	w, res := setup(t, false, "").do(t, http.MethodGet, "/api/orders/ghost/track", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var o model.Order
	require.NoError(t, json.Unmarshal(res.Data, &o))
	assert.Equal(t, "ghost", o.ID)
	assert.Equal(t, model.StatusPending, o.Status)

	w, res = setup(t, true, "").do(t, http.MethodGet, "/api/orders/ghost/track", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", res.Message)
}

func TestUpdateStatus(t *testing.T) {
	env := setup(t, false, "")
	_, res := env.do(t, http.MethodPost, "/api/orders", map[string]string{"userId": "u", "garageId": "1"})
	var o model.Order
	require.NoError(t, json.Unmarshal(res.Data, &o))

	w, _ := env.do(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", map[string]string{"status": "COMPLETED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, res = env.do(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", map[string]string{"status": "CANCELLED", "reason": "changed my mind"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(res.Data, &o))
	assert.Equal(t, model.StatusCancelled, o.Status)

	w, _ = env.do(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPatch, "/api/orders/missing/status", map[string]string{"status": "CANCELLED"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeedRequiresAdminKey(t *testing.T) {
	env := setup(t, false, "secret")

	w, _ := env.do(t, http.MethodPost, "/api/garages/seed", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/garages/seed", nil, "X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, res := env.do(t, http.MethodPost, "/api/garages/seed", nil, "X-API-Key", "secret")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 3, res.Count)
}

func TestCatalogAndEstimate(t *testing.T) {
	env := setup(t, false, "")

	w, res := env.do(t, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, res.Count)

	w, res = env.do(t, http.MethodGet, "/api/towing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, res.Count)

	w, res = env.do(t, http.MethodPost, "/api/estimates", map[string]interface{}{"categoryId": "engine", "distanceKm": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var est struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &est))
	assert.Equal(t, 60.0, est.Total)

	w, _ = env.do(t, http.MethodPost, "/api/estimates", map[string]interface{}{"categoryId": "wings"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setup(t, false, "")

	w, _ := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env.do(t, http.MethodGet, "/api/orders/ghost/track", nil)
	w, _ = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roadside_tracking_polls_total")
}
