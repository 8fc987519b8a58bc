package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/notify"
	"github.com/langchou/citygazer/internal/service"
	"github.com/langchou/citygazer/pkg/ws"
)

// newFakeBackend 覆盖全部上游接口的最小后端
func newFakeBackend() *httptest.Server {
	festival := "Festival"
	mux := http.NewServeMux()

	mux.HandleFunc("/api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(city.DashboardStats{
			CongestedJunctions: 5, TotalJunctions: 8,
			AvailableParking: 360, TotalParkingCapacity: 830,
			IllegalParkingCount: 17, ActiveIncidents: 1,
			EventMode:   city.EventMode{Enabled: true, EventType: &festival},
			LastUpdated: "2024-06-01T12:00:00",
		})
	})
	mux.HandleFunc("/api/traffic/junctions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]city.Junction{
			{ID: 1, Name: "Railway Station Square", Congestion: "high", VehicleCount: 120, AvgSpeed: 12},
		})
	})
	mux.HandleFunc("/api/traffic/heatmap", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]city.HeatmapPoint{{Lat: 17.67, Lng: 75.91, Intensity: 0.8}})
	})
	mux.HandleFunc("/api/parking/zones", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]city.ParkingZone{
			{ID: 1, Name: "Market Yard Parking", TotalSlots: 200, Available: 50, OccupancyRate: 75},
		})
	})
	mux.HandleFunc("/api/parking/reserve", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("zone_id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Parking zone not found"})
			return
		}
		json.NewEncoder(w).Encode(city.ReservationResult{
			Success: true, Message: "Slot reserved at Market Yard Parking",
			ZoneName: "Market Yard Parking", RemainingSlots: 49, ReservationCode: "SMC-0042",
		})
	})
	mux.HandleFunc("/api/event-mode", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(city.EventModeResult{
				Success:   true,
				EventMode: city.EventMode{Enabled: true, EventType: &festival},
				Message:   "Event mode updated",
			})
			return
		}
		json.NewEncoder(w).Encode(city.EventMode{Enabled: true, EventType: &festival})
	})
	mux.HandleFunc("/api/incidents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]city.Incident{
			{ID: 1, Type: "accident", Location: "Railway Station Square", Severity: "high"},
		})
	})
	mux.HandleFunc("/api/analytics/traffic-trends", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(city.TrafficTrends{
			Labels:   []string{"08:00"},
			Datasets: []city.TrendDataset{{Name: "Today", Data: []int{10}}},
		})
	})
	mux.HandleFunc("/api/analytics/peak-hours", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(city.PeakHours{MorningPeak: city.PeakWindow{Time: "8-11 AM", AvgCongestion: 78}})
	})
	mux.HandleFunc("/api/analytics/top-congested", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]city.Junction{{ID: 1, Name: "Railway Station Square", Congestion: "high"}})
	})
	mux.HandleFunc("/api/demo/control", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(city.DemoResult{Success: true, Message: "Traffic increased"})
	})

	return httptest.NewServer(mux)
}

// newTestRouter 组装完整服务栈，started 控制视图轮询是否启动
func newTestRouter(t *testing.T, backendURL string, started bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	client := city.NewClient(backendURL)
	hub := ws.NewHub(logger)
	messages := notify.NewSlot(time.Second)

	dashboard := service.NewDashboardService(logger, client, hub, nil, time.Hour)
	parking := service.NewParkingService(logger, client, hub, time.Hour)
	analytics := service.NewAnalyticsService(logger, client, hub, time.Hour)

	if started {
		dashboard.Start(context.Background())
		parking.Start(context.Background())
		analytics.Start(context.Background())
		t.Cleanup(func() {
			dashboard.Stop()
			parking.Stop()
			analytics.Stop()
		})

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if dashboard.Snapshot() != nil && parking.Snapshot() != nil && analytics.Snapshot() != nil {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	dispatcher := service.NewDispatcher(logger, client, messages, hub, nil, dashboard, parking)
	h := NewHandler(logger, client, dashboard, parking, analytics, dispatcher, messages, nil, nil, hub)

	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetDashboard_NotReady(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, false)
	rec := doRequest(r, http.MethodGet, "/api/dashboard", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before first poll, got %d", rec.Code)
	}
}

func TestGetDashboard_WithProjections(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodGet, "/api/dashboard", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Projections struct {
			Cards         []map[string]string `json:"cards"`
			EventBanner   string              `json:"event_banner"`
			IncidentCount int                 `json:"incident_count"`
		} `json:"projections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(body.Projections.Cards) != 4 {
		t.Errorf("expected 4 stat cards, got %d", len(body.Projections.Cards))
	}
	if body.Projections.EventBanner != "EVENT MODE ACTIVE: Festival" {
		t.Errorf("unexpected banner %q", body.Projections.EventBanner)
	}
	if body.Projections.IncidentCount != 1 {
		t.Errorf("expected 1 incident, got %d", body.Projections.IncidentCount)
	}
}

func TestReserveSlot_InvalidID(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodPost, "/api/parking/abc/reserve", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric zone ID, got %d", rec.Code)
	}
}

func TestReserveSlot_UnknownZone(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodPost, "/api/parking/99/reserve", "")

	// 后端拒绝的业务错误映射为 422，带后端原文
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Parking zone not found") {
		t.Errorf("expected server detail in body, got %s", rec.Body.String())
	}
}

func TestReserveSlot_Success(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodPost, "/api/parking/1/reserve", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data         city.ReservationResult `json:"data"`
		Notification *notify.Message        `json:"notification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !body.Data.Success || body.Data.ReservationCode != "SMC-0042" {
		t.Errorf("unexpected reservation result %+v", body.Data)
	}
	if body.Notification == nil || body.Notification.Kind != notify.KindSuccess {
		t.Errorf("expected success notification alongside result, got %+v", body.Notification)
	}
}

func TestSetEventMode_BadRequest(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodPost, "/api/event-mode", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestSetEventMode_UnknownTypeRejected(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodPost, "/api/event-mode", `{"enabled": true, "event_type": "Parade"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown event type, got %d", rec.Code)
	}
}

func TestDemoControl_MissingAction(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodPost, "/api/demo/control", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing action, got %d", rec.Code)
	}
}

func TestGetHeatmap_Passthrough(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodGet, "/api/heatmap", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "intensity") {
		t.Errorf("expected heatmap points in body, got %s", rec.Body.String())
	}
}

func TestGetNotification_EmptySlot(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, false)
	rec := doRequest(r, http.MethodGet, "/api/notification", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":null`) {
		t.Errorf("expected null data, got %s", rec.Body.String())
	}
}

func TestHistory_DisabledWithoutDatabase(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, false)
	rec := doRequest(r, http.MethodGet, "/api/history/stats", "")

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("expected 501 when archive is disabled, got %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	backend := newFakeBackend()
	defer backend.Close()

	r := newTestRouter(t, backend.URL, true)
	rec := doRequest(r, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["dashboard"] != "ready" {
		t.Errorf("expected dashboard ready, got %v", body["dashboard"])
	}
}
