package city

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client 智慧交通后端 API 客户端
// 每次调用对应一个出站 HTTP 请求，不重试、不缓存、不批量
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient 创建后端 API 客户端
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// NewClientWithHTTPClient 使用自定义 http.Client 创建客户端（测试用）
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// BaseURL 返回后端地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// detailBody FastAPI 风格的错误响应体
type detailBody struct {
	Detail string `json:"detail"`
}

// get 执行 GET 请求并解码响应
func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: op, Err: fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// post 执行 POST 请求并解码响应
// 4xx 且响应体带 detail 字段时归为业务错误，其余失败归为传输错误
func (c *Client) post(ctx context.Context, op, path string, payload, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var detail detailBody
		if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
			return &BusinessError{Op: op, Message: detail.Detail}
		}
		return &TransportError{Op: op, Err: fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))}
	}

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: op, Err: fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return nil
}

// GetDashboardStats 获取仪表盘聚合统计
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "dashboard_stats", "/api/dashboard/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetJunctions 获取全部路口及其当前拥堵状态
func (c *Client) GetJunctions(ctx context.Context) ([]Junction, error) {
	var junctions []Junction
	if err := c.get(ctx, "junctions", "/api/traffic/junctions", &junctions); err != nil {
		return nil, err
	}
	return junctions, nil
}

// GetHeatmap 获取交通热力图数据
func (c *Client) GetHeatmap(ctx context.Context) ([]HeatmapPoint, error) {
	var points []HeatmapPoint
	if err := c.get(ctx, "heatmap", "/api/traffic/heatmap", &points); err != nil {
		return nil, err
	}
	return points, nil
}

// GetParkingZones 获取全部停车区及其可用情况
func (c *Client) GetParkingZones(ctx context.Context) ([]ParkingZone, error) {
	var zones []ParkingZone
	if err := c.get(ctx, "parking_zones", "/api/parking/zones", &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// GetEventMode 获取当前事件模式状态
func (c *Client) GetEventMode(ctx context.Context) (*EventMode, error) {
	var mode EventMode
	if err := c.get(ctx, "event_mode", "/api/event-mode", &mode); err != nil {
		return nil, err
	}
	return &mode, nil
}

// GetIncidents 获取当前活跃事件列表
func (c *Client) GetIncidents(ctx context.Context) ([]Incident, error) {
	var incidents []Incident
	if err := c.get(ctx, "incidents", "/api/incidents", &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

// GetTrafficTrends 获取 24 小时交通趋势
func (c *Client) GetTrafficTrends(ctx context.Context) (*TrafficTrends, error) {
	var trends TrafficTrends
	if err := c.get(ctx, "traffic_trends", "/api/analytics/traffic-trends", &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// GetPeakHours 获取高峰时段对比
func (c *Client) GetPeakHours(ctx context.Context) (*PeakHours, error) {
	var peak PeakHours
	if err := c.get(ctx, "peak_hours", "/api/analytics/peak-hours", &peak); err != nil {
		return nil, err
	}
	return &peak, nil
}

// GetTopCongested 获取最拥堵路口排行
func (c *Client) GetTopCongested(ctx context.Context) ([]Junction, error) {
	var junctions []Junction
	if err := c.get(ctx, "top_congested", "/api/analytics/top-congested", &junctions); err != nil {
		return nil, err
	}
	return junctions, nil
}

// SetEventMode 设置事件模式
// 关闭时 eventType 传空字符串，后端负责清除 event_type 和 activated_at
func (c *Client) SetEventMode(ctx context.Context, enabled bool, eventType string) (*EventModeResult, error) {
	payload := map[string]interface{}{
		"enabled":    enabled,
		"event_type": nil,
	}
	if enabled && eventType != "" {
		payload["event_type"] = eventType
	}

	var result EventModeResult
	if err := c.post(ctx, "set_event_mode", "/api/event-mode", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DemoControl 触发演示控制动作
func (c *Client) DemoControl(ctx context.Context, action string, value *float64) (*DemoResult, error) {
	payload := map[string]interface{}{
		"action": action,
	}
	if value != nil {
		payload["value"] = *value
	}

	var result DemoResult
	if err := c.post(ctx, "demo_control", "/api/demo/control", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReserveSlot 预约一个车位
// 车位已满时后端返回 success=false，不是错误；停车区不存在时返回 404 业务错误
func (c *Client) ReserveSlot(ctx context.Context, zoneID int) (*ReservationResult, error) {
	var result ReservationResult
	path := fmt.Sprintf("/api/parking/reserve?zone_id=%d", zoneID)
	if err := c.post(ctx, "reserve_slot", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
