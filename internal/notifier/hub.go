package notifier

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/synapse-hq/synapse-hazard-api/internal/database"
	"github.com/synapse-hq/synapse-hazard-api/internal/monitoring"
)

// Viewer is a connected dashboard session. Implementations must be safe for
// concurrent Send calls.
type Viewer interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Hub fans hazard reports out to every connected dashboard viewer. A failing
// viewer never blocks delivery to the others; it is dropped on first error.
type Hub struct {
	mu      sync.RWMutex
	viewers map[string]Viewer
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewHub creates an empty hub.
func NewHub(logger *monitoring.Logger, metrics *monitoring.Metrics) *Hub {
	return &Hub{
		viewers: make(map[string]Viewer),
		logger:  logger,
		metrics: metrics,
	}
}

// Connect registers a viewer. Re-registering the same id replaces the old
// session.
func (h *Hub) Connect(v Viewer) {
	h.mu.Lock()
	if old, ok := h.viewers[v.ID()]; ok {
		old.Close()
	}
	h.viewers[v.ID()] = v
	count := len(h.viewers)
	h.mu.Unlock()

	h.logger.Info("Dashboard viewer connected",
		"viewer_id", v.ID(),
		"viewers", count,
	)
}

// Disconnect removes a viewer and closes it. Disconnecting an unknown or
// already removed id is a no-op.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	v, ok := h.viewers[id]
	if ok {
		delete(h.viewers, id)
	}
	count := len(h.viewers)
	h.mu.Unlock()

	if !ok {
		return
	}
	v.Close()

	h.logger.Info("Dashboard viewer disconnected",
		"viewer_id", id,
		"viewers", count,
	)
}

// ViewerCount returns the number of connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// reportEvent is the wire envelope for a broadcast. Timestamps are flattened
// to RFC3339 so every dashboard sees identical payload bytes.
type reportEvent struct {
	Type string     `json:"type"`
	Data reportData `json:"data"`
}

type reportData struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	HazardType    string  `json:"hazard_type"`
	SeverityScore float64 `json:"severity_score"`
	TrustScore    float64 `json:"trust_score"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Address       string  `json:"address"`
	ReportSource  string  `json:"report_source"`
	IsVerified    bool    `json:"is_verified"`
	CreatedAt     string  `json:"created_at"`
}

// Broadcast serializes the report once and delivers it to all connected
// viewers. Viewers whose send fails are logged, counted and removed; the
// error never reaches the caller.
func (h *Hub) Broadcast(report *database.HazardReport) {
	payload, err := json.Marshal(reportEvent{
		Type: "new_hazard_report",
		Data: reportData{
			ID:            report.ID,
			Title:         report.Title,
			Description:   report.Description,
			HazardType:    report.HazardType,
			SeverityScore: report.SeverityScore,
			TrustScore:    report.TrustScore,
			Latitude:      report.Latitude,
			Longitude:     report.Longitude,
			Address:       report.Address,
			ReportSource:  report.ReportSource,
			IsVerified:    report.IsVerified,
			CreatedAt:     report.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		h.logger.Error("Failed to serialize broadcast payload",
			"report_id", report.ID,
			"error", err.Error(),
		)
		return
	}

	h.mu.RLock()
	targets := make([]Viewer, 0, len(h.viewers))
	for _, v := range h.viewers {
		targets = append(targets, v)
	}
	h.mu.RUnlock()

	failed := 0
	for _, v := range targets {
		if err := v.Send(payload); err != nil {
			failed++
			h.metrics.IncrementBroadcastFailures()
			h.logger.Warn("Viewer send failed, dropping viewer",
				"viewer_id", v.ID(),
				"report_id", report.ID,
				"error", err.Error(),
			)
			h.Disconnect(v.ID())
		}
	}

	h.metrics.IncrementBroadcasts()
	h.logger.BroadcastLogger(report.ID, len(targets), failed)
}
