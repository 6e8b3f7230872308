package intake

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/synapse-hq/synapse-hazard-api/internal/analysis"
	"github.com/synapse-hq/synapse-hazard-api/internal/database"
	apperrors "github.com/synapse-hq/synapse-hazard-api/internal/errors"
	"github.com/synapse-hq/synapse-hazard-api/internal/monitoring"
)

// MaxImages is the hard cap on attachments per report. Requests over the cap
// are rejected outright rather than truncated.
const MaxImages = 3

// Broadcaster is the notifier surface the service needs. Delivery problems
// stay inside the notifier; Broadcast never returns an error.
type Broadcaster interface {
	Broadcast(report *database.HazardReport)
}

// ReportStore is the persistence surface the service needs.
type ReportStore interface {
	InsertReport(ctx context.Context, draft database.ReportDraft) (*database.HazardReport, error)
}

// ReportInput is a fully parsed report submission. Image payloads are raw
// bytes; decoding is the analyzer's concern.
type ReportInput struct {
	Title        string
	Description  string
	HazardType   string
	Latitude     float64
	Longitude    float64
	Address      string
	ReporterID   string
	ReportSource string
	Images       [][]byte
}

// ReportResult is returned to the submitting client.
type ReportResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	ReportID   int64   `json:"report_id"`
	TrustScore float64 `json:"trust_score"`
}

// Service runs the report pipeline: validate, score, persist, broadcast.
type Service struct {
	analyzer *analysis.Analyzer
	store    ReportStore
	hub      Broadcaster
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
}

// NewService wires the pipeline stages together.
func NewService(analyzer *analysis.Analyzer, store ReportStore, hub Broadcaster,
	logger *monitoring.Logger, metrics *monitoring.Metrics) *Service {
	return &Service{
		analyzer: analyzer,
		store:    store,
		hub:      hub,
		logger:   logger,
		metrics:  metrics,
	}
}

// CreateReport validates and runs one submission through the full pipeline.
// Validation failures return before any side effect; a broadcast failure
// after a successful insert is logged but never surfaced to the submitter.
func (s *Service) CreateReport(ctx context.Context, input ReportInput) (*ReportResult, error) {
	start := time.Now()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	result := s.analyzer.AnalyzeReport(input.Description, input.Images)
	if result.Text.Fallback {
		s.metrics.IncrementTextFallbacks()
	}
	if result.Image.Fallback {
		s.metrics.IncrementImageFallbacks()
	}

	report, err := s.store.InsertReport(ctx, database.ReportDraft{
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		HazardType:    input.HazardType,
		SeverityScore: database.DefaultSeverityScore,
		TrustScore:    result.TrustScore,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Address:       input.Address,
		ReporterID:    input.ReporterID,
		ReportSource:  input.ReportSource,
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to store hazard report", err)
	}

	s.metrics.IncrementReportsCreated()
	s.hub.Broadcast(report)

	s.logger.ReportLogger(report.ID, report.HazardType, report.ReportSource,
		report.TrustScore, result.Text.Fallback, result.Image.Fallback,
		time.Since(start))

	return &ReportResult{
		Success:    true,
		Message:    "Hazard report received",
		ReportID:   report.ID,
		TrustScore: report.TrustScore,
	}, nil
}

func validateInput(input ReportInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewValidationError("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.NewValidationError("description is required")
	}
	if strings.TrimSpace(input.HazardType) == "" {
		return apperrors.NewValidationError("hazard_type is required")
	}
	if !isFinite(input.Latitude) || input.Latitude < -90 || input.Latitude > 90 {
		return apperrors.NewValidationError("latitude must be between -90 and 90")
	}
	if !isFinite(input.Longitude) || input.Longitude < -180 || input.Longitude > 180 {
		return apperrors.NewValidationError("longitude must be between -180 and 180")
	}
	if len(input.Images) > MaxImages {
		return apperrors.NewValidationError(
			fmt.Sprintf("at most %d images allowed, got %d", MaxImages, len(input.Images)))
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
