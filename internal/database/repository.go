package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// InsertReport persists a report draft in a single transaction: the row, its
// derived point geometry and both timestamps commit together or not at all.
func (r *Repository) InsertReport(ctx context.Context, draft ReportDraft) (*HazardReport, error) {
	insertStmt, err := r.db.GetPreparedStatement("insert_report")
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	location := PointWKT(draft.Longitude, draft.Latitude)

	source := draft.ReportSource
	if source == "" {
		source = SourceCitizenApp
	}

	result, err := tx.StmtContext(ctx, insertStmt).ExecContext(ctx,
		draft.Title, draft.Description, draft.HazardType, draft.SeverityScore,
		draft.TrustScore, draft.Latitude, draft.Longitude, location,
		draft.Address, draft.ReporterID, source, false, now, now)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to read assigned report id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report: %w", err)
	}

	return &HazardReport{
		ID:            id,
		Title:         draft.Title,
		Description:   draft.Description,
		HazardType:    draft.HazardType,
		SeverityScore: draft.SeverityScore,
		TrustScore:    draft.TrustScore,
		Latitude:      draft.Latitude,
		Longitude:     draft.Longitude,
		Location:      location,
		Address:       draft.Address,
		ReporterID:    draft.ReporterID,
		ReportSource:  source,
		IsVerified:    false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GetReport fetches a single report by id.
func (r *Repository) GetReport(ctx context.Context, id int64) (*HazardReport, error) {
	stmt, err := r.db.GetPreparedStatement("get_report")
	if err != nil {
		return nil, err
	}

	var report HazardReport
	err = stmt.QueryRowContext(ctx, id).Scan(
		&report.ID, &report.Title, &report.Description, &report.HazardType,
		&report.SeverityScore, &report.TrustScore, &report.Latitude,
		&report.Longitude, &report.Location, &report.Address, &report.ReporterID,
		&report.ReportSource, &report.IsVerified, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get report %d: %w", id, err)
	}

	return &report, nil
}

// SetVerified flips the moderation flag and bumps updated_at. The moderation
// workflow itself lives outside this service.
func (r *Repository) SetVerified(ctx context.Context, id int64, verified bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE hazard_reports SET is_verified = ?, updated_at = ? WHERE id = ?`,
		verified, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update verification flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("report %d not found", id)
	}

	return nil
}

// DashboardAnalytics aggregates counts for the dashboard endpoint.
type DashboardAnalytics struct {
	TotalReports    int64            `json:"total_reports"`
	ActiveHazards   int64            `json:"active_hazards"`
	VerifiedReports int64            `json:"verified_reports"`
	AvgTrustScore   float64          `json:"avg_trust_score"`
	HazardTypes     map[string]int64 `json:"hazard_types"`
}

// GetDashboardAnalytics computes the aggregate view consumed by dashboards.
// Active hazards are the reports not yet verified by moderation.
func (r *Repository) GetDashboardAnalytics(ctx context.Context) (*DashboardAnalytics, error) {
	analytics := &DashboardAnalytics{HazardTypes: make(map[string]int64)}

	countStmt, err := r.db.GetPreparedStatement("count_reports")
	if err != nil {
		return nil, err
	}
	if err := countStmt.QueryRowContext(ctx).Scan(&analytics.TotalReports); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	verifiedStmt, err := r.db.GetPreparedStatement("count_by_verified")
	if err != nil {
		return nil, err
	}
	if err := verifiedStmt.QueryRowContext(ctx, true).Scan(&analytics.VerifiedReports); err != nil {
		return nil, fmt.Errorf("failed to count verified reports: %w", err)
	}
	analytics.ActiveHazards = analytics.TotalReports - analytics.VerifiedReports

	avgStmt, err := r.db.GetPreparedStatement("avg_trust_score")
	if err != nil {
		return nil, err
	}
	if err := avgStmt.QueryRowContext(ctx).Scan(&analytics.AvgTrustScore); err != nil {
		return nil, fmt.Errorf("failed to average trust score: %w", err)
	}

	typeStmt, err := r.db.GetPreparedStatement("count_by_type")
	if err != nil {
		return nil, err
	}
	rows, err := typeStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by hazard type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hazardType string
		var count int64
		if err := rows.Scan(&hazardType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hazard type count: %w", err)
		}
		analytics.HazardTypes[hazardType] = count
	}

	return analytics, rows.Err()
}

// NearbyReport is a report together with its distance from the query point.
type NearbyReport struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	HazardType     string  `json:"hazard_type"`
	SeverityScore  float64 `json:"severity_score"`
	TrustScore     float64 `json:"trust_score"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DistanceMeters float64 `json:"distance_meters"`
}

const earthRadiusMeters = 6371000.0

// FindNearby returns reports within radiusMeters of the query point, nearest
// first. A bounding-box prefilter narrows the scan before the exact haversine
// distance is applied.
func (r *Repository) FindNearby(ctx context.Context, lat, lon float64, radiusMeters float64) ([]NearbyReport, error) {
	latDelta := radiusMeters / 111320.0
	lonDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonDelta = latDelta / cosLat
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, title, hazard_type,
		severity_score, trust_score, latitude, longitude
		FROM hazard_reports
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		lat-latDelta, lat+latDelta, lon-lonDelta, lon+lonDelta)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby reports: %w", err)
	}
	defer rows.Close()

	nearby := []NearbyReport{}
	for rows.Next() {
		var report NearbyReport
		if err := rows.Scan(&report.ID, &report.Title, &report.HazardType,
			&report.SeverityScore, &report.TrustScore,
			&report.Latitude, &report.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan nearby report: %w", err)
		}

		report.DistanceMeters = haversineMeters(lat, lon, report.Latitude, report.Longitude)
		if report.DistanceMeters <= radiusMeters {
			nearby = append(nearby, report)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})

	return nearby, nil
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

// InsertSocialMediaPost stores an ingested external post.
func (r *Repository) InsertSocialMediaPost(ctx context.Context, post *SocialMediaPost) error {
	stmt, err := r.db.GetPreparedStatement("insert_social_post")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, post.ID, post.Platform, post.PostID,
		post.Content, post.Author, post.SentimentScore, post.HazardKeywords,
		post.LocationExtracted, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert social media post: %w", err)
	}

	return nil
}
