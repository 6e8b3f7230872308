package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db)
}

func TestInsertReportRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	draft := ReportDraft{
		Title:         "Road Flooding near Marina Beach",
		Description:   "Heavy flooding on Marina Beach Road, water is two feet high",
		HazardType:    HazardFlood,
		SeverityScore: 0.8,
		TrustScore:    0.43,
		Latitude:      13.0500,
		Longitude:     80.2824,
		Address:       "Marina Beach Road, Chennai",
	}

	inserted, err := repo.InsertReport(ctx, draft)
	require.NoError(t, err)
	assert.Greater(t, inserted.ID, int64(0))
	assert.Equal(t, "POINT(80.2824 13.05)", inserted.Location)
	assert.Equal(t, SourceCitizenApp, inserted.ReportSource)
	assert.False(t, inserted.IsVerified)

	got, err := repo.GetReport(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.Title, got.Title)
	assert.Equal(t, draft.Description, got.Description)
	assert.Equal(t, draft.HazardType, got.HazardType)
	assert.InDelta(t, draft.TrustScore, got.TrustScore, 1e-9)
	assert.InDelta(t, draft.Latitude, got.Latitude, 1e-9)
	assert.InDelta(t, draft.Longitude, got.Longitude, 1e-9)
	assert.Equal(t, inserted.Location, got.Location)
}

func TestInsertReportDefaultsSource(t *testing.T) {
	repo := newTestRepository(t)

	inserted, err := repo.InsertReport(context.Background(), ReportDraft{
		Title:       "Tree down",
		Description: "Large tree blocking both lanes",
		HazardType:  HazardInfrastructure,
		Latitude:    13.06,
		Longitude:   80.25,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceCitizenApp, inserted.ReportSource)
}

func TestGetReportNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetReport(context.Background(), 999)
	assert.Error(t, err)
}

func TestSetVerified(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	inserted, err := repo.InsertReport(ctx, ReportDraft{
		Title:       "Power lines down",
		Description: "Pole leaning dangerously after the storm",
		HazardType:  HazardWeather,
		Latitude:    13.04,
		Longitude:   80.23,
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetVerified(ctx, inserted.ID, true))

	got, err := repo.GetReport(ctx, inserted.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	assert.Error(t, repo.SetVerified(ctx, 999, true))
}

func TestGetDashboardAnalytics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	empty, err := repo.GetDashboardAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalReports)
	assert.Equal(t, 0.0, empty.AvgTrustScore)

	drafts := []ReportDraft{
		{Title: "Flood A", Description: "d", HazardType: HazardFlood, TrustScore: 0.4, Latitude: 13.05, Longitude: 80.28},
		{Title: "Flood B", Description: "d", HazardType: HazardFlood, TrustScore: 0.6, Latitude: 13.06, Longitude: 80.27},
		{Title: "Gas leak", Description: "d", HazardType: HazardOther, TrustScore: 0.8, Latitude: 13.07, Longitude: 80.26},
	}

	var firstID int64
	for i, draft := range drafts {
		inserted, err := repo.InsertReport(ctx, draft)
		require.NoError(t, err)
		if i == 0 {
			firstID = inserted.ID
		}
	}
	require.NoError(t, repo.SetVerified(ctx, firstID, true))

	analytics, err := repo.GetDashboardAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), analytics.TotalReports)
	assert.Equal(t, int64(1), analytics.VerifiedReports)
	assert.Equal(t, int64(2), analytics.ActiveHazards)
	assert.InDelta(t, 0.6, analytics.AvgTrustScore, 1e-9)
	assert.Equal(t, int64(2), analytics.HazardTypes[HazardFlood])
	assert.Equal(t, int64(1), analytics.HazardTypes[HazardOther])
}

func TestFindNearby(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Marina Beach, roughly 1.1km north of it, and a point far outside the
	// default 5km radius.
	locations := []struct {
		title    string
		lat, lon float64
	}{
		{"At the point", 13.0500, 80.2824},
		{"One km north", 13.0600, 80.2824},
		{"Far away", 13.5000, 80.2824},
	}
	for _, loc := range locations {
		_, err := repo.InsertReport(ctx, ReportDraft{
			Title:       loc.title,
			Description: "d",
			HazardType:  HazardFlood,
			Latitude:    loc.lat,
			Longitude:   loc.lon,
		})
		require.NoError(t, err)
	}

	nearby, err := repo.FindNearby(ctx, 13.0500, 80.2824, 5000)
	require.NoError(t, err)
	require.Len(t, nearby, 2)

	assert.Equal(t, "At the point", nearby[0].Title)
	assert.InDelta(t, 0.0, nearby[0].DistanceMeters, 1.0)
	assert.Equal(t, "One km north", nearby[1].Title)
	assert.InDelta(t, 1112.0, nearby[1].DistanceMeters, 20.0)
}

func TestFindNearbyEmpty(t *testing.T) {
	repo := newTestRepository(t)

	nearby, err := repo.FindNearby(context.Background(), 13.05, 80.28, 5000)
	require.NoError(t, err)
	assert.NotNil(t, nearby)
	assert.Empty(t, nearby)
}

func TestSeedSampleDataIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SeedSampleData(ctx))
	require.NoError(t, repo.SeedSampleData(ctx))

	analytics, err := repo.GetDashboardAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleReports)), analytics.TotalReports)
}

func TestInsertSocialMediaPost(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	post := NewSocialMediaPost("twitter", "tweet-001",
		"water logging near velachery main road", "chennai_updates")
	post.SentimentScore = -0.6
	post.HazardKeywords = "flood,water logging"

	require.NoError(t, repo.InsertSocialMediaPost(ctx, post))

	// Unique post_id constraint rejects duplicates.
	dup := NewSocialMediaPost("twitter", "tweet-001", "duplicate", "someone")
	assert.Error(t, repo.InsertSocialMediaPost(ctx, dup))
}
