package database

import (
	"context"
	"log/slog"
)

// sampleReports mirror the demo dataset around Chennai used for dashboard
// walkthroughs. They are inserted only into an empty database.
var sampleReports = []ReportDraft{
	{
		Title:         "Road Flooding near Marina Beach",
		Description:   "Heavy flooding on Marina Beach Road, water is two feet high and rising",
		HazardType:    HazardFlood,
		SeverityScore: 0.8,
		TrustScore:    0.9,
		Latitude:      13.0500,
		Longitude:     80.2824,
		Address:       "Marina Beach Road, Chennai",
		ReportSource:  SourceCitizenApp,
	},
	{
		Title:         "Tree Fall on Anna Salai",
		Description:   "Large tree fell across the road, traffic completely blocked both ways",
		HazardType:    HazardInfrastructure,
		SeverityScore: 0.6,
		TrustScore:    0.7,
		Latitude:      13.0604,
		Longitude:     80.2496,
		Address:       "Anna Salai, Chennai",
		ReportSource:  SourceCitizenApp,
	},
	{
		Title:         "Power Lines Down in T Nagar",
		Description:   "Electric pole leaning dangerously after last night's storm, wires hanging low",
		HazardType:    HazardWeather,
		SeverityScore: 0.7,
		TrustScore:    0.75,
		Latitude:      13.0418,
		Longitude:     80.2341,
		Address:       "T Nagar, Chennai",
		ReportSource:  SourceCitizenApp,
	},
	{
		Title:         "Social Media Alert: water logging near velachery...",
		Description:   "water logging near velachery main road, buses are getting stuck",
		HazardType:    HazardSocialMediaAlert,
		SeverityScore: 0.5,
		TrustScore:    0.55,
		Latitude:      12.9815,
		Longitude:     80.2180,
		ReportSource:  SourceTwitterSimulation,
	},
}

// SeedSampleData inserts the demo dataset when the reports table is empty.
func (r *Repository) SeedSampleData(ctx context.Context) error {
	stmt, err := r.db.GetPreparedStatement("count_reports")
	if err != nil {
		return err
	}

	var count int64
	if err := stmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, draft := range sampleReports {
		if _, err := r.InsertReport(ctx, draft); err != nil {
			return err
		}
	}

	slog.Info("Seeded sample hazard reports", "count", len(sampleReports))
	return nil
}
