package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CharlesManalo/CommunitySafe/internal/models"
)

func (r *SQLiteRepo) CreateReport(ctx context.Context, report *models.HazardReport) (int64, error) {
	if report == nil {
		return 0, fmt.Errorf("report is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO hazard_reports (before_image, description, latitude, longitude, status, date_reported, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.BeforeImage, report.Description, report.Latitude, report.Longitude, report.Status, toMillis(report.DateReported), toMillis(time.Now()))
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetReportByID(ctx context.Context, id int64) (*models.HazardReport, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, before_image, after_image, description, latitude, longitude, status, date_reported, date_resolved, created_at FROM hazard_reports WHERE id = ?`, id)

	report, err := scanReport(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return report, nil
}

func (r *SQLiteRepo) ListReports(ctx context.Context) ([]models.HazardReport, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, before_image, after_image, description, latitude, longitude, status, date_reported, date_resolved, created_at FROM hazard_reports ORDER BY date_reported DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HazardReport
	for rows.Next() {
		report, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *report)
	}

	return out, rows.Err()
}

// ResolveReport flips a pending report to Resolved. The status guard in the
// WHERE clause makes the transition one-way: a second resolve attempt (or a
// bogus id) changes nothing and returns false.
func (r *SQLiteRepo) ResolveReport(ctx context.Context, id int64, afterImage string, dateResolved time.Time) (bool, error) {
	res, err := r.conn.Exec(ctx,
		`UPDATE hazard_reports SET after_image = ?, status = ?, date_resolved = ? WHERE id = ? AND status = ?`,
		afterImage, models.StatusResolved, toMillis(dateResolved), id, models.StatusPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func scanReport(scan func(dest ...any) error) (*models.HazardReport, error) {
	var report models.HazardReport
	var afterImage sql.NullString
	var dateReported, createdAt int64
	var dateResolved sql.NullInt64

	if err := scan(&report.ID, &report.BeforeImage, &afterImage, &report.Description,
		&report.Latitude, &report.Longitude, &report.Status,
		&dateReported, &dateResolved, &createdAt); err != nil {
		return nil, err
	}

	if afterImage.Valid {
		report.AfterImage = &afterImage.String
	}
	report.DateReported = fromMillis(dateReported)
	if dateResolved.Valid {
		t := fromMillis(dateResolved.Int64)
		report.DateResolved = &t
	}
	report.CreatedAt = fromMillis(createdAt)

	return &report, nil
}
