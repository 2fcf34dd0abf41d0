package repository

import (
	"context"
	"time"

	"github.com/CharlesManalo/CommunitySafe/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type ReportRepo interface {
	CreateReport(ctx context.Context, r *models.HazardReport) (int64, error)
	GetReportByID(ctx context.Context, id int64) (*models.HazardReport, error)
	// ListReports returns every report, newest date_reported first,
	// ties broken by id descending.
	ListReports(ctx context.Context) ([]models.HazardReport, error)
	// ResolveReport marks a pending report resolved. It reports false when
	// no pending row with that id existed.
	ResolveReport(ctx context.Context, id int64, afterImage string, dateResolved time.Time) (bool, error)
}

type AdminRepo interface {
	CreateAdmin(ctx context.Context, a *models.AdminAccount) (int64, error)
	GetAdminByUsername(ctx context.Context, username string) (*models.AdminAccount, error)
}
