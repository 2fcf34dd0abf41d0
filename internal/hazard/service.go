// Package hazard implements the report lifecycle: filing a hazard report
// with a before photo and resolving it with an after photo.
package hazard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/CharlesManalo/CommunitySafe/internal/imagestore"
	"github.com/CharlesManalo/CommunitySafe/internal/models"
	"github.com/CharlesManalo/CommunitySafe/pkg/repository"
)

// SubmitRequest carries a citizen submission. Latitude and longitude are
// pointers so an absent coordinate is distinguishable from zero.
type SubmitRequest struct {
	Description string
	Latitude    *float64
	Longitude   *float64
	BeforeImage string
}

type Service interface {
	SubmitReport(ctx context.Context, req SubmitRequest) (int64, error)
	ResolveReport(ctx context.Context, id int64, afterImageDataURI string) error
	ListReports(ctx context.Context) ([]models.HazardReport, error)
	Authenticate(ctx context.Context, username, password string) (*models.AdminAccount, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
}

type service struct {
	reports repository.ReportRepo
	admins  repository.AdminRepo
	before  *imagestore.Store
	after   *imagestore.Store
	logger  *slog.Logger
}

func NewService(reports repository.ReportRepo, admins repository.AdminRepo, before, after *imagestore.Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{reports: reports, admins: admins, before: before, after: after, logger: logger}
}

func (s *service) SubmitReport(ctx context.Context, req SubmitRequest) (int64, error) {
	if strings.TrimSpace(req.BeforeImage) == "" {
		return 0, &MissingFieldError{Field: "before_image"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return 0, &MissingFieldError{Field: "description"}
	}
	if req.Latitude == nil {
		return 0, &MissingFieldError{Field: "latitude"}
	}
	if req.Longitude == nil {
		return 0, &MissingFieldError{Field: "longitude"}
	}
	if *req.Latitude < -90 || *req.Latitude > 90 {
		return 0, &InvalidFieldError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if *req.Longitude < -180 || *req.Longitude > 180 {
		return 0, &InvalidFieldError{Field: "longitude", Reason: "must be between -180 and 180"}
	}

	filename, err := s.before.Save(req.BeforeImage, "hazard")
	if err != nil {
		return 0, err
	}

	report := &models.HazardReport{
		BeforeImage:  filename,
		Description:  strings.TrimSpace(req.Description),
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Status:       models.StatusPending,
		DateReported: time.Now().UTC(),
	}

	id, err := s.reports.CreateReport(ctx, report)
	if err != nil {
		// the image is already on disk; remove it so a failed insert
		// does not leave an orphaned file behind
		if rmErr := s.before.Remove(filename); rmErr != nil {
			s.logger.Error("cleanup orphaned before image", slog.String("filename", filename), slog.Any("err", rmErr))
		}
		return 0, fmt.Errorf("store report: %w", err)
	}

	s.logger.Info("report submitted", slog.Int64("id", id), slog.String("before_image", filename))

	return id, nil
}

func (s *service) ResolveReport(ctx context.Context, id int64, afterImageDataURI string) error {
	existing, err := s.reports.GetReportByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	if existing == nil {
		return ErrReportNotFound
	}
	if existing.IsResolved() {
		return ErrAlreadyResolved
	}

	filename, err := s.after.Save(afterImageDataURI, "resolved")
	if err != nil {
		return err
	}

	ok, err := s.reports.ResolveReport(ctx, id, filename, time.Now().UTC())
	if err != nil {
		if rmErr := s.after.Remove(filename); rmErr != nil {
			s.logger.Error("cleanup orphaned after image", slog.String("filename", filename), slog.Any("err", rmErr))
		}
		return fmt.Errorf("resolve report: %w", err)
	}
	if !ok {
		// the row was resolved (or deleted) between the read and the
		// guarded update; the freshly written image is ours to clean up
		if rmErr := s.after.Remove(filename); rmErr != nil {
			s.logger.Error("cleanup orphaned after image", slog.String("filename", filename), slog.Any("err", rmErr))
		}
		return ErrAlreadyResolved
	}

	s.logger.Info("report resolved", slog.Int64("id", id), slog.String("after_image", filename))

	return nil
}

func (s *service) ListReports(ctx context.Context) ([]models.HazardReport, error) {
	return s.reports.ListReports(ctx)
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*models.AdminAccount, error) {
	admin, err := s.admins.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}

// EnsureDefaultAdmin seeds the administrator account on first startup
// against an empty store. Existing accounts are never touched.
func (s *service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	existing, err := s.admins.GetAdminByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := s.admins.CreateAdmin(ctx, &models.AdminAccount{Username: username, PasswordHash: string(hash)}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	s.logger.Info("seeded default admin", slog.String("username", username))

	return nil
}
