package mock

import (
	"context"
	"time"

	"github.com/CharlesManalo/CommunitySafe/internal/models"
)

// Test helpers and mocks
type Mocks struct {
	ReportRepo *mockReportRepo
	AdminRepo  *mockAdminRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		ReportRepo: &mockReportRepo{},
		AdminRepo:  &mockAdminRepo{},
	}
}

type mockReportRepo struct {
	Stored     []models.HazardReport
	nextID     int64
	CreateErr  error
	ListErr    error
	ResolveErr error
}

func (m *mockReportRepo) CreateReport(ctx context.Context, r *models.HazardReport) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	stored := *r
	stored.ID = m.nextID
	stored.CreatedAt = time.Now().UTC()
	m.Stored = append(m.Stored, stored)
	return stored.ID, nil
}

func (m *mockReportRepo) GetReportByID(ctx context.Context, id int64) (*models.HazardReport, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			r := m.Stored[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *mockReportRepo) ListReports(ctx context.Context) ([]models.HazardReport, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.HazardReport, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *mockReportRepo) ResolveReport(ctx context.Context, id int64, afterImage string, dateResolved time.Time) (bool, error) {
	if m.ResolveErr != nil {
		return false, m.ResolveErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID == id && m.Stored[i].Status == models.StatusPending {
			m.Stored[i].Status = models.StatusResolved
			m.Stored[i].AfterImage = &afterImage
			d := dateResolved
			m.Stored[i].DateResolved = &d
			return true, nil
		}
	}
	return false, nil
}

type mockAdminRepo struct {
	Stored    *models.AdminAccount
	CreateErr error
}

func (m *mockAdminRepo) CreateAdmin(ctx context.Context, a *models.AdminAccount) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *a
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *mockAdminRepo) GetAdminByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	if m.Stored != nil && m.Stored.Username == username {
		return m.Stored, nil
	}
	return nil, nil
}
