package handler_test

import (
	"context"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDashboardService is a mock implementation of ports.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) PatientTimeline(ctx context.Context, patientID uuid.UUID, query ports.TimelineQuery) (*ports.TimelineView, error) {
	args := m.Called(ctx, patientID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TimelineView), args.Error(1)
}

func (m *MockDashboardService) FollowUpCalendar(ctx context.Context, month domain.Month) (*ports.CalendarView, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CalendarView), args.Error(1)
}

func (m *MockDashboardService) PregnancyProgress(ctx context.Context, patientID uuid.UUID) (*ports.PregnancyView, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.PregnancyView), args.Error(1)
}
