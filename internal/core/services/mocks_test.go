package services_test

import (
	"context"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPatientRepository is a mock implementation of PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) GetPatientByID(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

// MockClinicalRecordRepository is a mock implementation of ClinicalRecordRepository
type MockClinicalRecordRepository struct {
	mock.Mock
}

func (m *MockClinicalRecordRepository) ListHealthChecks(ctx context.Context, patientID uuid.UUID) ([]domain.HealthCheck, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HealthCheck), args.Error(1)
}

func (m *MockClinicalRecordRepository) ListConsultations(ctx context.Context, patientID uuid.UUID) ([]domain.Consultation, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Consultation), args.Error(1)
}

func (m *MockClinicalRecordRepository) ListFollowUps(ctx context.Context, patientID uuid.UUID) ([]domain.FollowUp, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FollowUp), args.Error(1)
}

func (m *MockClinicalRecordRepository) ListAlerts(ctx context.Context, patientID uuid.UUID) ([]domain.RiskAlert, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RiskAlert), args.Error(1)
}

func (m *MockClinicalRecordRepository) ListFollowUpsBetween(ctx context.Context, from, to time.Time) ([]domain.FollowUp, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FollowUp), args.Error(1)
}

func (m *MockClinicalRecordRepository) ListPendingFollowUpsBefore(ctx context.Context, before time.Time) ([]domain.FollowUp, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FollowUp), args.Error(1)
}

// MockAlertPublisher is a mock implementation of AlertPublisher
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishOverdueFollowUp(ctx context.Context, followUp domain.FollowUp, ref time.Time) error {
	args := m.Called(ctx, followUp, ref)
	return args.Error(0)
}
