package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/karteflow/internal/model"
)

type mockPatientRepo struct {
	createFn func(ctx context.Context, seq int, p *model.Patient) error
	created  []*model.Patient
}

func (m *mockPatientRepo) List(ctx context.Context) ([]*model.Patient, error) { return nil, nil }
func (m *mockPatientRepo) Create(ctx context.Context, seq int, p *model.Patient) error {
	m.created = append(m.created, p)
	if m.createFn != nil {
		return m.createFn(ctx, seq, p)
	}
	return nil
}

type mockAppointmentRepo struct {
	created []*model.Appointment
}

func (m *mockAppointmentRepo) List(ctx context.Context) ([]*model.Appointment, error) {
	return nil, nil
}
func (m *mockAppointmentRepo) Create(ctx context.Context, seq int, a *model.Appointment) error {
	m.created = append(m.created, a)
	return nil
}

func TestSeeder_Run_InsertsPatientsAndAppointments(t *testing.T) {
	patients := &mockPatientRepo{}
	appts := &mockAppointmentRepo{}
	s := NewSeeder(patients, appts)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(patients.created) == 0 {
		t.Error("no patients seeded")
	}
	if len(appts.created) == 0 {
		t.Error("no appointments seeded")
	}

	// 予約の患者IDは投入した患者を指している
	ids := make(map[string]bool)
	for _, p := range patients.created {
		ids[p.ID] = true
	}
	for _, a := range appts.created {
		if !ids[a.PatientID] {
			t.Errorf("appointment %s references unknown patient %s", a.ID, a.PatientID)
		}
	}
}

func TestSeeder_Run_PatientFailure_Aborts(t *testing.T) {
	patients := &mockPatientRepo{
		createFn: func(ctx context.Context, seq int, p *model.Patient) error {
			return errors.New("connection refused")
		},
	}
	appts := &mockAppointmentRepo{}
	s := NewSeeder(patients, appts)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(appts.created) != 0 {
		t.Errorf("appointments seeded despite patient failure: %d", len(appts.created))
	}
}
