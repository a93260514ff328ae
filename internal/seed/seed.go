// Package seed は開発・動作確認用のサンプルデータ投入を提供する。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/karteflow/internal/model"
	"github.com/hitoshi/karteflow/internal/repository"
)

// Seeder はサンプルの患者と予約をデータベースに投入する。
type Seeder struct {
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
}

// NewSeeder はSeederを生成する。
func NewSeeder(patients repository.PatientRepository, appointments repository.AppointmentRepository) *Seeder {
	return &Seeder{
		patients:     patients,
		appointments: appointments,
	}
}

// samplePatients は動作確認用の患者データ。
func samplePatients() []*model.Patient {
	return []*model.Patient{
		{ID: "p-0001", Name: "Jane Doe", DOB: "1985-03-12", MRN: "001", Address: "456 Oak St", Referrer: "Dr. Smith"},
		{ID: "p-0002", Name: "John Roe", DOB: "1972-11-30", MRN: "002", Address: "789 Pine Ave", Referrer: "Dr. Brown"},
		{ID: "p-0003", Name: "Mary Major", DOB: "1990-07-04", MRN: "003", Address: "12 Elm Rd", Referrer: ""},
		{ID: "p-0004", Name: "Richard Miles", DOB: "1968-01-22", MRN: "004", Address: "34 Maple Ct", Referrer: "Dr. Smith"},
		{ID: "p-0005", Name: "Paula Prince", DOB: "2001-09-15", MRN: "005", Address: "56 Cedar Ln", Referrer: "Dr. Lee"},
	}
}

// sampleAppointments は基準日を起点とした予約データを生成する。
// 当日・翌日・翌々日に分散させ、日送り機能の確認に使える形にする。
func sampleAppointments(base time.Time) []*model.Appointment {
	day := func(offset int) string {
		return base.AddDate(0, 0, offset).Format("2006-01-02")
	}
	return []*model.Appointment{
		{ID: "appt-0001", Date: day(0), Time: "09:30", PatientID: "p-0001"},
		{ID: "appt-0002", Date: day(0), Time: "10:00", PatientID: "p-0002"},
		{ID: "appt-0003", Date: day(0), Time: "14:15", PatientID: "p-0003"},
		{ID: "appt-0004", Date: day(1), Time: "09:00", PatientID: "p-0004"},
		{ID: "appt-0005", Date: day(1), Time: "11:45", PatientID: "p-0001"},
		{ID: "appt-0006", Date: day(2), Time: "16:30", PatientID: "p-0005"},
	}
}

// Run はサンプルデータを投入する。既存データの有無は確認しない。
func (s *Seeder) Run(ctx context.Context) error {
	patients := samplePatients()
	for i, p := range patients {
		if err := s.patients.Create(ctx, i, p); err != nil {
			return fmt.Errorf("患者データの投入に失敗しました（%s）: %w", p.ID, err)
		}
	}
	slog.Info("seeded patients", slog.Int("count", len(patients)))

	appointments := sampleAppointments(time.Now())
	for i, a := range appointments {
		if err := s.appointments.Create(ctx, i, a); err != nil {
			return fmt.Errorf("予約データの投入に失敗しました（%s）: %w", a.ID, err)
		}
	}
	slog.Info("seeded appointments", slog.Int("count", len(appointments)))

	return nil
}
