package model

import "time"

// Patient is registered at exactly one location and identified to humans by
// an immutable, globally unique patient code (PAT######).
type Patient struct {
	ID               int64     `db:"id" json:"id"`
	PatientCode      string    `db:"patient_code" json:"patient_code"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	DateOfBirth      time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender           string    `db:"gender" json:"gender"`
	Phone            string    `db:"phone" json:"phone"`
	Email            string    `db:"email" json:"email,omitempty"`
	Address          string    `db:"address" json:"address,omitempty"`
	EmergencyContact string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	LocationID       int64     `db:"location_id" json:"location_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PatientWithLocation is the joined read view of a patient and the name of
// its registration location.
type PatientWithLocation struct {
	Patient
	LocationName string `db:"location_name" json:"location_name"`
}

// RegisterPatientRequest carries the flat field set of a registration.
// DateOfBirth arrives as YYYY-MM-DD and is parsed by the service.
type RegisterPatientRequest struct {
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name" binding:"required"`
	DateOfBirth      string `json:"date_of_birth" binding:"required,dateonly"`
	Gender           string `json:"gender" binding:"required"`
	Phone            string `json:"phone" binding:"required"`
	Email            string `json:"email" binding:"omitempty,email"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	LocationID       int64  `json:"location_id" binding:"required"`
}

// PatientDetail aggregates everything the patient page shows.
type PatientDetail struct {
	Patient       *PatientWithLocation        `json:"patient"`
	QRCode        string                      `json:"qr_code"`
	HealthRecords []*HealthRecordWithLocation `json:"health_records"`
	BloodSamples  []*SampleWithLocations      `json:"blood_samples"`
}

// DashboardSummary is the aggregate view behind the dashboard page.
type DashboardSummary struct {
	TotalPatients  int64                  `json:"total_patients"`
	TotalLocations int64                  `json:"total_locations"`
	PendingSamples int64                  `json:"pending_samples"`
	RecentPatients []*PatientWithLocation `json:"recent_patients"`
}
