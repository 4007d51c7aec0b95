package model

import (
	"fmt"
	"time"
)

// HealthRecord is a point-of-care measurement set. Records are append-only:
// never updated, never deleted. The location is where the measurement was
// taken, which may differ from the patient's registration location.
type HealthRecord struct {
	ID                     int64     `db:"id" json:"id"`
	PatientID              int64     `db:"patient_id" json:"patient_id"`
	LocationID             int64     `db:"location_id" json:"location_id"`
	Height                 *float64  `db:"height" json:"height,omitempty"`
	Weight                 *float64  `db:"weight" json:"weight,omitempty"`
	Temperature            *float64  `db:"temperature" json:"temperature,omitempty"`
	BloodPressureSystolic  *int64    `db:"blood_pressure_systolic" json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int64    `db:"blood_pressure_diastolic" json:"blood_pressure_diastolic,omitempty"`
	HeartRate              *int64    `db:"heart_rate" json:"heart_rate,omitempty"`
	Notes                  string    `db:"notes" json:"notes,omitempty"`
	RecordedBy             string    `db:"recorded_by" json:"recorded_by"`
	RecordedAt             time.Time `db:"recorded_at" json:"recorded_at"`
}

// BloodPressure renders the systolic/diastolic pair. The pair is only
// meaningful together; if either side is absent the whole reading is absent.
func (r *HealthRecord) BloodPressure() string {
	if r.BloodPressureSystolic == nil || r.BloodPressureDiastolic == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", *r.BloodPressureSystolic, *r.BloodPressureDiastolic)
}

// HealthRecordWithLocation is the joined read view with the measuring
// location's name.
type HealthRecordWithLocation struct {
	HealthRecord
	LocationName string `db:"location_name" json:"location_name"`
}

// AddHealthRecordRequest carries the flat field set of a measurement.
// Numeric vitals arrive as strings straight from the form; empty means
// "not measured" and is stored as NULL. The service parses and rejects
// non-numeric input.
type AddHealthRecordRequest struct {
	LocationID  int64  `json:"location_id" binding:"required"`
	RecordedBy  string `json:"recorded_by" binding:"required"`
	Height      string `json:"height"`
	Weight      string `json:"weight"`
	Temperature string `json:"temperature"`
	BPSystolic  string `json:"bp_systolic"`
	BPDiastolic string `json:"bp_diastolic"`
	HeartRate   string `json:"heart_rate"`
	Notes       string `json:"notes"`
}
