package model

import "time"

// SampleStatus is the lifecycle stage of a blood sample.
type SampleStatus string

const (
	SampleStatusCollected   SampleStatus = "collected"
	SampleStatusTested      SampleStatus = "tested"
	SampleStatusResultsSent SampleStatus = "results_sent"
)

// BloodSample tracks one collected sample through the
// collected -> tested -> results_sent lifecycle.
//
// Invariant: TestLocationID, Results, TestedBy and TestedAt are all nil while
// Status is collected and all set once Status is tested or results_sent.
// ResultsSentAt is set iff Status is results_sent.
type BloodSample struct {
	ID                   int64        `db:"id" json:"id"`
	SampleCode           string       `db:"sample_code" json:"sample_code"`
	PatientID            int64        `db:"patient_id" json:"patient_id"`
	CollectionLocationID int64        `db:"collection_location_id" json:"collection_location_id"`
	TestLocationID       *int64       `db:"test_location_id" json:"test_location_id,omitempty"`
	CollectedBy          string       `db:"collected_by" json:"collected_by"`
	CollectedAt          time.Time    `db:"collected_at" json:"collected_at"`
	TestType             string       `db:"test_type" json:"test_type"`
	Status               SampleStatus `db:"status" json:"status"`
	Results              *string      `db:"results" json:"results,omitempty"`
	TestedBy             *string      `db:"tested_by" json:"tested_by,omitempty"`
	TestedAt             *time.Time   `db:"tested_at" json:"tested_at,omitempty"`
	ResultsSentAt        *time.Time   `db:"results_sent_at" json:"results_sent_at,omitempty"`
}

// SampleWithLocations is the per-patient read view with location names
// resolved. TestLocationName is empty until the sample has been tested.
type SampleWithLocations struct {
	BloodSample
	CollectionLocationName string  `db:"collection_location_name" json:"collection_location_name"`
	TestLocationName       *string `db:"test_location_name" json:"test_location_name,omitempty"`
}

// SampleWithPatient is the cross-patient read view used by the samples
// listing and by result delivery, which needs the patient's name and phone.
type SampleWithPatient struct {
	BloodSample
	PatientCode            string `db:"patient_code" json:"patient_code"`
	PatientFirstName       string `db:"first_name" json:"patient_first_name"`
	PatientLastName        string `db:"last_name" json:"patient_last_name"`
	PatientPhone           string `db:"patient_phone" json:"patient_phone"`
	CollectionLocationName string `db:"collection_location_name" json:"collection_location_name"`
}

func (s *SampleWithPatient) PatientFullName() string {
	return s.PatientFirstName + " " + s.PatientLastName
}

// CollectSampleRequest carries the flat field set of a collection.
type CollectSampleRequest struct {
	CollectionLocationID int64  `json:"collection_location_id" binding:"required"`
	TestType             string `json:"test_type" binding:"required"`
	CollectedBy          string `json:"collected_by" binding:"required"`
}

// RecordTestResultsRequest carries the flat field set of a test result entry.
type RecordTestResultsRequest struct {
	TestLocationID int64  `json:"test_location_id" binding:"required"`
	Results        string `json:"results" binding:"required"`
	TestedBy       string `json:"tested_by" binding:"required"`
}

// TestTypes is the catalog offered by the collection form. Free text is
// still accepted; the catalog is advisory.
var TestTypes = []string{
	"Complete Blood Count (CBC)",
	"Blood Sugar",
	"Cholesterol",
	"Liver Function Test",
	"Kidney Function Test",
	"Thyroid Function Test",
	"HIV Test",
	"Hepatitis Panel",
	"Other",
}
