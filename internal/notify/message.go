package notify

import (
	"fmt"
	"strings"
	"time"
)

const resultsBanner = "🏥 MEDICAL TEST RESULTS 🏥"

// ResultsMessage holds the fields of the outbound results notification.
// Field order in the rendered message is fixed.
type ResultsMessage struct {
	PatientName string
	PatientCode string
	SampleCode  string
	TestType    string
	Results     string
	TestedBy    string
	TestedAt    time.Time
}

// Format renders the message body sent to the patient.
func (m ResultsMessage) Format() string {
	var b strings.Builder
	b.WriteString(resultsBanner)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Patient: %s\n", m.PatientName)
	fmt.Fprintf(&b, "Patient ID: %s\n", m.PatientCode)
	fmt.Fprintf(&b, "Sample ID: %s\n", m.SampleCode)
	fmt.Fprintf(&b, "Test Type: %s\n", m.TestType)
	b.WriteString("\nResults:\n")
	b.WriteString(m.Results)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Tested by: %s\n", m.TestedBy)
	fmt.Fprintf(&b, "Test Date: %s\n", m.TestedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("\nFor questions, please contact your healthcare provider.")
	return b.String()
}
