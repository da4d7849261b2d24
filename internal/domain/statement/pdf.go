// Package statement renders the official statement documents HR attaches
// when approving a statement request.
package statement

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Subject struct {
	EmployeeName string
	JobNumber    string
	Department   string
	Subtype      string // salary or status
	IssuedAt     time.Time
}

// Generate produces the statement PDF in memory; the caller stores it as
// the approval attachment.
func Generate(subject Subject) ([]byte, error) {
	title := "Employment Status Statement"
	body := "This is to certify that the employee named below is registered in the human resources system and their employment status is active as of the issue date."
	if subject.Subtype == "salary" {
		title = "Salary Statement"
		body = "This is to certify that the employee named below is registered in the human resources system and receives their salary according to the approved payroll scale."
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", subject.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Job number: %s", subject.JobNumber))
	pdf.Ln(7)
	if subject.Department != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", subject.Department))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Issued: %s", subject.IssuedAt.Format("2006-01-02")))
	pdf.Ln(12)
	pdf.MultiCell(0, 6, body, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the display name of a generated statement document.
func FileName(subtype string, issuedAt time.Time) string {
	return fmt.Sprintf("%s-statement-%s.pdf", subtype, issuedAt.Format("20060102"))
}
