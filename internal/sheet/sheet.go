// Package sheet renders printable one-page fitment sheets: the wheel's
// geometry fields, its tire combination table, and a QR code identifying the
// wheel to the consuming tool.
package sheet

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/treadlab/fitment/internal/models"
)

const (
	pageMargin = 15.0
	qrSizeMM   = 30.0
)

// Build renders the fitment sheet for one wheel as a PDF document.
func Build(spec models.WheelSpec, tires []models.TireSpec) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, fmt.Sprintf("Fitment Sheet: %s", spec.Name), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// QR code in the top-right corner, encoding the wheel's export
	// identity for the consuming tool.
	qrPng, err := qrcode.Encode("fitment://wheels/"+spec.Name, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wheel QR code: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("wheel_qr", opts, bytes.NewReader(qrPng))
	pageWidth, _ := pdf.GetPageSize()
	pdf.ImageOptions("wheel_qr", pageWidth-pageMargin-qrSizeMM, pageMargin, qrSizeMM, qrSizeMM, false, opts, 0, "")

	// Wheel fields
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Wheel", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)

	rows := [][2]string{
		{"Diameter", fmt.Sprintf("%g in", spec.Diameter)},
		{"Width", fmt.Sprintf("%g in", spec.Width)},
		{"Offset (ET)", fmt.Sprintf("%g mm", spec.Offset)},
		{"Bolt pattern", spec.BoltPattern},
		{"Center bore", fmt.Sprintf("%g mm", spec.CenterBore)},
		{"Load rating", fmt.Sprintf("%g lbs", spec.LoadRating)},
	}
	if spec.ModelPath != "" {
		rows = append(rows, [2]string{"Model", spec.ModelPath})
	}
	for _, row := range rows {
		pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Tire combination table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Tire Combinations", "", 1, "L", false, 0, "")

	if len(tires) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(0, 6, "No tire combinations on record.", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Arial", "B", 9)
		headers := []struct {
			label string
			width float64
		}{
			{"Size", 30}, {"Load", 18}, {"Speed", 18},
			{"Sidewall (mm)", 30}, {"Overall dia. (mm)", 35},
		}
		for _, h := range headers {
			pdf.CellFormat(h.width, 6, h.label, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, tire := range tires {
			tire.Recompute()
			pdf.CellFormat(30, 6, tire.SizeString(), "", 0, "L", false, 0, "")
			pdf.CellFormat(18, 6, fmt.Sprintf("%d", tire.LoadIndex), "", 0, "L", false, 0, "")
			pdf.CellFormat(18, 6, tire.SpeedRating, "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", tire.SidewallHeightMM), "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", tire.OverallDiameterMM), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render fitment sheet: %w", err)
	}
	return buf.Bytes(), nil
}
