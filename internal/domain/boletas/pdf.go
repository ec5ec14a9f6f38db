package boletas

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const dateLayout = "02/01/2006"

// renderPDF lays out one payslip on an A4 page.
func renderPDF(data SlipData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Boleta de pago", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Boleta de pago"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(data.CompanyName))
	pdf.Ln(6)
	if data.ProjectName != "" {
		pdf.Cell(0, 7, tr("Proyecto: "+data.ProjectName))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Periodo: %s al %s", data.PeriodStart.Format(dateLayout), data.PeriodEnd.Format(dateLayout)))
	pdf.Ln(6)
	if data.PaidAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Fecha de pago: %s", data.PaidAt.Format(dateLayout)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section(pdf, tr("Trabajador"))
	row(pdf, tr, "Apellidos y nombres", data.EmployeeName)
	row(pdf, tr, "Documento", data.DocumentNumber)
	row(pdf, tr, "Cargo", data.Position)
	row(pdf, tr, "Cuenta bancaria", maskAccount(data.BankAccount))
	pdf.Ln(4)

	section(pdf, tr("Asistencia"))
	row(pdf, tr, "Días trabajados", fmt.Sprint(data.DaysWorked))
	row(pdf, tr, "Faltas", fmt.Sprint(data.Absences))
	row(pdf, tr, "Tardanzas", fmt.Sprint(data.Tardies))
	row(pdf, tr, "Horas extra", data.OvertimeHours.StringFixed(2))
	pdf.Ln(4)

	section(pdf, tr("Ingresos"))
	amountRow(pdf, tr, "Sueldo básico", data.BasicPay)
	amountRow(pdf, tr, "Horas extra", data.OvertimePay)
	amountRow(pdf, tr, "Bonificaciones", data.Bonuses)
	totalRow(pdf, tr, "Total ingresos", data.TotalIngresos)
	pdf.Ln(4)

	section(pdf, tr("Descuentos"))
	amountRow(pdf, tr, "Descuentos de ley", data.StatutoryDeductions)
	amountRow(pdf, tr, "Adelantos y otros descuentos", data.RegisteredDeductions)
	totalRow(pdf, tr, "Total descuentos", data.TotalDescuentos)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(130, 9, tr("Neto a pagar"), "TB", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, money(data.Neto), "TB", 1, "R", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, tr("Aporte del empleador: "+money(data.EmployerContribution)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip %s: %w", data.PayslipID, err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(180, 8, title, "", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.CellFormat(70, 7, tr(label), "", 0, "L", false, 0, "")
	pdf.CellFormat(110, 7, tr(value), "", 1, "L", false, 0, "")
}

func amountRow(pdf *gofpdf.Fpdf, tr func(string) string, label string, value decimal.Decimal) {
	pdf.CellFormat(130, 7, tr(label), "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, money(value), "", 1, "R", false, 0, "")
}

func totalRow(pdf *gofpdf.Fpdf, tr func(string) string, label string, value decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 7, tr(label), "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, money(value), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func money(value decimal.Decimal) string {
	return "S/ " + value.StringFixed(2)
}

func maskAccount(account string) string {
	if account == "" {
		return "-"
	}
	if len(account) <= 4 {
		return account
	}
	return "****" + account[len(account)-4:]
}
