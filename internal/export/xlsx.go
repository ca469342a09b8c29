// Package export renders user data as XLSX workbooks.
package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Mayconxzdev/automation-advisor/internal/analytics"
	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// WriteProjects renders the project portfolio as a one-sheet workbook.
func WriteProjects(w io.Writer, projects []model.Project) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Projetos")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"ID", "Título", "Descrição", "Status", "Prioridade",
		"Horas Estimadas", "Economia Esperada", "Custo de Implementação",
		"Economia Mensal", "ROI (%)", "Payback (meses)", "Ferramentas",
		"Prazo", "Criado em",
	} {
		header.AddCell().Value = h
	}

	for _, p := range projects {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().Value = p.Title
		row.AddCell().Value = p.Description
		row.AddCell().Value = string(p.Status)
		row.AddCell().Value = string(p.Priority)
		addOptionalInt(row, p.EstimatedHours)
		row.AddCell().Value = p.ExpectedSavings
		addOptionalFloat(row, p.ImplementationCost)
		addOptionalFloat(row, p.MonthlySavings)
		addOptionalFloat(row, p.ROIPercentage)
		addOptionalInt(row, p.PaybackMonths)
		row.AddCell().Value = strings.Join(p.RecommendedTools, ", ")
		row.AddCell().Value = p.Deadline
		row.AddCell().Value = p.CreatedAt.Format(time.DateOnly)
	}

	return eris.Wrap(f.Write(w), "export: write projects workbook")
}

// WriteROI renders the financial summary plus the per-project breakdown.
func WriteROI(w io.Writer, roi *analytics.ROIAnalytics, projects []model.Project) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Resumo")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	addKV(summary, "Projetos", float64(roi.ProjectCount))
	addKV(summary, "ROI Médio (%)", roi.AverageROI)
	addKV(summary, "Economia Mensal Total (R$)", roi.TotalMonthlySavings)
	addKV(summary, "Economia Anual Projetada (R$)", roi.AnnualSavings)

	detail, err := f.AddSheet("Por Projeto")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	header := detail.AddRow()
	for _, h := range []string{"Título", "Status", "ROI (%)", "Economia Mensal", "Payback (meses)"} {
		header.AddCell().Value = h
	}
	for _, p := range projects {
		row := detail.AddRow()
		row.AddCell().Value = p.Title
		row.AddCell().Value = string(p.Status)
		addOptionalFloat(row, p.ROIPercentage)
		addOptionalFloat(row, p.MonthlySavings)
		addOptionalInt(row, p.PaybackMonths)
	}

	return eris.Wrap(f.Write(w), "export: write roi workbook")
}

func addKV(sheet *xlsx.Sheet, key string, value float64) {
	row := sheet.AddRow()
	row.AddCell().Value = key
	row.AddCell().SetFloat(value)
}

func addOptionalInt(row *xlsx.Row, v *int) {
	cell := row.AddCell()
	if v != nil {
		cell.SetInt(*v)
	}
}

func addOptionalFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
