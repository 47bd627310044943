package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/athlete-records-api/pkg/export"
	appErrors "github.com/noah-isme/athlete-records-api/pkg/errors"
)

// ExportFormat selects the list export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat reads a format query value; blank means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Validation("format must be csv or pdf")
	}
}

// ContentType is the response media type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDocument(doc export.Document) ([]byte, error)
}

// PrintService renders the detail print view and list exports.
type PrintService struct {
	institution string
	csv         csvRenderer
	pdf         pdfRenderer
}

// NewPrintService constructs a PrintService; nil renderers fall back to the defaults.
func NewPrintService(institution string, csv csvRenderer, pdf pdfRenderer) *PrintService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PrintService{institution: institution, csv: csv, pdf: pdf}
}

// StudentDocument lays out a detail view as a printable document.
func (s *PrintService) StudentDocument(view *StudentView) export.Document {
	st := view.Student
	age := "-"
	if view.Age != nil {
		age = strconv.Itoa(*view.Age) + " años"
	}

	personal := export.Section{
		Heading: "Datos personales",
		Fields: []export.Field{
			{Label: "Cédula", Value: st.NationalID},
			{Label: "Nombres y apellidos", Value: st.FullName},
			{Label: "Fecha de nacimiento", Value: orDash(st.BirthDate)},
			{Label: "Edad", Value: age},
			{Label: "Correo", Value: orDash(st.Email)},
			{Label: "Dirección", Value: orDash(st.Address)},
			{Label: "Facultad", Value: orDash(st.FacultyName)},
			{Label: "Carrera", Value: orDash(st.MajorName)},
		},
	}

	sports := export.Section{Heading: "Deportes", Empty: "Sin deportes registrados"}
	for _, e := range view.Sports {
		sports.Fields = append(sports.Fields, export.Field{Label: e.Sport, Value: "Cinta: " + orDash(e.Belt)})
	}

	medical := export.Section{Heading: "Ficha médica", Empty: "Sin ficha médica registrada"}
	if m := view.Medical; m != nil {
		medical.Fields = []export.Field{
			{Label: "Tipo de sangre", Value: orDash(string(m.BloodType))},
			{Label: "Patologías", Value: orDash(m.Pathologies)},
			{Label: "Último chequeo", Value: orDash(m.LastCheckup)},
		}
	}

	tests := export.Section{Heading: "Tests físicos", Empty: "Sin tests físicos registrados"}
	if len(view.PhysicalTests) > 0 {
		table := export.Dataset{Headers: []string{"Categoría", "Prueba", "Resultado", "Unidad", "Fecha"}}
		for _, t := range view.PhysicalTests {
			table.Rows = append(table.Rows, map[string]string{
				"Categoría": string(t.Category),
				"Prueba":    t.Name,
				"Resultado": t.Result,
				"Unidad":    t.Unit,
				"Fecha":     t.RecordedAt,
			})
		}
		tests.Table = &table
	}

	records := export.Section{Heading: "Récords deportivos", Empty: "Sin récords deportivos registrados"}
	if len(view.CompetitionRecords) > 0 {
		table := export.Dataset{Headers: []string{"Competencia", "Fecha", "Resultado", "Posición"}}
		for _, r := range view.CompetitionRecords {
			table.Rows = append(table.Rows, map[string]string{
				"Competencia": r.Name,
				"Fecha":       r.Date,
				"Resultado":   string(r.Result),
				"Posición":    r.Placement.String(),
			})
		}
		records.Table = &table
	}

	return export.Document{
		Title:    "Ficha Deportiva",
		Subtitle: subtitle(s.institution, st.FullName),
		Sections: []export.Section{personal, sports, medical, tests, records},
	}
}

// PrintStudent renders the detail view as a PDF.
func (s *PrintService) PrintStudent(view *StudentView) ([]byte, error) {
	out, err := s.pdf.RenderDocument(s.StudentDocument(view))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render student sheet")
	}
	return out, nil
}

// ListDataset turns the visible list rows into an export table.
func ListDataset(page *ListPage) export.Dataset {
	data := export.Dataset{Headers: []string{"Cédula", "Nombres y apellidos", "Edad", "Carrera", "Deportes", "Cintas"}}
	for _, row := range page.Visible {
		age := ""
		if row.Age != nil {
			age = strconv.Itoa(*row.Age)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Cédula":              row.NationalID,
			"Nombres y apellidos": row.FullName,
			"Edad":                age,
			"Carrera":             row.Major,
			"Deportes":            strings.Join(row.Sports, ", "),
			"Cintas":              strings.Join(row.Belts, ", "),
		})
	}
	return data
}

// ExportList renders the visible rows of a list page.
func (s *PrintService) ExportList(page *ListPage, format ExportFormat) ([]byte, error) {
	data := ListDataset(page)
	var (
		out []byte
		err error
	)
	switch format {
	case ExportFormatPDF:
		out, err = s.pdf.Render(data, "Estudiantes")
	case ExportFormatCSV:
		out, err = s.csv.Render(data)
	default:
		return nil, appErrors.Validation(fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export student list")
	}
	return out, nil
}

func subtitle(institution, name string) string {
	if institution == "" {
		return name
	}
	return institution + " · " + name
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
