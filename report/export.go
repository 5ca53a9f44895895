package report

import (
	"bytes"
	"fmt"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/session"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Reposiciones"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02 15:04"
)

var (
	ExportRepositionsFunc = ExportRepositions

	headers = []string{"Folio", "Tipo", "Solicitante", "Área solicitante", "Área actual", "Estado",
		"Urgencia", "Modelo", "Consumo tela", "Creada", "Completada"}
)

// ExportRepositions renders the unrestricted listing of the session user as a workbook.
func ExportRepositions(includeDeleted bool, s *session.Session) (*bytes.Buffer, error) {
	records, err := reposition.QueryAllRepositionsFunc(includeDeleted, s)
	if err != nil {
		return nil, err
	}
	f, err := BuildWorkbook(records, time.Now())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.WriteToBuffer()
}

func BuildWorkbook(records []domain.Reposition, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetCellValue(SheetName, "A1", "Reporte de reposiciones")
	f.SetCellValue(SheetName, "A2", fmt.Sprintf("Generado: %s", generatedAt.Format(dateLayout)))

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(SheetName, cell, h)
		f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}
	f.SetColWidth(SheetName, "A", "K", 18)

	for i, r := range records {
		completed := ""
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(dateLayout)
		}
		values := []interface{}{r.Folio, string(r.Type), r.SolicitanteNombre, string(r.SolicitanteArea),
			string(r.CurrentArea), string(r.Status), string(r.Urgencia), r.ModeloPrenda, r.ConsumoTela,
			r.CreatedAt.Format(dateLayout), completed}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+5)
			f.SetCellValue(SheetName, cell, v)
		}
	}
	return f, nil
}

// FileName is the attachment name of a report generated at t.
func FileName(t time.Time) string {
	return "reposiciones-" + t.Format("20060102") + ".xlsx"
}
