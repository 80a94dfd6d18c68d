package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/themobileprof/momvitals-be/internal/db"
)

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Vitals History"

// VitalsHeader is the header row of the export
var VitalsHeader = []string{
	"Logged At",
	"Blood Sugar (mg/dL)",
	"Systolic (mmHg)",
	"Diastolic (mmHg)",
	"BMI",
	"Weight (kg)",
	"Height (cm)",
	"Pregnancy Week",
	"Fetal Kicks",
	"Overall Risk",
	"Health Score",
	"Streak",
	"Symptoms",
}

var columnWidths = []float64{20, 18, 16, 16, 8, 12, 12, 15, 12, 14, 13, 8, 40}

// Filename returns the download name for a user's export
func Filename(now time.Time) string {
	return fmt.Sprintf("vitals-history-%s.xlsx", now.Format("2006-01-02"))
}

// VitalsHistory renders logs as an xlsx workbook, one row per log in the
// order given. Times are shown in loc.
func VitalsHistory(logs []db.VitalsLog, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FCE4EC"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &VitalsHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(VitalsHeader))
	if err != nil {
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, log := range logs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := rowFor(log, loc)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowFor(log db.VitalsLog, loc *time.Location) []interface{} {
	v := log.Vitals
	return []interface{}{
		log.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		number(v.BloodSugarMgDl),
		number(v.SystolicMmHg),
		number(v.DiastolicMmHg),
		number(v.BMI),
		number(v.WeightKg),
		number(v.HeightCm),
		integer(v.PregnancyWeek),
		integer(v.FetalKicks),
		string(log.OverallRisk),
		log.HealthScore,
		log.Streak,
		v.SymptomsText,
	}
}

// number keeps absent readings as empty cells rather than zeros
func number(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

func integer(i *int) interface{} {
	if i == nil {
		return ""
	}
	return *i
}
