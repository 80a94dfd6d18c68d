package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/themobileprof/momvitals-be/internal/db"
	"github.com/themobileprof/momvitals-be/internal/risk"
)

func TestVitalsHistory(t *testing.T) {
	at := time.Date(2026, 4, 2, 7, 30, 0, 0, time.UTC)
	logs := []db.VitalsLog{
		{
			CreatedAt:   at,
			Vitals:      risk.Vitals{BloodSugarMgDl: risk.Float(150), SystolicMmHg: risk.Float(128), PregnancyWeek: risk.Int(26), SymptomsText: "tired"},
			OverallRisk: risk.LevelHigh,
			HealthScore: 42,
			Streak:      3,
		},
		{
			CreatedAt:   at.Add(-24 * time.Hour),
			OverallRisk: risk.LevelStable,
			HealthScore: 82,
			Streak:      2,
		},
	}

	data, err := VitalsHistory(logs, time.UTC)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, VitalsHeader[0], rows[0][0])
	assert.Equal(t, "2026-04-02 07:30", rows[1][0])
	assert.Equal(t, "150", rows[1][1])
	assert.Equal(t, "", rows[1][3], "absent reading stays blank")
	assert.Equal(t, "26", rows[1][7])
	assert.Equal(t, "HIGH", rows[1][9])
	assert.Equal(t, "42", rows[1][10])
	assert.Equal(t, "tired", rows[1][12])
	assert.Equal(t, "STABLE", rows[2][9])

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
}

func TestVitalsHistory_Empty(t *testing.T) {
	data, err := VitalsHistory(nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "vitals-history-2026-04-02.xlsx", Filename(time.Date(2026, 4, 2, 23, 0, 0, 0, time.UTC)))
}
