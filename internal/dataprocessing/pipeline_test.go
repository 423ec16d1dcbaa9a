package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	ds := loadRows(t, [][]string{
		sampleHeader,
		{"52", "Основы Go", "North", "2021-01-01"},
		{"52", "Основы Go", "North", ""},
		{"52", "Основы Go", "South", "2021-02-02"},
		{"53", "Python", "South", "2021-03-03"},
	})

	tests := []struct {
		name       string
		opts       AnalyzeOptions
		wantTotal  int
		wantName   string
		wantTitle  string
		wantCourse string
	}{
		{
			name:      "all courses",
			opts:      AnalyzeOptions{Columns: DefaultColumns},
			wantTotal: 4,
			wantName:  AllCoursesLabel,
			wantTitle: DefaultReportTitle,
		},
		{
			name:       "single course",
			opts:       AnalyzeOptions{Columns: DefaultColumns, CourseID: " 52 ", Title: "Итоги"},
			wantTotal:  3,
			wantName:   "Основы Go",
			wantTitle:  "Итоги",
			wantCourse: "52",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Analyze(ds, tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, report.Totals.Total)
			assert.Equal(t, tt.wantName, report.CourseName)
			assert.Equal(t, tt.wantTitle, report.Title)
			assert.Equal(t, tt.wantCourse, report.CourseID)
			assert.False(t, report.Generated.IsZero())
		})
	}
}

func TestAnalyze_ScenarioB(t *testing.T) {
	ds := loadRows(t, [][]string{
		sampleHeader,
		{"52", "Go", "North", "2021-01-01"},
	})

	report, err := Analyze(ds, AnalyzeOptions{Columns: DefaultColumns, CourseID: "999"})
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, ErrEmptyResult))
}

func TestAnalyze_ScenarioC(t *testing.T) {
	ds := loadRows(t, [][]string{
		{"courses.id", "Дата получения сертификата"},
		{"52", "2021-01-01"},
	})

	report, err := Analyze(ds, AnalyzeOptions{Columns: DefaultColumns})
	assert.Nil(t, report)

	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"Область"}, mc.Missing)
	assert.Equal(t, []string{"courses.id", "Дата получения сертификата"}, mc.Found)
	assert.Equal(t, "missing required columns: Область", mc.Error())
}

func TestAnalyze_DoesNotModifyDataset(t *testing.T) {
	ds := loadRows(t, [][]string{
		sampleHeader,
		{"52", "Go", "  ", "x"},
	})

	_, err := Analyze(ds, AnalyzeOptions{Columns: DefaultColumns})
	require.NoError(t, err)

	v, _ := ds.Value(0, 2)
	assert.Equal(t, "  ", v)
}
