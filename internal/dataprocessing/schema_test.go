package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSchema(t *testing.T) {
	ds := loadRows(t, [][]string{
		sampleHeader,
		{"52", "Go", "North", "2021-01-01"},
	})

	schema, err := ResolveSchema(ds, DefaultColumns)
	require.NoError(t, err)

	assert.Equal(t, Schema{CourseID: 0, CourseName: 1, Region: 2, Certificate: 3}, schema)
	assert.True(t, schema.HasCourseName())
}

func TestResolveSchema_OptionalCourseName(t *testing.T) {
	ds := loadRows(t, [][]string{
		{"courses.id", "Область", "Дата получения сертификата"},
		{"52", "North", ""},
	})

	schema, err := ResolveSchema(ds, DefaultColumns)
	require.NoError(t, err)
	assert.False(t, schema.HasCourseName())
}

func TestResolveSchema_Missing(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		missing []string
	}{
		{
			name:    "region missing",
			header:  []string{"courses.id", "courses.name", "Дата получения сертификата"},
			missing: []string{"Область"},
		},
		{
			name:    "all missing",
			header:  []string{"id", "region"},
			missing: []string{"courses.id", "Область", "Дата получения сертификата"},
		},
		{
			name:    "case sensitive",
			header:  []string{"Courses.ID", "Область", "Дата получения сертификата"},
			missing: []string{"courses.id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(tt.header))
			for i := range row {
				row[i] = "x"
			}
			ds := loadRows(t, [][]string{tt.header, row})

			_, err := ResolveSchema(ds, DefaultColumns)

			var mc *MissingColumnsError
			require.True(t, errors.As(err, &mc))
			assert.Equal(t, tt.missing, mc.Missing)
			assert.Equal(t, tt.header, mc.Found)
		})
	}
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"courses.id", "Область", "Дата получения сертификата"}, DefaultColumns.Required())
	assert.Equal(t, []string{"courses.id", "Область", "Дата получения сертификата", "courses.name"}, DefaultColumns.All())

	noName := DefaultColumns
	noName.CourseName = ""
	assert.Len(t, noName.All(), 3)
}
