package dataprocessing

import "strings"

// Columns names the source columns the pipeline reads
type Columns struct {
	CourseID    string `yaml:"course_id"`
	Region      string `yaml:"region"`
	Certificate string `yaml:"certificate"`
	// CourseName is optional and only used for the report header
	CourseName string `yaml:"course_name"`
}

// DefaultColumns is the data dictionary of the course completion export
var DefaultColumns = Columns{
	CourseID:    "courses.id",
	Region:      "Область",
	Certificate: "Дата получения сертификата",
	CourseName:  "courses.name",
}

// Required returns the required column names in validation order
func (c Columns) Required() []string {
	return []string{
		strings.TrimSpace(c.CourseID),
		strings.TrimSpace(c.Region),
		strings.TrimSpace(c.Certificate),
	}
}

// All returns every column the pipeline may read, optional ones included.
// It is the set used for column pruning at load time.
func (c Columns) All() []string {
	cols := c.Required()
	if name := strings.TrimSpace(c.CourseName); name != "" {
		cols = append(cols, name)
	}
	return cols
}

// Schema holds the resolved column positions of a Dataset
type Schema struct {
	CourseID    int
	Region      int
	Certificate int
	// CourseName is -1 when the column is absent
	CourseName int
}

// HasCourseName reports whether the optional course name column was found
func (s Schema) HasCourseName() bool {
	return s.CourseName >= 0
}

// ResolveSchema maps the declared column names to positions in ds.
// Every missing required column is reported at once, in declaration order.
func ResolveSchema(ds *Dataset, cols Columns) (Schema, error) {
	var missing []string
	lookup := func(name string) int {
		i, ok := ds.Column(name)
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	required := cols.Required()
	schema := Schema{
		CourseID:    lookup(required[0]),
		Region:      lookup(required[1]),
		Certificate: lookup(required[2]),
		CourseName:  -1,
	}
	if len(missing) > 0 {
		return Schema{}, &MissingColumnsError{Missing: missing, Found: ds.SourceColumns()}
	}

	if name := strings.TrimSpace(cols.CourseName); name != "" {
		if i, ok := ds.Column(name); ok {
			schema.CourseName = i
		}
	}
	return schema, nil
}
