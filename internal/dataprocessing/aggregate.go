package dataprocessing

import (
	"sort"
	"strings"

	"coursereport/pkg/contracts/domain"
)

const (
	// NoValueLiteral is how upstream tools serialize a missing value as text
	NoValueLiteral = "nan"

	// AllCoursesLabel is the course name shown when no course filter applies
	AllCoursesLabel = "Все курсы"
)

// HasCertificate applies the certificate presence rule to one cell.
// Absent, blank and the no-value literal (any case) all mean no certificate.
func HasCertificate(value string, present bool) bool {
	if !present {
		return false
	}
	v := strings.TrimSpace(value)
	return v != "" && strings.ToLower(v) != NoValueLiteral
}

// Aggregate groups ds by region and counts certificates. Regions are ordered
// by total descending; equal totals keep the order in which the region was
// first seen. ds must already be region-normalized.
func Aggregate(ds *Dataset, schema Schema) (*domain.Report, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyResult
	}

	groups := make(map[string]int)
	regions := make([]domain.RegionSummary, 0)

	for i := 0; i < ds.Len(); i++ {
		region, _ := ds.Value(i, schema.Region)
		idx, ok := groups[region]
		if !ok {
			idx = len(regions)
			groups[region] = idx
			regions = append(regions, domain.RegionSummary{Region: region})
		}

		regions[idx].Total++
		if HasCertificate(ds.Value(i, schema.Certificate)) {
			regions[idx].WithCert++
		}
	}

	sort.SliceStable(regions, func(a, b int) bool {
		return regions[a].Total > regions[b].Total
	})

	var totals domain.Totals
	for i := range regions {
		regions[i].NoCert = regions[i].Total - regions[i].WithCert
		totals.Total += regions[i].Total
		totals.WithCert += regions[i].WithCert
		totals.NoCert += regions[i].NoCert
	}

	return &domain.Report{
		Regions:    regions,
		Totals:     totals,
		SourceRows: ds.Len(),
	}, nil
}

// ResolveCourseName returns the display name for a report. When filtering by
// id it is the trimmed course name of the first matching row; otherwise, or
// when the column is absent or blank, it is AllCoursesLabel.
func ResolveCourseName(ds *Dataset, schema Schema, courseID string) string {
	if strings.TrimSpace(courseID) == "" || !schema.HasCourseName() || ds.Len() == 0 {
		return AllCoursesLabel
	}
	name, ok := ds.Value(0, schema.CourseName)
	if name = strings.TrimSpace(name); !ok || name == "" {
		return AllCoursesLabel
	}
	return name
}
