// Package dataprocessing turns an uploaded course-completion workbook into an
// aggregated certificate report. It covers the whole analysis pipeline from
// Excel ingestion to the per-region breakdown.
//
// # Architecture
//
// The pipeline is strictly linear and every stage returns a new value:
//
// 1. Load: reads the first (or a named) sheet as text and trims headers
// 2. ResolveSchema: maps the fixed column names to positions or reports the missing ones
// 3. NormalizeRegions: trims region values and substitutes UnspecifiedRegion for blanks
// 4. Filter: keeps rows whose trimmed course id equals the requested one
// 5. Aggregate: groups by region and counts certificates
//
// A Dataset is immutable once Load returns it, so it can be shared through a
// cache by several sessions at once.
//
// # Usage
//
//	ds, err := dataprocessing.Load(data, dataprocessing.LoadOptions{})
//	if err != nil {
//	    return err
//	}
//
//	report, err := dataprocessing.Analyze(ds, dataprocessing.AnalyzeOptions{
//	    Columns:  dataprocessing.DefaultColumns,
//	    CourseID: "52",
//	})
//	if errors.Is(err, dataprocessing.ErrEmptyResult) {
//	    // nothing found for this course
//	}
package dataprocessing
