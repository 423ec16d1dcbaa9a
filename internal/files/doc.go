// Package files discovers course export workbooks on disk.
//
// The CLI accepts either a workbook or a directory of exports; in the
// latter case the most recently modified workbook is analyzed:
//
//	discovery := files.NewDiscovery("")
//	path, err := discovery.ResolveWorkbook("exports/")
package files
