// Package services implements the business logic layer of the course report
// application. It sits between the HTTP handlers and CLI on one side and the
// data processing, cache and session packages on the other.
//
// # Services
//
//	- ReportService: upload, analyze, export and reset for a client session
//	- HealthService: liveness, readiness and version information
//
// # Sessions and datasets
//
// An upload is parsed once per distinct file content. The parsed dataset is
// stored in the dataset cache under its content hash and referenced by every
// session that uploaded the same file. Replacing or resetting a session, or
// letting it go idle, releases that reference.
//
// # Error Handling
//
// Services return typed errors that handlers map to problem responses:
//
//	- *dataprocessing.LoadError for unreadable uploads
//	- *dataprocessing.MissingColumnsError for workbooks without required columns
//	- dataprocessing.ErrEmptyResult when the course filter matches nothing
//	- ErrNoDataset and ErrDatasetExpired when the session has nothing to analyze
//	- ErrInvalidSession and ErrInvalidInput for bad client input
package services
