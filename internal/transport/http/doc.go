// Package http implements the HTTP handlers of the course report service.
// Handlers stay thin: they parse and validate the request, call the
// service layer and render either JSON or an RFC 7807 problem through
// the shared ErrorHandler.
//
// # Routes
//
//	POST   /api/reports/upload    multipart "file", optional X-Session-ID
//	POST   /api/reports/analyze   {"course_id": "..."}, X-Session-ID
//	GET    /api/reports/export    ?course_id=&format=xlsx|csv, X-Session-ID
//	DELETE /api/reports/session   X-Session-ID
//	GET    /api/reports/stats
//	GET    /api/health[/ready|/live|/detailed]
//	GET    /api/version
//	GET    /metrics
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "data": ...}
//
// An analysis that matches no rows answers 200 with status "empty".
package http
