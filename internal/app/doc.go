// Package app wires the course report service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (.env, environment, config.yaml)
//	2. Initialize logging and OpenTelemetry
//	3. Create the dataset cache and the session store
//	4. Initialize the report and health services
//	5. Build the chi router with its middleware chain
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests,
// stops the background sweepers and flushes telemetry. Initialization
// errors are returned to the caller; the package never calls os.Exit.
package app
