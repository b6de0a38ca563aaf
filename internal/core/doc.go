// Package core provides the mineral collection service.
//
// This package holds the application logic around the catalog pipeline,
// independent of any UI or transport layer. The web server, the CLI and the
// terminal browser all use it without modification.
//
// # Service
//
// [Service] owns the published dataset. A reload fetches text from a
// [source.Source], parses it outside any lock and publishes the result with a
// single pointer swap, so readers see either the old or the new dataset and
// never a mix:
//
//	svc := core.NewService(src, core.Config{HistorySize: 20})
//	if _, err := svc.Reload(ctx); err != nil {
//	    // previous dataset (if any) is still served
//	}
//	view, err := svc.Query(core.ViewRequest{Region: "Morava", Sort: "name"})
//
// Input with fewer than two lines is ignored: Reload returns a result with
// Applied set to false and a nil error, and the previous dataset stays.
//
// # Reload Gate
//
// Reloads from every trigger (startup, scheduler, API, upload) pass through
// one [ReloadGate]. A reload that waits longer than the configured time for
// a running one fails with [ErrReloadBusy].
//
// # Error Handling
//
// Technical errors are mapped to Czech user messages using [MapError]. Each
// category has a code for support reference:
//
//   - SRC001-SRC005: source acquisition
//   - DATA001-DATA002: missing or malformed data
//   - FILE003-FILE005: uploads
//   - UPL004-UPL005: cancelled or timed out requests
//   - REQ001: invalid view parameters
//
// # Upload Preview
//
// [Service.AnalyzeUpload] reads a file exactly like an upload and reports the
// column bindings, unrecognized headers, repeated inventory numbers and a
// sample of rows, without publishing anything.
//
// # History
//
// The last reloads are kept in memory with their id, trigger, client IP,
// row count and error, and exposed through [Service.History].
package core
