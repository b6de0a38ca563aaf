// Package catalog turns the raw text of a mineral collection export into
// addressable rows and derives filtered, sorted views from them.
//
// The package has no I/O and no UI dependencies. It is used by the web
// server, the terminal browser and the CLI alike.
//
// # Pipeline
//
//  1. [MapHeaders] binds every [Field] to a column by keyword containment on
//     the normalized header text (see [NormalizeHeader]).
//  2. [Parse] detects the delimiter from the header line and splits the body
//     into [Row] values, dropping blank lines.
//  3. [Dataset.Value] reads a normalized cell for a field.
//  4. [Filter] derives a view by region and free-text query.
//  5. [SortRows] orders a view by a field, numerically when both values look
//     like short numbers and by Czech collation otherwise.
//
// [Pipeline] ties the steps together as an immutable value: every operation
// returns a new Pipeline, so a caller can keep the previous one until the new
// one is complete.
package catalog
