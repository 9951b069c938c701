// Package blast is a client for the NCBI web BLAST URL API: one endpoint,
// operations distinguished by a CMD parameter. Submit/status responses are
// semi-structured text parsed by line patterns; the alignment report is XML
// and handled by internal/report.
package blast
