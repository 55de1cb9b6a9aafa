// Package connectors holds implementations of the driven Connector port.
// A connector knows how to list and watch documents in one kind of
// location and hands them to the core as RawDocuments.
//
// The filesystem connector is the only one: documents come from local
// files and directories.
package connectors
