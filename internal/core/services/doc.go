// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// DocumentService is the document processor, SearchService ranks chunks
// by keyword overlap, EvaluationService computes retrieval metrics and
// SyncOrchestrator feeds connector output through the processor.
package services
