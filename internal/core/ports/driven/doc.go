// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document and chunk storage (the storage manager)
//   - Normaliser: Extracts text from raw bytes of one content kind
//   - PostProcessor: Produces chunks from a document (the chunking engine)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - Connector: Loads and watches raw documents from outside the core.
//     The CLI uses it; core services accept raw documents directly.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
