// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The ingestion path is IngestService: extraction, chunking, metadata,
// embedding and persistence. The question path is QueryService, which
// composes the Retriever and the AnswerComposer.
//
// Services are pure Go with no CGO. Every collaborator is injected through
// the constructor; nothing is held in package-level state.
package services
