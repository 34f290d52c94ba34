// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor: Turns uploaded bytes into plain text
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Generates text (metadata extraction, answers)
//   - DocumentStore: Job description records
//   - VectorStore: Chunk persistence and document-scoped similarity search
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
