// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Content store (WordPress REST or local SQLite)
//   - ProposalStore: Proposal table and run summary persistence
//   - LinkHistoryStore: Append-only log of inserted links
//   - ConfigStore: Application configuration
//   - AutocompleteClient: Search-engine autocomplete
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Chat completion. Without it, link text uses templates and
//     keyword ideas come only from the keyword planner.
//   - KeywordIdeaSource: Keyword planner. Skipped when credentials are incomplete.
//   - NounExtractor: Offline tokenizer for pillar analysis without an LLM.
//   - PromptStore: Custom prompt templates. Built-in defaults are used otherwise.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
