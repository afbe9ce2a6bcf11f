package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when none exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptLinkTextSystem is the system prompt for link text generation.
	// This prompt has no format placeholders.
	PromptLinkTextSystem = "link_text_system"

	// PromptLinkText asks for one sentence embedding a link.
	// Placeholders: %s (source excerpt), %s (target title), %s (target URL).
	PromptLinkText = "link_text"

	// PromptKeywordIdeas asks for related keywords in pipe-delimited lines.
	// Placeholders: %s (seed keyword), %d (count).
	PromptKeywordIdeas = "keyword_ideas"

	// PromptPillarAnalysis asks for pillar keyword candidates as JSON.
	// Placeholders: %s (title), %s (content).
	PromptPillarAnalysis = "pillar_analysis"
)
