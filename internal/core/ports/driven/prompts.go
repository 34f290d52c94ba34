package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptMetadata asks for role and seniority as JSON.
	// The template expects a single %s placeholder for the document text.
	PromptMetadata = "metadata"

	// PromptAnswer answers a question from retrieved context.
	// The template expects %s (context) then %s (question).
	PromptAnswer = "answer"
)
