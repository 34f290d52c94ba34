package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driven"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// NoContextAnswer is returned when retrieval finds nothing for the document.
const NoContextAnswer = "No context found in JD."

// DefaultMaxContextChars bounds the context block sent to the generator.
const DefaultMaxContextChars = 12000

// DefaultAnswerPrompt is used when no PromptStore is configured.
// Placeholders: context, then question.
const DefaultAnswerPrompt = `Answer ONLY using the job description, also generate a daily task list.
If not mentioned, say: Not specified in JD.

Context:
%s

Question:
%s
`

// AnswerComposer turns retrieved chunks and a question into an answer.
//
// The answer is the generator's raw text. It is never validated or parsed,
// even though the prompt asks for a task list with some structure.
type AnswerComposer struct {
	llm             driven.LLMService
	prompts         driven.PromptStore
	maxContextChars int
	log             *zap.Logger
}

// NewAnswerComposer creates a composer. prompts may be nil.
func NewAnswerComposer(llm driven.LLMService, prompts driven.PromptStore, log *zap.Logger) *AnswerComposer {
	return &AnswerComposer{
		llm:             llm,
		prompts:         prompts,
		maxContextChars: DefaultMaxContextChars,
		log:             logger.OrNop(log),
	}
}

// SetMaxContextChars changes the context budget.
func (c *AnswerComposer) SetMaxContextChars(n int) {
	if n > 0 {
		c.maxContextChars = n
	}
}

// Compose answers question from chunks with a single generator call.
// An empty chunk list returns NoContextAnswer without calling the generator.
func (c *AnswerComposer) Compose(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error) {
	if len(chunks) == 0 {
		return NoContextAnswer, nil
	}
	if c.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDependency, domain.ErrLLMUnavailable)
	}

	prompt := c.BuildPrompt(question, chunks)
	answer, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: generate answer: %w", domain.ErrDependency, err)
	}

	c.log.Debug("answer generated",
		zap.Int("chunks", len(chunks)),
		zap.Int("prompt_chars", utf8.RuneCountInString(prompt)),
		zap.Int("answer_chars", utf8.RuneCountInString(answer)))
	return answer, nil
}

// BuildPrompt renders the answer prompt for question and chunks.
func (c *AnswerComposer) BuildPrompt(question string, chunks []domain.RetrievedChunk) string {
	tmpl := loadPrompt(c.prompts, driven.PromptAnswer, DefaultAnswerPrompt)
	return fmt.Sprintf(tmpl, c.BuildContext(chunks), question)
}

// BuildContext joins chunk contents with newlines in the given order,
// cutting at the character budget. Chunks past the budget are dropped.
func (c *AnswerComposer) BuildContext(chunks []domain.RetrievedChunk) string {
	var b strings.Builder
	remaining := c.maxContextChars

	for i, ch := range chunks {
		piece := ch.Content
		if i > 0 {
			piece = "\n" + piece
		}
		n := utf8.RuneCountInString(piece)
		if n > remaining {
			b.WriteString(truncateRunes(piece, remaining))
			break
		}
		b.WriteString(piece)
		remaining -= n
	}
	return b.String()
}
