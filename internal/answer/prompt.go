package answer

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/redact"
)

// systemPersona frames the assistant for customer-facing answers.
const systemPersona = "You are BankGPT, a polite, professional CSR for a local bank. " +
	"Use the context below. If you do not know the answer, apologise briefly."

// noContextNote replaces the context block when retrieval returns nothing,
// so the model does not invent facts.
const noContextNote = "No relevant documents were found. " +
	"Apologise and ask the customer to contact support."

// BuildPrompt assembles the generation prompt from the question and the
// retrieved context chunks. Chunk contents pass through policy redaction a
// second time before reaching the model.
func BuildPrompt(question string, retrieved []*models.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("<|system|>\n")
	b.WriteString(systemPersona)
	b.WriteString("\n<|context|>\n")
	if len(retrieved) == 0 {
		b.WriteString(noContextNote)
	} else {
		for i, rc := range retrieved {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(redact.EnforcePolicies(rc.Chunk.Content))
		}
	}
	b.WriteString("\n<|user|>\n")
	b.WriteString(question)
	b.WriteString("\n<|assistant|>")
	return b.String()
}
