// Package e2e provides end-to-end tests with a larger corpus and multiple questions.
package e2e

import (
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
)

// FAQDocument is a document entry in the E2E corpus.
type FAQDocument struct {
	ID      string
	Source  string
	Content string
}

// QuestionCase defines a question and the document ID(s) that must appear in
// the retrieved context. At least one of ExpectedDocIDs must be present.
type QuestionCase struct {
	Question       string
	ExpectedDocIDs []string
	Description    string
}

// Corpus holds documents and question cases for E2E tests.
type Corpus struct {
	Documents []FAQDocument
	Cases     []QuestionCase
}

// BuildCorpus returns a banking FAQ corpus. Each document carries a unique
// signature phrase so questions can assert the correct document is retrieved.
func BuildCorpus() *Corpus {
	topics := []struct {
		id      string
		phrase  string
		content string
	}{
		{"refunds", "refund processing time", "Refund processing time is five business days. Refund processing time starts when the merchant confirms the return."},
		{"card-block", "block lost debit card", "To block lost debit card access, open the mobile app. Block lost debit card from the card settings screen instantly."},
		{"wire-transfers", "international wire transfer", "An international wire transfer settles within two business days. International wire transfer fees depend on the destination."},
		{"overdraft", "overdraft protection limit", "Overdraft protection limit covers up to five hundred dollars. Overdraft protection limit requires a linked savings account."},
		{"mobile-deposit", "mobile check deposit", "Mobile check deposit is available in the app. Mobile check deposit funds clear the next business day."},
		{"savings-rate", "savings account interest rate", "The savings account interest rate is variable. Savings account interest rate changes are posted monthly."},
		{"statements", "monthly statement download", "Monthly statement download is under the documents tab. Monthly statement download covers the last seven years."},
		{"disputes", "dispute unauthorized transaction", "To dispute unauthorized transaction charges, contact support within sixty days. Dispute unauthorized transaction claims are resolved in ten days."},
		{"joint-account", "open joint account", "To open joint account access, both holders must verify identity. Open joint account requests complete within one day."},
		{"branch-hours", "branch opening hours", "Branch opening hours are nine to five on weekdays. Branch opening hours differ on public holidays."},
	}
	docs := make([]FAQDocument, 0, len(topics)*3)
	cases := make([]QuestionCase, 0, len(topics))
	for i, tp := range topics {
		docs = append(docs, FAQDocument{
			ID:      tp.id,
			Source:  fmt.Sprintf("faq/%s.txt", tp.id),
			Content: tp.content,
		})
		// Filler documents dilute the index so retrieval has to discriminate.
		for j := 0; j < 2; j++ {
			docs = append(docs, FAQDocument{
				ID:      fmt.Sprintf("filler-%d-%d", i, j),
				Source:  fmt.Sprintf("faq/filler-%d-%d.txt", i, j),
				Content: fmt.Sprintf("General banking notice number %d-%d. Please review the terms and conditions booklet for details.", i, j),
			})
		}
		cases = append(cases, QuestionCase{
			Question:       tp.phrase,
			ExpectedDocIDs: []string{tp.id},
			Description:    tp.id,
		})
	}
	return &Corpus{Documents: docs, Cases: cases}
}

// ToDocumentInputs converts the corpus documents to pipeline inputs.
func (c *Corpus) ToDocumentInputs() []*models.DocumentInput {
	inputs := make([]*models.DocumentInput, len(c.Documents))
	for i, d := range c.Documents {
		inputs[i] = &models.DocumentInput{ID: d.ID, Source: d.Source, Content: d.Content}
	}
	return inputs
}
