package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// faqFile is the FAQ JSON layout: categories each holding question/answer pairs.
type faqFile struct {
	Categories []struct {
		Category  string `json:"category"`
		Questions []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"questions"`
	} `json:"categories"`
}

// extractJSON flattens a FAQ JSON file into one passage per question/answer
// pair, each prefixed with its category so the context survives chunking.
func extractJSON(content []byte) (string, error) {
	var f faqFile
	if err := json.Unmarshal(content, &f); err != nil {
		return "", fmt.Errorf("parse JSON: %w", err)
	}
	var passages []string
	for _, cat := range f.Categories {
		for _, qa := range cat.Questions {
			passages = append(passages, fmt.Sprintf("Category: %s\nQ: %s\nA: %s", cat.Category, qa.Question, qa.Answer))
		}
	}
	return strings.Join(passages, "\n\n"), nil
}
