package agent

import (
	"fmt"
	"strings"
	"time"

	"DocAnalystAI/app/rag"
)

const contextHeader = `Use only the excerpts below, taken from the company documents, to answer the question.
Each excerpt starts with its source document and page.`

func buildSystemPrompt(name, description string, instructions []string, expectedOutput string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", name)
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n")
	}
	if len(instructions) > 0 {
		b.WriteString("\nInstructions:\n")
		for _, in := range instructions {
			fmt.Fprintf(&b, "- %s\n", in)
		}
	}
	if expectedOutput != "" {
		fmt.Fprintf(&b, "\nExpected output: %s\n", expectedOutput)
	}
	fmt.Fprintf(&b, "\nCurrent date and time: %s\n", now.Format("2006-01-02 15:04"))
	return b.String()
}

func buildQuestionPrompt(question string, docs []rag.VectorDoc) string {
	if len(docs) == 0 {
		return fmt.Sprintf("No excerpt of the knowledge base matched this question.\n\nQuestion: %s", question)
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("\n\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s", i+1, d.Source())
		if page, ok := d.Metadata["page"]; ok {
			fmt.Fprintf(&b, ", page %v", page)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(d.Content))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}
