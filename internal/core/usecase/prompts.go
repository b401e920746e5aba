package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

const summarySystemPrompt = `You are a business document analyst.
Write a concise narrative summary of the extracted document content below.
Call out notable figures, obligations, and anything that looks like a
discrepancy, inconsistency, unusual pattern, or area of concern.
Plain text only, no markdown.`

func buildSummaryUserPrompt(data domain.ExtractedData) string {
	payload, err := json.Marshal(data)
	if err != nil {
		// The closed shape always marshals; fall back to raw content.
		return "Document content:\n" + data.Content
	}
	return "Extracted document payload (tables, key-value pairs, raw content):\n" + string(payload)
}

const chatSystemHeader = `You are an assistant answering questions about a business project
and its analyzed documents. Answer only from the context below.
If the context is insufficient, say so directly.`

func buildChatSystemPrompt(
	project *domain.Project,
	documents []domain.Document,
	results map[string]domain.AnalysisResult,
	recentTurns []domain.ChatTurn,
) string {
	var b strings.Builder
	b.WriteString(chatSystemHeader)
	b.WriteString("\n\nProject: ")
	b.WriteString(project.Name)
	if strings.TrimSpace(project.Description) != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(project.Description)
	}

	if len(documents) == 0 {
		b.WriteString("\n\nNo analyzed documents are available yet.")
	}
	for idx, doc := range documents {
		result, ok := results[doc.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n\n[Document %d] %s\nSummary: %s", idx+1, doc.Filename, result.AISummary)
		if len(result.RedFlags) > 0 {
			b.WriteString("\nRed flags: ")
			b.WriteString(strings.Join(result.RedFlags, "; "))
		}
		if len(result.Highlights) > 0 {
			b.WriteString("\nHighlights: ")
			b.WriteString(strings.Join(result.Highlights, "; "))
		}
	}

	if len(recentTurns) > 0 {
		b.WriteString("\n\nRecent conversation (newest first):")
		for _, turn := range recentTurns {
			fmt.Fprintf(&b, "\nQ: %s\nA: %s", turn.Question, turn.Answer)
		}
	}
	return b.String()
}
