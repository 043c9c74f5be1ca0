package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"DocAnalystAI/app/analysis"
)

// AppendAnswerLog appends one question and its answer to the run transcript.
func AppendAnswerLog(filename, runID string, result analysis.QuestionResult) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Warn("Error opening answer log", "file", filename, "error", err)
		return
	}
	defer file.Close()

	logEntry := fmt.Sprintf(
		"Timestamp: %s\n--- Run: %s | Question %d (%s, %s) ---\n%s\n--- Answer:\n%s\n\n",
		time.Now().Format(time.RFC3339), runID, result.Number, result.Status,
		result.Duration.Round(time.Millisecond), result.Question, result.Answer,
	)

	if _, err = file.WriteString(logEntry); err != nil {
		slog.Warn("Error writing answer log", "file", filename, "error", err)
	}
}
