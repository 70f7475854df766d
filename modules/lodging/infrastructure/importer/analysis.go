package importer

import (
	"fmt"
	"strings"
)

// OutputAnalyzer decides whether a dry-run or production task succeeded.
// Kept as its own interface so the text heuristic can be swapped for a
// structured status contract without touching orchestration.
type OutputAnalyzer interface {
	Analyze(res *StageResult) (ok bool, reason string)
}

// TokenAnalyzer is the current heuristic: a task failed when it exited
// non-zero or when a known failure token appears in its combined output.
// Brittle against wording changes in the underlying tasks.
type TokenAnalyzer struct {
	tokens []string
}

func NewTokenAnalyzer() *TokenAnalyzer {
	return &TokenAnalyzer{
		tokens: []string{"error", "failed", "abort", "exception", "rolled back"},
	}
}

func (a *TokenAnalyzer) Analyze(res *StageResult) (bool, string) {
	if res.ExitStatus != 0 {
		return false, fmt.Sprintf("exit status %d", res.ExitStatus)
	}
	combined := strings.ToLower(res.Combined())
	for _, token := range a.tokens {
		if strings.Contains(combined, token) {
			return false, fmt.Sprintf("output contains failure token %q", token)
		}
	}
	return true, ""
}
