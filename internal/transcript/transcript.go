// Package transcript assembles the bounded context window submitted to the
// completion backend. History is rendered two lines per stored turn, the new
// user message goes last, and the oldest turn pairs are evicted until the
// size estimate fits the budget. All functions are pure.
package transcript

import (
	"strings"

	"github.com/dedsec995/chat-backend/internal/model"
)

// DefaultBudget is the default context size budget in estimator units.
const DefaultBudget = 8000

// Separator joins the surviving lines into the flat transcript.
const Separator = "\n"

// Estimator computes a cheap size estimate for one line. It must be
// deterministic so that summing over an unchanged sequence is idempotent.
type Estimator func(line string) int

// WordCount is the default estimator: a whitespace split, standing in for a
// real tokenizer.
func WordCount(line string) int {
	return len(strings.Fields(line))
}

// Render turns stored history plus the new inbound message into an ordered
// line sequence: "User: …"/"Bot: …" per turn, chronological, with the new
// message as the final line.
func Render(history []model.Turn, newMessage string) []string {
	lines := make([]string, 0, 2*len(history)+1)
	for _, turn := range history {
		lines = append(lines, "User: "+turn.UserMessage)
		lines = append(lines, "Bot: "+turn.BotResponse)
	}
	return append(lines, "User: "+newMessage)
}

// Truncate drops the oldest stored turn pairs until the estimate fits within
// budget. The eviction unit is one stored turn (its user line and bot line
// together) so user/bot context never desynchronizes. The final line is the
// new inbound message and is never evicted, even when it alone exceeds the
// budget. The returned slice is always a suffix of lines.
func Truncate(lines []string, budget int, est Estimator) []string {
	if len(lines) == 0 {
		return lines
	}

	total := 0
	for _, line := range lines {
		total += est(line)
	}

	// Everything before the final line is stored-turn pairs.
	pairs := (len(lines) - 1) / 2

	drop := 0
	for drop < pairs && total > budget {
		total -= est(lines[2*drop]) + est(lines[2*drop+1])
		drop++
	}

	return lines[2*drop:]
}

// Build renders, truncates, and joins in one step, producing the flat
// transcript string for the completion backend.
func Build(history []model.Turn, newMessage string, budget int, est Estimator) string {
	if est == nil {
		est = WordCount
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	lines := Truncate(Render(history, newMessage), budget, est)
	return strings.Join(lines, Separator)
}

// Estimate sums the estimator over a line sequence.
func Estimate(lines []string, est Estimator) int {
	total := 0
	for _, line := range lines {
		total += est(line)
	}
	return total
}
