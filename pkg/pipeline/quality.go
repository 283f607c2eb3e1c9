package pipeline

import (
	"fmt"
	"strings"
	"unicode"

	"fabler/pkg/schema"
	"fabler/pkg/utils"
)

// Penalty weights for the deterministic quality scorer. Empirically
// tuned; treat as configuration, not invariants.
const (
	penaltyMissingAvatar   = 2.0
	penaltyRepeatedPattern = 1.5
	penaltyThinChapter     = 1.0
	penaltyWeakEnding      = 1.5
	penaltyUnresolvedMotif = 1.0
)

// repeatedPatterns are degenerate strings a looping model emits.
var repeatedPatterns = []string{
	"once upon a time, once upon a time",
	"the end. the end",
	"and then and then",
}

// warmClosings are the emotional signals an acceptable final sentence
// carries.
var warmClosings = []string{
	"home", "happy", "happily", "smile", "smiled", "warm", "love", "loved",
	"friend", "friends", "together", "safe", "hugged", "peaceful", "asleep",
	"dreams", "heart", "forever", "laughed",
}

var riddleMotifs = []string{"riddle", "mystery", "puzzle", "secret"}

var resolutionMotifs = []string{
	"solved", "answer", "answered", "revealed", "discovered", "figured out",
	"understood", "unlocked", "realized",
}

// scoreStory runs the deterministic quality checks against a draft.
// Every failed check subtracts a fixed penalty from 10, floored at 0.
// The report feeds the retry loop's feedback string; it never leaves
// the finalizer.
func scoreStory(story *schema.FinalizedStory, avatars []schema.AvatarRef, wordFloor int) schema.QualityReport {
	report := schema.QualityReport{Score: 10}
	penalize := func(amount float64, issue, suggestion string) {
		report.Score -= amount
		report.Issues = append(report.Issues, issue)
		if suggestion != "" {
			report.Suggestions = append(report.Suggestions, suggestion)
		}
	}

	var all strings.Builder
	for _, ch := range story.Chapters {
		all.WriteString(ch.Body)
		all.WriteString("\n")
	}
	fullText := all.String()
	lowered := strings.ToLower(fullText)

	for _, a := range avatars {
		if !strings.Contains(fullText, a.Name) {
			penalize(penaltyMissingAvatar,
				fmt.Sprintf("hero %q never appears in the text", a.Name),
				fmt.Sprintf("feature %s by name in the story", a.Name))
		}
	}

	for _, pattern := range repeatedPatterns {
		if strings.Contains(lowered, pattern) {
			penalize(penaltyRepeatedPattern,
				fmt.Sprintf("degenerate repetition %q found", pattern),
				"remove repeated filler phrases")
			break
		}
	}

	for i, ch := range story.Chapters {
		if utils.WordCount(ch.Body) < wordFloor {
			penalize(penaltyThinChapter,
				fmt.Sprintf("chapter %d is under %d words", i+1, wordFloor),
				fmt.Sprintf("expand chapter %d to full length", i+1))
		}
	}

	if n := len(story.Chapters); n > 0 {
		if !warmCompleteEnding(story.Chapters[n-1].Body) {
			penalize(penaltyWeakEnding,
				"final chapter does not end on a complete, warm closing sentence",
				"end the last chapter with a complete sentence and a warm emotional note")
		}
	}

	if containsAny(lowered, riddleMotifs) && !containsAny(lowered, resolutionMotifs) {
		penalize(penaltyUnresolvedMotif,
			"a riddle or mystery is introduced but never resolved",
			"resolve the riddle on the page before the story ends")
	}

	if report.Score < 0 {
		report.Score = 0
	}
	return report
}

// warmCompleteEnding checks that the body's final sentence terminates
// properly and its closing stretch carries a warm signal.
func warmCompleteEnding(body string) bool {
	trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
	trimmed = strings.TrimRight(trimmed, `"')`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
	default:
		return false
	}

	tail := strings.ToLower(trimmed)
	if idx := strings.LastIndexAny(tail[:len(tail)-1], ".!?"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return containsAny(tail, warmClosings)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// feedbackString folds a report into the next attempt's repair
// directive.
func feedbackString(report schema.QualityReport) string {
	if len(report.Issues) == 0 {
		return ""
	}
	var b strings.Builder
	for i, issue := range report.Issues {
		fmt.Fprintf(&b, "- %s", issue)
		if i < len(report.Suggestions) {
			fmt.Fprintf(&b, " (%s)", report.Suggestions[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}
