package llm

import (
	"regexp"
	"strings"
)

// Result is the normalized outcome of one generation: runnable code and
// zero or more advisory feedback lines. Code is never empty; when the
// upstream yields nothing usable a per-target starter stub is
// substituted and noted in Feedback.
type Result struct {
	Code     string   `json:"code"`
	Feedback []string `json:"feedback"`
}

// Known-valid starter programs, one per editor. Substituted whenever
// extraction comes up empty so the client always has something to load.
var fallbackStubs = map[Target]string{
	TargetMicrobit: `basic.showIcon(IconNames.Heart)`,
	TargetArcade: `let player = sprites.create(image.create(16, 16), SpriteKind.Player)
game.splash("Hello!")`,
	TargetMaker: `light.setAll(light.rgb(0, 255, 0))`,
}

const feedbackPrefix = "feedback:"

// Normalize converts raw provider text into a Result. It is pure and
// never fails: any content problem ends in the fallback stub.
func Normalize(raw string, target Target) Result {
	body, feedback := splitFeedback(normalizeNewlines(raw))
	code := sanitizeCode(extractFenced(body))

	if code == "" {
		code = fallbackStubs[target]
		if code == "" {
			code = fallbackStubs[TargetMicrobit]
		}
		feedback = append(feedback, "The assistant did not return any code, so a minimal starter program was substituted. Try rephrasing your request.")
	}

	if feedback == nil {
		feedback = []string{}
	}
	return Result{Code: code, Feedback: feedback}
}

// splitFeedback pulls FEEDBACK:-prefixed lines (case-insensitive, after
// trimming) out of the text in encounter order and rejoins the rest.
func splitFeedback(text string) (string, []string) {
	var feedback []string
	var rest []string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len(feedbackPrefix) && strings.EqualFold(trimmed[:len(feedbackPrefix)], feedbackPrefix) {
			entry := strings.TrimSpace(trimmed[len(feedbackPrefix):])
			if entry != "" {
				feedback = append(feedback, entry)
			}
			continue
		}
		rest = append(rest, line)
	}
	return strings.Join(rest, "\n"), feedback
}

var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\n?(.*?)```")

// extractFenced returns the interior of the first fenced code block
// when one exists, otherwise the whole body. A dangling opening fence
// line (no closing fence) is stripped afterwards by sanitizeCode.
func extractFenced(body string) string {
	if m := fencedBlockRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return body
}

// Literal two-character escape sequences some providers emit instead of
// real control characters. The four-character CRLF form must be tried
// before the bare forms.
var literalEscapes = strings.NewReplacer(
	`\r\n`, "\n",
	`\n`, "\n",
	`\t`, "\t",
)

var (
	curlyQuotes = strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", `'`,
		"’", `'`,
	)
	invisibleChars = strings.NewReplacer(
		"\u200b", "", // zero-width space
		"\u200c", "", // zero-width non-joiner
		"\u200d", "", // zero-width joiner
		"\ufeff", "", // byte order mark
		"\u00a0", " ", // non-breaking space
	)
)

// sanitizeCode runs the ordered cleanup passes over the candidate code
// body. Already-clean code passes through unchanged.
func sanitizeCode(body string) string {
	body = stripLeadingFence(body)
	body = literalEscapes.Replace(body)
	body = normalizeNewlines(body)
	body = curlyQuotes.Replace(body)
	body = invisibleChars.Replace(body)
	body = strings.TrimSpace(body)
	body = strings.Trim(body, "`")
	return strings.TrimSpace(body)
}

// stripLeadingFence drops a first line that is an opening fence left
// over when the model never closed its block.
func stripLeadingFence(body string) string {
	trimmed := strings.TrimLeft(body, " \t\n")
	if !strings.HasPrefix(trimmed, "```") {
		return body
	}
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return ""
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
