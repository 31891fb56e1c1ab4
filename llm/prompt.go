package llm

import "strings"

// Target selects the MakeCode editor dialect the generated program must
// fit: which namespaces exist and which fallback stub is known to run.
type Target string

const (
	TargetMicrobit Target = "microbit"
	TargetArcade   Target = "arcade"
	TargetMaker    Target = "maker"
)

// ParseTarget maps a client-supplied identifier to a Target. Unknown
// values silently fall back to the micro:bit editor rather than error,
// so older extension builds keep working.
func ParseTarget(s string) Target {
	switch Target(strings.ToLower(strings.TrimSpace(s))) {
	case TargetArcade:
		return TargetArcade
	case TargetMaker:
		return TargetMaker
	default:
		return TargetMicrobit
	}
}

// Allowed API surface per editor. Kept deliberately narrow: block
// categories beginners see in the toolbox, nothing else.
var targetSurfaces = map[Target]string{
	TargetMicrobit: `You write programs for the BBC micro:bit using MakeCode JavaScript (Static TypeScript).
Allowed namespaces: basic, input, led, music, radio, pins, loops, control, Math.
Event handlers look like: input.onButtonPressed(Button.A, function () { ... })`,

	TargetArcade: `You write programs for MakeCode Arcade using MakeCode JavaScript (Static TypeScript).
Allowed namespaces: sprites, controller, game, scene, info, music, effects, Math.
Create images with image.create(width, height) and sprites with sprites.create(img, SpriteKind.Player).
Event handlers look like: controller.A.onEvent(ControllerButtonEvent.Pressed, function () { ... })`,

	TargetMaker: `You write programs for MakeCode Maker boards using MakeCode JavaScript (Static TypeScript).
Allowed namespaces: input, light, music, pins, loops, control, Math.
Event handlers look like: input.buttonA.onEvent(ButtonEvent.Click, function () { ... })`,
}

// Shared ground rules: the constructs MakeCode's block decompiler (and
// a beginner's eyes) cannot handle, plus the FEEDBACK convention the
// normalizer parses.
const promptRules = `Strict rules:
- Use only the namespaces listed above.
- Do NOT use arrow functions. Use function () { } instead.
- Do NOT use classes, interfaces, or enums.
- Do NOT use async, await, or Promises.
- Do NOT use template literals. Use ordinary double-quoted strings.
- Do NOT use array methods like forEach, map, filter, or reduce. Use plain for loops.
- Do NOT use import, export, or require.
- Do NOT use setTimeout or setInterval.
- Do NOT use console.log or any console output.
- Do NOT write comments in the code.
- Do NOT wrap the code in markdown fences or backticks.

If you want to give the student advice, put it BEFORE the code as separate lines,
each starting with exactly "FEEDBACK: ". After any FEEDBACK lines, output only the
program code and nothing else.`

// Sentinels delimiting the student's current program inside the user
// prompt, so the model cannot confuse it with the request text.
const (
	currentCodeBegin = "===== CURRENT CODE BEGIN ====="
	currentCodeEnd   = "===== CURRENT CODE END ====="
)

// SystemPrompt builds the per-target system prompt.
func SystemPrompt(target Target) string {
	surface, ok := targetSurfaces[target]
	if !ok {
		surface = targetSurfaces[TargetMicrobit]
	}
	return surface + "\n\n" + promptRules
}

// UserPrompt combines the student's free-text request with their
// current program, when they have one.
func UserPrompt(request, currentCode string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(request))
	if strings.TrimSpace(currentCode) != "" {
		b.WriteString("\n\n")
		b.WriteString("My current program is between the markers below. Build on it where that makes sense.\n")
		b.WriteString(currentCodeBegin)
		b.WriteString("\n")
		b.WriteString(currentCode)
		b.WriteString("\n")
		b.WriteString(currentCodeEnd)
	}
	return b.String()
}
