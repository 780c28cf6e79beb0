package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var subjectReplacer = strings.NewReplacer(
	`"`, `'`,
	"“", "'",
	"”", "'",
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	"\t", " ",
)

// EscapeSubject makes user text safe to embed inside a quoted instruction line.
func EscapeSubject(subject string) string {
	s := norm.NFC.String(subject)
	s = subjectReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CreativeInstruction asks for count distinct English prompts returned as a JSON array of strings.
func CreativeInstruction(subject string, count int, editing bool) string {
	if count < 1 {
		count = 1
	}

	context := "User is generating a new image from scratch."
	if editing {
		context = "User is editing an uploaded image. Use the attached image as the visual reference."
	}

	var b strings.Builder
	b.WriteString("You are a Master Creative Director.\n")
	b.WriteString(fmt.Sprintf("User Input: \"%s\"\n\n", EscapeSubject(subject)))
	b.WriteString("CRITICAL INSTRUCTION: If the User Input is in Hebrew (or any non-English language), TRANSLATE it to English first.\n")
	b.WriteString("If the User Input is empty, invent a striking wallpaper subject.\n")
	b.WriteString("Context: " + context + "\n\n")
	b.WriteString(fmt.Sprintf("TASK: Generate %d distinct, highly detailed artistic prompts based on the translated User Input.\n", count))
	b.WriteString("Each prompt must describe a full-screen wallpaper composition.\n")
	b.WriteString("OUTPUT LANGUAGE: English ONLY.\n")
	b.WriteString(fmt.Sprintf("CRITICAL REQUIREMENT: Output ONLY the prompts as a valid JSON array of exactly %d strings.\n", count))
	b.WriteString(`Example output: ["A futuristic city at sunset", "A watercolor painting of a city"]`)
	return b.String()
}

// StyleInstruction asks for one English prompt rendered in the given style.
func StyleInstruction(subject string, style string) string {
	style = EscapeSubject(style)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("TASK: Convert the User Input into a detailed prompt for a %s style image.\n\n", style))
	b.WriteString(fmt.Sprintf("User Input: \"%s\"\n\n", EscapeSubject(subject)))
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Detect the language of the User Input.\n")
	b.WriteString("2. If it is Hebrew (or not English), TRANSLATE the meaning to English.\n")
	b.WriteString(fmt.Sprintf("3. Create a descriptive prompt in English that fits the \"%s\" style.\n", style))
	b.WriteString("4. If the User Input is empty, choose a breathtaking wallpaper subject yourself.\n\n")
	b.WriteString("OUTPUT: Provide ONLY the final English prompt text. No explanations.")
	return b.String()
}
