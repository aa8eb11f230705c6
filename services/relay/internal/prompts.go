package internal

import "fmt"

const defaultLanguage = "python"

// SeverityTags is the fixed vocabulary review points must open with.
var SeverityTags = []string{"Error", "Suggestion", "Best Practice", "Nitpick", "Info"}

func languageOrDefault(lang string) string {
	if lang == "" {
		return defaultLanguage
	}
	return lang
}

// GeneratePrompt renders the instruction for /api/generate.
func GeneratePrompt(prompt, language string) string {
	return fmt.Sprintf(
		"Generate %s code for the following prompt: %s. Only output the code, no other text or explanations.",
		language, prompt,
	)
}

// ReviewPrompt renders the instruction for /api/review. The code is embedded
// verbatim in a fence labeled with language.
func ReviewPrompt(code, language string) string {
	return fmt.Sprintf(reviewTemplate, language, language, code)
}

const reviewTemplate = "Review the following %s code. Provide detailed feedback on:\n" +
	"- Correctness and functionality: Does the code meet the intended functions?\n" +
	"- Standard compliance: (e.g., PEP 8 for Python, JS conventions, etc.).\n" +
	"- Best practices: Suggestions for optimization, readability, modularity, and use of design patterns.\n" +
	"- Potential errors and security vulnerabilities: Identification of common pitfalls, SQL injection, XSS (if applicable).\n" +
	"- Code complexity: Highlighting areas that can be simplified.\n" +
	"- Unit test generation: Suggestions for tests for key functions.\n" +
	"\n" +
	"Present the feedback in Markdown format. Use headings for categories (e.g., `### Correctness`, `### Readability`).\n" +
	"For specific points:\n" +
	"- Start with the type of feedback using bold Markdown: `**[Error]**`, `**[Suggestion]**`, `**[Best Practice]**`, `**[Nitpick]**`, or `**[Info]**`.\n" +
	"- If applicable, reference line numbers clearly, for example: `(Line 23)` or `(Lines 45-50)`.\n" +
	"- Provide a concise explanation for each point.\n" +
	"- If the code is generally good, provide a brief positive acknowledgement at the beginning.\n" +
	"\n" +
	"Example of a point:\n" +
	"`**[Error]** (Line 23): Variable \\`user_id\\` is used before assignment.`\n" +
	"\n" +
	"Code to review:\n" +
	"```%s\n" +
	"%s\n" +
	"```\n"
