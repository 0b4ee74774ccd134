package roadmap

import "strings"

// fieldEscaper keeps line structure unambiguous: a value can never start a
// new labelled line of the prompt.
var fieldEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

// skillEscaper additionally escapes commas so the ", " separator only ever
// appears between skills.
var skillEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, ",", `\,`)

// BuildPrompt renders the generation prompt. Values without backslashes,
// line breaks or (for skills) commas appear verbatim.
func BuildPrompt(req Request) string {
	skills := make([]string, len(req.Skills))
	for i, s := range req.Skills {
		skills[i] = skillEscaper.Replace(s)
	}

	var b strings.Builder
	b.WriteString("Career Goal: ")
	b.WriteString(fieldEscaper.Replace(req.CareerGoal))
	b.WriteString("\nSkills: ")
	b.WriteString(strings.Join(skills, ", "))
	b.WriteString("\nLearning Preference: ")
	b.WriteString(fieldEscaper.Replace(req.LearningPreference))
	b.WriteString("\nRoadmap:")
	return b.String()
}
