package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_ExactTemplate(t *testing.T) {
	got := BuildPrompt(Request{
		CareerGoal:         "Become a Data Scientist",
		Skills:             []string{"Python", "SQL"},
		LearningPreference: "Project-based learning",
	})
	assert.Equal(t, "Career Goal: Become a Data Scientist\nSkills: Python, SQL\nLearning Preference: Project-based learning\nRoadmap:", got)
}

func TestBuildPrompt_SingleSkill(t *testing.T) {
	got := BuildPrompt(Request{CareerGoal: "g", Skills: []string{"Go"}, LearningPreference: "Books"})
	assert.Equal(t, "Career Goal: g\nSkills: Go\nLearning Preference: Books\nRoadmap:", got)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := Request{CareerGoal: "g", Skills: []string{"a", "b"}, LearningPreference: "p"}
	assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
}

func TestBuildPrompt_NoCollisions(t *testing.T) {
	// Each pair would render identically without escaping
	pairs := []struct {
		name string
		a, b Request
	}{
		{
			name: "comma inside a skill",
			a:    Request{CareerGoal: "g", Skills: []string{"Python, SQL"}, LearningPreference: "p"},
			b:    Request{CareerGoal: "g", Skills: []string{"Python", "SQL"}, LearningPreference: "p"},
		},
		{
			name: "newline in skill moves the preference",
			a:    Request{CareerGoal: "g", Skills: []string{"Go\nLearning Preference: Books"}, LearningPreference: "Video"},
			b:    Request{CareerGoal: "g", Skills: []string{"Go"}, LearningPreference: "Books\nLearning Preference: Video"},
		},
		{
			name: "newline in goal",
			a:    Request{CareerGoal: "g\nSkills: x", Skills: []string{"y"}, LearningPreference: "p"},
			b:    Request{CareerGoal: "g", Skills: []string{"x\nSkills: y"}, LearningPreference: "p"},
		},
		{
			name: "escaped looking text",
			a:    Request{CareerGoal: `g\n`, Skills: []string{"s"}, LearningPreference: "p"},
			b:    Request{CareerGoal: "g\n", Skills: []string{"s"}, LearningPreference: "p"},
		},
		{
			name: "backslash before comma",
			a:    Request{CareerGoal: "g", Skills: []string{`a\`, "b"}, LearningPreference: "p"},
			b:    Request{CareerGoal: "g", Skills: []string{`a\, b`}, LearningPreference: "p"},
		},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, BuildPrompt(tt.a), BuildPrompt(tt.b))
		})
	}
}

func TestBuildPrompt_KeepsFourLines(t *testing.T) {
	got := BuildPrompt(Request{CareerGoal: "a\nb", Skills: []string{"c\r\nd"}, LearningPreference: "e\n"})
	assert.Equal(t, `Career Goal: a\nb`+"\n"+`Skills: c\r\nd`+"\n"+`Learning Preference: e\n`+"\nRoadmap:", got)
}
