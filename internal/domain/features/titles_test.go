package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleClassifier_Seniority(t *testing.T) {
	c := NewTitleClassifier(nil)

	tests := []struct {
		title string
		want  string
	}{
		{"Chief Technology Officer", SeniorityCLevel},
		{"CTO", SeniorityCLevel},
		{"VP of Engineering", SeniorityVP},
		{"Vice President, Sales", SeniorityVP},
		{"Director of Operations", SeniorityDirector},
		{"Engineering Manager", SeniorityManager},
		{"Senior Software Engineer", SenioritySenior},
		{"Software Engineer", SeniorityIC},
		{"Account Executive", SeniorityIC},
		{"", SeniorityUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Seniority(tt.title))
		})
	}
}

func TestTitleClassifier_Department(t *testing.T) {
	c := NewTitleClassifier(nil)

	tests := []struct {
		title string
		want  string
	}{
		{"VP of Engineering", DeptEngineering},
		{"Head of Operations", DeptOperations},
		{"Chief Financial Officer", DeptFinance},
		{"Marketing Manager", DeptMarketing},
		{"Product Manager", DeptProduct},
		{"Data Scientist", DeptData},
		{"General Counsel", DeptLegal},
		{"Random Title", DeptUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Department(tt.title))
		})
	}
}

func TestTitleClassifier_WorkspaceOverrides(t *testing.T) {
	c := NewTitleClassifier(map[string]string{
		"growth":          DeptMarketing,
		"growth engineer": DeptEngineering,
	})

	// Longest matching override wins before the default table is consulted.
	assert.Equal(t, DeptEngineering, c.Department("Senior Growth Engineer"))
	assert.Equal(t, DeptMarketing, c.Department("Growth Lead"))

	// Defaults still apply when no override matches.
	assert.Equal(t, DeptFinance, c.Department("Finance Director"))
}

//Personal.AI order the ending
