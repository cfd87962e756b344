package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTask(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTask  Task
		wantTopic Topic
	}{
		{"derivative", "derivative of x^2", TaskDerivative, TopicCalculus},
		{"differentiate", "Differentiate sin(x)", TaskDerivative, TopicCalculus},
		{"d/dx", "d/dx x**3", TaskDerivative, TopicCalculus},
		{"d/dt", "d/dt of t**2", TaskDerivative, TopicCalculus},
		{"df/dx", "df/dx of sin(x)", TaskDerivative, TopicCalculus},
		{"integral", "integral of x", TaskIntegral, TopicCalculus},
		{"integrate", "Integrate cos(x) dx", TaskIntegral, TopicCalculus},
		{"limit", "limit of 1/x as x->0", TaskLimit, TopicCalculus},
		{"derivative-before-limit", "limit of the derivative", TaskDerivative, TopicCalculus},
		{"equation", "x + 1 = 5", TaskEquation, TopicAlgebra},
		{"expression", "2*(x+1)", TaskExpression, TopicAlgebra},
		{"probability", "probability of 2 heads = ?", TaskEquation, TopicProbability},
		{"chance", "What is the chance of rolling 6", TaskExpression, TopicProbability},
		// "lim" matches inside words; an accepted false positive.
		{"lim-substring", "climb 3 stairs", TaskLimit, TopicCalculus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.Task != tt.wantTask {
				t.Errorf("task: got %q, want %q", got.Task, tt.wantTask)
			}
			if got.Topic != tt.wantTopic {
				t.Errorf("topic: got %q, want %q", got.Topic, tt.wantTopic)
			}
		})
	}
}

func TestParseFull(t *testing.T) {
	got := Parse("x + 1 = 5")
	want := ParsedProblem{
		ProblemText:        "x + 1 = 5",
		Topic:              TopicAlgebra,
		Task:               TaskEquation,
		Variables:          []string{"x"},
		Constraints:        []string{},
		NeedsClarification: false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestNeedsClarification(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"a", true},
		{"  ab  ", true},
		{"x=5", false},
		{"???", true},
		{"2+2", false},
		{"hello", false},
	}
	for _, tt := range tests {
		if got := Parse(tt.text).NeedsClarification; got != tt.want {
			t.Errorf("Parse(%q).NeedsClarification = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"x + y = 3", []string{"x", "y"}},
		{"X + x", []string{"X", "x"}},
		{"sin(x)", []string{"i", "n", "s", "x"}},
		{"1 + 2", []string{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ExtractVariables(tt.text)); diff != "" {
			t.Errorf("ExtractVariables(%q) (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestStripInstruction(t *testing.T) {
	tests := []struct {
		text     string
		wantRest string
		wantVar  string
	}{
		{"Solve x + 1 = 5", "x + 1 = 5", ""},
		{"solve for y: 2y = 4", "2y = 4", "y"},
		{"Simplify: (x+1)**2", "(x+1)**2", ""},
		{"x + 1 = 5", "x + 1 = 5", ""},
		{"solved = 3", "solved = 3", ""},
		{"simplify", "simplify", ""},
	}
	for _, tt := range tests {
		rest, v := StripInstruction(tt.text)
		if rest != tt.wantRest || v != tt.wantVar {
			t.Errorf("StripInstruction(%q) = (%q, %q), want (%q, %q)", tt.text, rest, v, tt.wantRest, tt.wantVar)
		}
	}
}
