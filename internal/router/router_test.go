package router

import (
	"testing"

	"github.com/danielpatrickdp/math-mentor/internal/parser"
)

func TestRoute_DefaultMapping(t *testing.T) {
	tests := []struct {
		name  string
		topic parser.Topic
		want  RouteDecision
	}{
		{"algebra", parser.TopicAlgebra, RouteDecision{RouteAlgebra, 0.8}},
		{"probability", parser.TopicProbability, RouteDecision{RouteProbability, 0.8}},
		{"calculus", parser.TopicCalculus, RouteDecision{RouteCalculus, 0.8}},
		{"unknown", parser.TopicUnknown, RouteDecision{RouteGeneric, 0.4}},
		{"empty", "", RouteDecision{RouteGeneric, 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(parser.ParsedProblem{Topic: tt.topic})
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRoute_FromParse(t *testing.T) {
	got := Route(parser.Parse("derivative of x^2"))
	if got.Route != RouteCalculus {
		t.Errorf("got %q, want %q", got.Route, RouteCalculus)
	}
}
