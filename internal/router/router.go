// Package router maps a problem's topic to a named solver route.
package router

import "github.com/danielpatrickdp/math-mentor/internal/parser"

// #region route-id

// RouteID names a solver route.
type RouteID string

const (
	RouteAlgebra     RouteID = "algebra_solver"
	RouteProbability RouteID = "probability_solver"
	RouteCalculus    RouteID = "calculus_solver"
	RouteGeneric     RouteID = "generic_solver"
)

// RouteDecision is the chosen route with its confidence.
type RouteDecision struct {
	Route      RouteID `json:"route"`
	Confidence float64 `json:"confidence"`
}

// #endregion

// #region default-mapping

const (
	knownTopicConfidence   = 0.8
	unknownTopicConfidence = 0.4
)

// defaultMapping maps Topic → RouteID.
var defaultMapping = map[parser.Topic]RouteID{
	parser.TopicAlgebra:     RouteAlgebra,
	parser.TopicProbability: RouteProbability,
	parser.TopicCalculus:    RouteCalculus,
}

// #endregion

// #region route

// Route picks the solver route for a parsed problem.
func Route(p parser.ParsedProblem) RouteDecision {
	if id, ok := defaultMapping[p.Topic]; ok {
		return RouteDecision{Route: id, Confidence: knownTopicConfidence}
	}
	return RouteDecision{Route: RouteGeneric, Confidence: unknownTopicConfidence}
}

// #endregion
