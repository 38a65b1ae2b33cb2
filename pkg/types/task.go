// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role identifies a stage of the answer pipeline.
type Role string

const (
	// RoleAnalyzer breaks the user question down into research directions.
	RoleAnalyzer Role = "analyzer"

	// RoleResearcher gathers evidence from the local store and the web.
	RoleResearcher Role = "researcher"

	// RoleComposer writes the final answer from the gathered evidence.
	RoleComposer Role = "composer"
)

// TaskResult is the outcome of running the pipeline for one question.
//
// Success false always pairs with an empty Content and a populated
// ErrorMessage; callers decide how to present the failure.
type TaskResult struct {
	Content string `json:"content" yaml:"content"`
	Success bool   `json:"success" yaml:"success"`

	// Role is the stage that produced Content, or the stage that failed.
	Role Role `json:"role" yaml:"role"`

	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}
