package pipeline

import (
	"testing"

	"github.com/decoda/decoda/internal/model"
)

func TestDetectQueryType(t *testing.T) {
	tests := []struct {
		query string
		want  model.QueryType
	}{
		{"what is the code for personal care", model.QueryCode},
		{"price cap for therapy", model.QueryCode},
		{"tell me about 01.011.0107.1.1", model.QueryCode},
		{"what is the policy on plan reviews", model.QueryPolicy},
		{"am I eligible for SIL", model.QueryPolicy},
		{"I need help with transport", model.QueryService},
		{"recommend supports for daily living", model.QueryService},
		{"what are the latest scheme changes", model.QueryUpdates},
		{"recent NDIS news", model.QueryUpdates},
		{"plan my budget of $50000", model.QueryBudget},
		{"how should funds be allocated", model.QueryBudget},
		{"hello there", model.QueryGeneral},
	}
	for _, tt := range tests {
		if got := DetectQueryType(tt.query); got != tt.want {
			t.Errorf("DetectQueryType(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
