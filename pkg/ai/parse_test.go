package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVerdictClampsScores(t *testing.T) {
	result, err := ParseVerdict(`{"score_innovation": 14, "score_impact": -3, "justification": "bold", "decision": "REJECTED"}`)
	require.NoError(t, err)
	require.InDelta(t, 10, *result.ScoreInnovation, 0.0001)
	require.InDelta(t, 0, *result.ScoreImpact, 0.0001)
	require.Equal(t, DecisionRejected, result.Decision)
	require.True(t, result.IsDecisive())
}

func TestParseVerdictAcceptsNumericStringsAndMissingScores(t *testing.T) {
	result, err := ParseVerdict("```json\n{\"score_innovation\": \"7.5\", \"decision\": \"Accepted\"}\n```")
	require.NoError(t, err)
	require.InDelta(t, 7.5, *result.ScoreInnovation, 0.0001)
	require.Nil(t, result.ScoreImpact)
	require.Equal(t, "No justification provided", result.Justification)
	require.Equal(t, DecisionAccepted, result.Decision)
}

func TestParseVerdictDropsNonFiniteScores(t *testing.T) {
	result, err := ParseVerdict(`{"score_innovation": "NaN", "score_impact": "Inf", "decision": "ACCEPTED"}`)
	require.NoError(t, err)
	require.Nil(t, result.ScoreInnovation)
	require.Nil(t, result.ScoreImpact)
}

func TestParseVerdictSkipsBracesInsideProse(t *testing.T) {
	result, err := ParseVerdict(`Here is {not json} and then {"decision": "maybe", "justification": "has {braces}"}`)
	require.NoError(t, err)
	require.Equal(t, "MAYBE", result.Decision)
	require.False(t, result.IsDecisive())
	require.Equal(t, "has {braces}", result.Justification)
}

func TestParseVerdictRejectsInvalidReplies(t *testing.T) {
	cases := []string{
		"no json at all",
		`{"score_innovation": 5}`,
		`{"decision": 3}`,
	}
	for _, reply := range cases {
		_, err := ParseVerdict(reply)
		require.Error(t, err, reply)
		require.True(t, errors.Is(err, ErrInvalidFormat), reply)
	}
}
