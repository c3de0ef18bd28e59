package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	for _, d := range Domains {
		got, err := ParseDomain(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDomain("startup")
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestParseStageAndRank(t *testing.T) {
	for i, s := range Stages {
		got, err := ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, i, got.Rank())
	}

	_, err := ParseStage("launch")
	assert.ErrorIs(t, err, ErrUnknownStage)
	assert.Equal(t, -1, Stage("launch").Rank())
}

func TestParseOutcome(t *testing.T) {
	for _, s := range []string{"success", "failure", "mixed", "pending", ""} {
		got, err := ParseOutcome(s)
		require.NoError(t, err)
		assert.Equal(t, Outcome(s), got)
	}

	_, err := ParseOutcome("great")
	assert.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestNewSessionContext(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewSessionContext("s1", "", now)

	assert.Equal(t, DomainGeneral, c.Domain)
	assert.Equal(t, StageDiscovery, c.Stage)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)
	assert.NotNil(t, c.Insights)
	assert.NotNil(t, c.Decisions)
}

func TestCloneSharesNothing(t *testing.T) {
	c := NewSessionContext("s1", DomainFintech, time.Now())
	c.Problems = append(c.Problems, "slow checkout")
	c.Insights = append(c.Insights, Insight{ID: "i1", Tags: []string{"a"}})

	out := c.Clone()
	out.Problems[0] = "changed"
	out.Insights[0].Tags[0] = "b"

	assert.Equal(t, "slow checkout", c.Problems[0])
	assert.Equal(t, "a", c.Insights[0].Tags[0])

	var nilCtx *SessionContext
	assert.Nil(t, nilCtx.Clone())
}
