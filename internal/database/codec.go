package database

import (
	"encoding/json"
	"fmt"

	"github.com/shubh-37/prosora/internal/models"
)

// records holds the JSON-encoded record lists of a session context.
type records struct {
	insights  []byte
	decisions []byte
	learnings []byte
}

func encodeRecords(c *models.SessionContext) (records, error) {
	var r records
	var err error

	if r.insights, err = json.Marshal(nonNil(c.Insights)); err != nil {
		return r, fmt.Errorf("failed to marshal insights: %w", err)
	}
	if r.decisions, err = json.Marshal(nonNil(c.Decisions)); err != nil {
		return r, fmt.Errorf("failed to marshal decisions: %w", err)
	}
	if r.learnings, err = json.Marshal(nonNil(c.Learnings)); err != nil {
		return r, fmt.Errorf("failed to marshal learnings: %w", err)
	}
	return r, nil
}

func (r records) decodeInto(c *models.SessionContext) error {
	c.Insights = []models.Insight{}
	c.Decisions = []models.Decision{}
	c.Learnings = []models.Learning{}

	if len(r.insights) > 0 {
		if err := json.Unmarshal(r.insights, &c.Insights); err != nil {
			return fmt.Errorf("failed to unmarshal insights: %w", err)
		}
	}
	if len(r.decisions) > 0 {
		if err := json.Unmarshal(r.decisions, &c.Decisions); err != nil {
			return fmt.Errorf("failed to unmarshal decisions: %w", err)
		}
	}
	if len(r.learnings) > 0 {
		if err := json.Unmarshal(r.learnings, &c.Learnings); err != nil {
			return fmt.Errorf("failed to unmarshal learnings: %w", err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
