package linear

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIssue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lin_key", r.Header.Get("Authorization"))

		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "issueCreate")

		input := req.Variables["input"].(map[string]interface{})
		assert.Equal(t, "team_1", input["teamId"])
		assert.Equal(t, "Brainstorm: fintech", input["title"])
		assert.Equal(t, "body", input["description"])

		w.Write([]byte(`{"data":{"issueCreate":{"success":true,"issue":{"id":"i1","identifier":"PRO-7","title":"Brainstorm: fintech","url":"https://linear.app/x/issue/PRO-7"}}}}`))
	}))
	defer srv.Close()

	client, err := NewClient("lin_key", "team_1", nil, WithBaseURL(srv.URL))
	require.NoError(t, err)

	issue, err := client.CreateIssue(context.Background(), "Brainstorm: fintech", "body")
	require.NoError(t, err)
	assert.Equal(t, "PRO-7", issue.Identifier)
	assert.Equal(t, "https://linear.app/x/issue/PRO-7", issue.URL)
}

func TestCreateIssue_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"team not found"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("lin_key", "team_1", nil, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "t", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team not found")
}

func TestCreateIssue_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient("lin_key", "team_1", nil, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "t", "d")
	assert.Error(t, err)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", "team", nil)
	assert.Error(t, err)

	_, err = NewClient("key", "", nil)
	assert.Error(t, err)
}
