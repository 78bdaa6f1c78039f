package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405.000000000")

	t.Run("Missing Field", func(t *testing.T) {
		_, found, err := store.GetField(ctx, sessionID+"-missing", domain.FieldCurrentNode)
		require.NoError(t, err, "a missing session is not an error")
		assert.False(t, found)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.SetField(ctx, sessionID, domain.FieldCurrentNode, "ask_type"))

		value, found, err := store.GetField(ctx, sessionID, domain.FieldCurrentNode)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "ask_type", value)
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		require.NoError(t, store.SetField(ctx, sessionID, domain.AnswerField("quote_type"), "auto"))
		require.NoError(t, store.SetField(ctx, sessionID, domain.AnswerField("quote_type"), "home"))

		value, found, err := store.GetField(ctx, sessionID, domain.AnswerField("quote_type"))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "home", value)
	})

	t.Run("Answers Namespace", func(t *testing.T) {
		id := sessionID + "-answers"
		require.NoError(t, store.SetField(ctx, id, domain.FieldCurrentNode, "start"))
		require.NoError(t, store.SetField(ctx, id, domain.AnswerField("coverage_category"), "personal"))
		require.NoError(t, store.SetField(ctx, id, domain.AnswerField("zip_code"), "39201"))

		answers, err := store.GetAllAnswers(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"coverage_category": "personal",
			"zip_code":          "39201",
		}, answers, "only answers:* fields are returned, without the prefix")
	})

	t.Run("Answers Of Missing Session", func(t *testing.T) {
		answers, err := store.GetAllAnswers(ctx, sessionID+"-nobody")
		require.NoError(t, err)
		assert.Empty(t, answers)
	})

	t.Run("Sessions Are Disjoint", func(t *testing.T) {
		a, b := sessionID+"-a", sessionID+"-b"
		require.NoError(t, store.SetField(ctx, a, domain.FieldCurrentNode, "node_a"))
		require.NoError(t, store.SetField(ctx, b, domain.FieldCurrentNode, "node_b"))

		va, _, err := store.GetField(ctx, a, domain.FieldCurrentNode)
		require.NoError(t, err)
		vb, _, err := store.GetField(ctx, b, domain.FieldCurrentNode)
		require.NoError(t, err)
		assert.Equal(t, "node_a", va)
		assert.Equal(t, "node_b", vb)
	})
}

// RunLeadRepositoryContract verifies that a LeadRepository implementation adheres
// to the interface contract.
func RunLeadRepositoryContract(t *testing.T, repo LeadRepository) {
	ctx := context.Background()

	t.Run("Save and Get", func(t *testing.T) {
		lead := &domain.Lead{
			Name:             "Ada Lovelace",
			Email:            "ada@example.com",
			Phone:            "601-555-0100",
			ZipCode:          "39201",
			QuoteType:        "auto",
			CoverageCategory: "personal",
			VehicleYear:      "2019",
			RawMessage:       "I need a quote",
		}

		id, err := repo.Save(ctx, lead)
		require.NoError(t, err)
		assert.Positive(t, id)

		loaded, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, loaded.ID)
		assert.Equal(t, lead.Name, loaded.Name)
		assert.Equal(t, lead.Email, loaded.Email)
		assert.Equal(t, lead.ZipCode, loaded.ZipCode)
		assert.Equal(t, lead.QuoteType, loaded.QuoteType)
		assert.Equal(t, lead.CoverageCategory, loaded.CoverageCategory)
		assert.Equal(t, lead.RawMessage, loaded.RawMessage)
	})

	t.Run("Default Name", func(t *testing.T) {
		id, err := repo.Save(ctx, &domain.Lead{RawMessage: "hello"})
		require.NoError(t, err)

		loaded, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultLeadName, loaded.Name)
	})

	t.Run("Ids Are Distinct", func(t *testing.T) {
		id1, err := repo.Save(ctx, &domain.Lead{RawMessage: "one"})
		require.NoError(t, err)
		id2, err := repo.Save(ctx, &domain.Lead{RawMessage: "two"})
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := repo.Get(ctx, 987654321)
		assert.ErrorIs(t, err, domain.ErrLeadNotFound)
	})
}
