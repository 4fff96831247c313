package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedClient(t *testing.T, st *Store, id string) {
	t.Helper()
	err := st.CreateClient(context.Background(), Client{
		ID:       id,
		FullName: "Alex Doe",
		Email:    id + "@example.com",
		Goals:    "run a 10k",
	})
	require.NoError(t, err)
}

func TestClientRoundTrip(t *testing.T) {
	st := newTestStore(t)
	seedClient(t, st, "client-1")

	c, err := st.GetClient(context.Background(), "client-1")
	assert.NoError(t, err)
	assert.Equal(t, "Alex Doe", c.FullName)
	assert.Equal(t, "run a 10k", c.Goals)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestGetClientNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetClient(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListClientsOrderedByName(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateClient(ctx, Client{ID: "c-2", FullName: "Zoe", Email: "z@example.com"}))
	require.NoError(t, st.CreateClient(ctx, Client{ID: "c-1", FullName: "Amy", Email: "a@example.com"}))

	clients, err := st.ListClients(ctx)
	assert.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Amy", clients[0].FullName)
	assert.Equal(t, "Zoe", clients[1].FullName)
}

func TestNotesNewestFirstWithLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedClient(t, st, "client-1")

	base := time.Now().UTC()
	for i, body := range []string{"first", "second", "third"} {
		require.NoError(t, st.AddNote(ctx, Note{
			ID:        "n-" + body,
			ClientID:  "client-1",
			Author:    "coach-1",
			Body:      body,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	notes, err := st.ListNotes(ctx, "client-1", 2)
	assert.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "third", notes[0].Body)
	assert.Equal(t, "second", notes[1].Body)
}

func TestBiometricsKindFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedClient(t, st, "client-1")

	require.NoError(t, st.AddBiometricSample(ctx, BiometricSample{ID: "b-1", ClientID: "client-1", Kind: "weight", Value: 80, Unit: "kg"}))
	require.NoError(t, st.AddBiometricSample(ctx, BiometricSample{ID: "b-2", ClientID: "client-1", Kind: "resting_hr", Value: 58, Unit: "bpm"}))

	samples, err := st.ListBiometrics(ctx, "client-1", "resting_hr", 0)
	assert.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 58.0, samples[0].Value)
	assert.Equal(t, "manual", samples[0].Source)
}

func TestChatMessagesRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedClient(t, st, "client-1")

	require.NoError(t, st.AddChatMessage(ctx, ChatMessage{ID: "m-1", ClientID: "client-1", Sender: "coach", Body: "how was the run?"}))

	msgs, err := st.ListChatMessages(ctx, "client-1", 0)
	assert.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "coach", msgs[0].Sender)
}

func TestRawFitbitRecordsAcrossClients(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedClient(t, st, "client-1")
	seedClient(t, st, "client-2")

	require.NoError(t, st.AddRawFitbitRecord(ctx, RawFitbitRecord{ID: "f-1", ClientID: "client-1", Kind: "heart_rate", Payload: `{"bpm":60}`}))
	require.NoError(t, st.AddRawFitbitRecord(ctx, RawFitbitRecord{ID: "f-2", ClientID: "client-2", Kind: "sleep", Payload: `{"hours":7}`}))

	all, err := st.ListRawFitbitRecords(ctx, "", 0)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	hr, err := st.ListRawFitbitRecords(ctx, "heart_rate", 0)
	assert.NoError(t, err)
	require.Len(t, hr, 1)
	assert.Equal(t, "client-1", hr[0].ClientID)
}

func TestQuerySelectOnly(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedClient(t, st, "client-1")

	rows, err := st.Query(ctx, "SELECT id, full_name FROM clients")
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "client-1", rows[0]["id"])
	assert.Equal(t, "Alex Doe", rows[0]["full_name"])
}

func TestQueryRejectsMutations(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, q := range []string{
		"DELETE FROM clients",
		"INSERT INTO clients (id) VALUES ('x')",
		"UPDATE clients SET full_name = 'x'",
		"DROP TABLE clients",
		"SELECT 1; DROP TABLE clients",
		"PRAGMA journal_mode=DELETE",
		"",
	} {
		_, err := st.Query(ctx, q)
		assert.Error(t, err, "query should be rejected: %s", q)
	}
}

func TestQueryAllowsTrailingSemicolonAndCTE(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Query(ctx, "SELECT 1;")
	assert.NoError(t, err)

	_, err = st.Query(ctx, "WITH x AS (SELECT 1 AS v) SELECT v FROM x")
	assert.NoError(t, err)
}
