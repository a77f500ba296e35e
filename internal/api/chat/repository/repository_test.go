package chatRepository

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"GutAssistant/internal/api/chat"
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/entity"
)

var turnColumns = []string{
	"id", "session_id", "message_text", "received_at", "signature", "intent",
	"keywords", "entities", "confidence", "matched_rule", "response_text",
	"recommendations", "provenance", "needs_feedback", "was_correct",
	"created_at", "resolved_at",
}

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	return New(sqlx.NewDb(db, "postgres"), log), mock
}

func sampleTurn(now time.Time) entity.ConversationTurn {
	return entity.ConversationTurn{
		ID:        "turn-1",
		SessionID: "session-1",
		Message: entity.Message{
			Text:       "What food should I buy?",
			ReceivedAt: now,
			SessionID:  "session-1",
		},
		Signature: "what food should i buy",
		Classification: entity.ClassificationResult{
			Intent:      entity.IntentDietSuggestion,
			Keywords:    []string{"what", "food", "should"},
			Confidence:  0.8,
			MatchedRule: "food",
		},
		Response: entity.ResponsePayload{
			ResponseText:    "diet text",
			Recommendations: []string{"Eat more fiber"},
			Provenance:      entity.ProvenanceCanonical,
		},
		NeedsFeedback: true,
		CreatedAt:     now,
	}
}

func TestCreateTurn(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	turn := sampleTurn(now)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO conversation_turns")).
		WithArgs(
			turn.ID, turn.SessionID, turn.Message.Text, now, turn.Signature,
			"diet_suggestion", `["what","food","should"]`, `[]`, 0.8, "food",
			"diet text", `["Eat more fiber"]`, "canonical", true, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, client.Turns.CreateTurn(context.Background(), turn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTurnByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resolved := now.Add(time.Minute)

	rows := sqlmock.NewRows(turnColumns).AddRow(
		"turn-1", "session-1", "Tell me about kefir", now, "tell me about kefir",
		"unknown", `["tell","about","kefir"]`, `[{"name":"Kefir","type":"food"}]`,
		0.75, "", "unknown text", `[]`, "corrected", false, false, now, resolved,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM conversation_turns")).
		WithArgs("turn-1").
		WillReturnRows(rows)

	turn, err := client.Turns.GetTurnByID(context.Background(), "turn-1")
	require.NoError(t, err)
	require.Equal(t, "session-1", turn.SessionID)
	require.Equal(t, entity.IntentUnknown, turn.Classification.Intent)
	require.Equal(t, []string{"tell", "about", "kefir"}, turn.Classification.Keywords)
	require.Equal(t, []entity.Entity{{Name: "Kefir", Type: "food"}}, turn.Classification.Entities)
	require.Equal(t, []string{}, turn.Response.Recommendations)
	require.NotNil(t, turn.WasCorrect)
	require.False(t, *turn.WasCorrect)
	require.NotNil(t, turn.ResolvedAt)
	require.True(t, resolved.Equal(*turn.ResolvedAt))
	require.Equal(t, entity.TurnStateCorrected, turn.State())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTurnByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM conversation_turns")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(turnColumns))

	_, err = client.Turns.GetTurnByID(context.Background(), "missing")
	require.ErrorIs(t, err, assistant.ErrTurnNotFound)
}

func TestGetTurnsBySessionIDAppliesLimit(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(turnColumns).
		AddRow("turn-2", "session-1", "hi", now, "hi", "hello", `[]`, `[]`, 0.9, "hi",
			"hello", `[]`, "canonical", true, nil, now, nil)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT")).
		WithArgs("session-1", 1).
		WillReturnRows(rows)

	turns, err := client.Turns.GetTurnsBySessionID(context.Background(), "session-1", 1)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Nil(t, turns[0].WasCorrect)
	require.Nil(t, turns[0].ResolvedAt)
	require.Equal(t, entity.TurnStatePending, turns[0].State())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseTurn(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("pending turn is closed", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		client, err := repo.NewClient(false)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE conversation_turns")).
			WithArgs(false, now, "turn-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, client.Turns.CloseTurn(context.Background(), "turn-1", false, now))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("closed turn is a duplicate", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		client, err := repo.NewClient(false)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE conversation_turns")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("turn-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = client.Turns.CloseTurn(context.Background(), "turn-1", true, now)
		require.ErrorIs(t, err, assistant.ErrDuplicateFeedback)
	})

	t.Run("unknown turn", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		client, err := repo.NewClient(false)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE conversation_turns")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err = client.Turns.CloseTurn(context.Background(), "nope", true, now)
		require.ErrorIs(t, err, assistant.ErrTurnNotFound)
	})
}

func TestCreateFeedbackRecordDuplicateTurn(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback_records")).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err = client.Feedback.CreateFeedbackRecord(context.Background(), entity.FeedbackRecord{
		ID:     "record-1",
		TurnID: "turn-1",
	})
	require.ErrorIs(t, err, assistant.ErrDuplicateFeedback)
}

func TestCreateFeedbackRecordNullableColumns(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	custom := "Try kefir."

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback_records")).
		WithArgs("record-1", "turn-1", "sig", "msg", false, custom, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = client.Feedback.CreateFeedbackRecord(context.Background(), entity.FeedbackRecord{
		ID:               "record-1",
		TurnID:           "turn-1",
		MessageSignature: "sig",
		OriginalMessage:  "msg",
		CustomResponse:   &custom,
		RecordedAt:       now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllFeedbackRecords(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "turn_id", "message_signature", "original_message",
		"is_correct", "custom_response", "correct_intent", "recorded_at",
	}).
		AddRow("r1", "t1", "sig", "msg", true, nil, nil, now).
		AddRow("r2", "t2", "sig", "msg", false, "Custom", "gut_health", now.Add(time.Second))

	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback_records")).WillReturnRows(rows)

	records, err := client.Feedback.GetAllFeedbackRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Nil(t, records[0].CustomResponse)
	require.Nil(t, records[0].CorrectIntent)
	require.Equal(t, "Custom", *records[1].CustomResponse)
	require.Equal(t, entity.IntentGutHealth, *records[1].CorrectIntent)
}

func TestGetOverrideMiss(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback_overrides")).
		WithArgs("sig").
		WillReturnRows(sqlmock.NewRows([]string{"signature", "response_text", "record_id", "updated_at"}))

	_, err = client.Feedback.GetOverride(context.Background(), "sig")
	require.ErrorIs(t, err, chat.ErrOverrideNotFound)
}

func TestNewClientTransaction(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO feedback_overrides")).
		WithArgs("sig", "text", "record-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	client, err := repo.NewClient(true)
	require.NoError(t, err)

	applied, err := client.Feedback.UpsertOverride(context.Background(), Override{
		Signature:    "sig",
		ResponseText: "text",
		RecordID:     "record-1",
		UpdatedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, client.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertOverrideKeepsLaterRecord(t *testing.T) {
	repo, mock := newMockRepository(t)
	client, err := repo.NewClient(false)
	require.NoError(t, err)

	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		`WHERE feedback_overrides.updated_at < EXCLUDED.updated_at OR ( feedback_overrides.updated_at = EXCLUDED.updated_at AND feedback_overrides.record_id COLLATE "C" < EXCLUDED.record_id COLLATE "C" )`,
	)).
		WithArgs("sig", "older text", "record-a", earlier).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := client.Feedback.UpsertOverride(context.Background(), Override{
		Signature:    "sig",
		ResponseText: "older text",
		RecordID:     "record-a",
		UpdatedAt:    earlier,
	})
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewClientBeginFailure(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := repo.NewClient(true)
	require.Error(t, err)
}
