package chatRepository

import (
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/entity"
	contextPkg "GutAssistant/pkg/context"
	"context"
	"database/sql"
	"errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type TurnDB struct {
	ID              sql.NullString  `db:"id"`
	SessionID       sql.NullString  `db:"session_id"`
	MessageText     sql.NullString  `db:"message_text"`
	ReceivedAt      sql.NullTime    `db:"received_at"`
	Signature       sql.NullString  `db:"signature"`
	Intent          sql.NullString  `db:"intent"`
	Keywords        []byte          `db:"keywords"`
	Entities        []byte          `db:"entities"`
	Confidence      sql.NullFloat64 `db:"confidence"`
	MatchedRule     sql.NullString  `db:"matched_rule"`
	ResponseText    sql.NullString  `db:"response_text"`
	Recommendations []byte          `db:"recommendations"`
	Provenance      sql.NullString  `db:"provenance"`
	NeedsFeedback   bool            `db:"needs_feedback"`
	WasCorrect      sql.NullBool    `db:"was_correct"`
	CreatedAt       sql.NullTime    `db:"created_at"`
	ResolvedAt      sql.NullTime    `db:"resolved_at"`
}

func (r *turnRepository) CreateTurn(ctx context.Context, turn entity.ConversationTurn) error {
	requestID := contextPkg.GetRequestID(ctx)

	keywordsJSON, err := json.Marshal(nonNilStrings(turn.Classification.Keywords))
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal turn keywords")
		return err
	}

	entitiesJSON, err := json.Marshal(nonNilEntities(turn.Classification.Entities))
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal turn entities")
		return err
	}

	recommendationsJSON, err := json.Marshal(nonNilStrings(turn.Response.Recommendations))
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal turn recommendations")
		return err
	}

	argsKV := map[string]interface{}{
		"id":              turn.ID,
		"session_id":      turn.SessionID,
		"message_text":    turn.Message.Text,
		"received_at":     turn.Message.ReceivedAt,
		"signature":       turn.Signature,
		"intent":          string(turn.Classification.Intent),
		"keywords":        string(keywordsJSON),
		"entities":        string(entitiesJSON),
		"confidence":      turn.Classification.Confidence,
		"matched_rule":    turn.Classification.MatchedRule,
		"response_text":   turn.Response.ResponseText,
		"recommendations": string(recommendationsJSON),
		"provenance":      string(turn.Response.Provenance),
		"needs_feedback":  turn.NeedsFeedback,
		"created_at":      turn.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateTurn, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateTurn")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"turn_id":    turn.ID,
			"error":      err.Error(),
		}).Error("Database error when creating conversation turn")
		return err
	}

	return nil
}

func (r *turnRepository) GetTurnByID(ctx context.Context, id string) (entity.ConversationTurn, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var turnDB TurnDB

	query, args, err := sqlx.Named(queryGetTurnByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTurnByID named query preparation err")
		return entity.ConversationTurn{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&turnDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"turn_id":    id,
			}).Debug("GetTurnByID turn not found")
			return entity.ConversationTurn{}, assistant.ErrTurnNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTurnByID execution err")
		return entity.ConversationTurn{}, err
	}

	return r.makeTurn(turnDB)
}

func (r *turnRepository) GetTurnsBySessionID(ctx context.Context, sessionID string, limit int) ([]entity.ConversationTurn, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"session_id": sessionID,
	}
	baseQuery := queryGetTurnsBySessionID
	if limit > 0 {
		argsKV["limit"] = limit
		baseQuery = queryGetTurnsBySessionIDLimited
	}

	query, args, err := sqlx.Named(baseQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTurnsBySessionID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []TurnDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("GetTurnsBySessionID execution err")
		return nil, err
	}

	turns := make([]entity.ConversationTurn, 0, len(rows))
	for _, row := range rows {
		turn, err := r.makeTurn(row)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"turn_id":    row.ID.String,
				"error":      err.Error(),
			}).Error("GetTurnsBySessionID decode err")
			return nil, err
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

// CloseTurn flips a pending turn to resolved. Only one caller can win: the
// update is guarded on needs_feedback, and a miss is reported as either a
// duplicate or an unknown turn.
func (r *turnRepository) CloseTurn(ctx context.Context, id string, wasCorrect bool, resolvedAt time.Time) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":          id,
		"was_correct": wasCorrect,
		"resolved_at": resolvedAt,
	}

	query, args, err := sqlx.Named(queryCloseTurn, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CloseTurn named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CloseTurn execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CloseTurn rows affected err")
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	exists, err := r.turnExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return assistant.ErrTurnNotFound
	}

	r.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"turn_id":    id,
	}).Warn("CloseTurn turn already resolved")
	return assistant.ErrDuplicateFeedback
}

func (r *turnRepository) turnExists(ctx context.Context, id string) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryTurnExists, map[string]interface{}{"id": id})
	if err != nil {
		return false, err
	}
	query = r.q.Rebind(query)

	var exists bool
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&exists); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("turnExists execution err")
		return false, err
	}
	return exists, nil
}

func (r *turnRepository) makeTurn(turnDB TurnDB) (entity.ConversationTurn, error) {
	keywords := []string{}
	if len(turnDB.Keywords) > 0 {
		if err := json.Unmarshal(turnDB.Keywords, &keywords); err != nil {
			return entity.ConversationTurn{}, err
		}
	}

	entities := []entity.Entity{}
	if len(turnDB.Entities) > 0 {
		if err := json.Unmarshal(turnDB.Entities, &entities); err != nil {
			return entity.ConversationTurn{}, err
		}
	}

	recommendations := []string{}
	if len(turnDB.Recommendations) > 0 {
		if err := json.Unmarshal(turnDB.Recommendations, &recommendations); err != nil {
			return entity.ConversationTurn{}, err
		}
	}

	turn := entity.ConversationTurn{
		ID:        turnDB.ID.String,
		SessionID: turnDB.SessionID.String,
		Message: entity.Message{
			Text:       turnDB.MessageText.String,
			ReceivedAt: turnDB.ReceivedAt.Time,
			SessionID:  turnDB.SessionID.String,
		},
		Signature: turnDB.Signature.String,
		Classification: entity.ClassificationResult{
			Intent:      entity.IntentLabel(turnDB.Intent.String),
			Keywords:    keywords,
			Entities:    entities,
			Confidence:  turnDB.Confidence.Float64,
			MatchedRule: turnDB.MatchedRule.String,
		},
		Response: entity.ResponsePayload{
			ResponseText:    turnDB.ResponseText.String,
			Recommendations: recommendations,
			Provenance:      entity.Provenance(turnDB.Provenance.String),
		},
		NeedsFeedback: turnDB.NeedsFeedback,
		CreatedAt:     turnDB.CreatedAt.Time,
	}

	if turnDB.WasCorrect.Valid {
		wasCorrect := turnDB.WasCorrect.Bool
		turn.WasCorrect = &wasCorrect
	}
	if turnDB.ResolvedAt.Valid {
		resolvedAt := turnDB.ResolvedAt.Time
		turn.ResolvedAt = &resolvedAt
	}

	return turn, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilEntities(values []entity.Entity) []entity.Entity {
	if values == nil {
		return []entity.Entity{}
	}
	return values
}
