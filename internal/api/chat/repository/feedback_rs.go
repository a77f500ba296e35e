package chatRepository

import (
	"GutAssistant/internal/api/chat"
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/entity"
	contextPkg "GutAssistant/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type FeedbackRecordDB struct {
	ID               sql.NullString `db:"id"`
	TurnID           sql.NullString `db:"turn_id"`
	MessageSignature sql.NullString `db:"message_signature"`
	OriginalMessage  sql.NullString `db:"original_message"`
	IsCorrect        bool           `db:"is_correct"`
	CustomResponse   sql.NullString `db:"custom_response"`
	CorrectIntent    sql.NullString `db:"correct_intent"`
	RecordedAt       sql.NullTime   `db:"recorded_at"`
}

type OverrideDB struct {
	Signature    sql.NullString `db:"signature"`
	ResponseText sql.NullString `db:"response_text"`
	RecordID     sql.NullString `db:"record_id"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

func (r *feedbackRepository) CreateFeedbackRecord(ctx context.Context, record entity.FeedbackRecord) error {
	requestID := contextPkg.GetRequestID(ctx)

	var customResponse, correctIntent sql.NullString
	if record.CustomResponse != nil {
		customResponse = sql.NullString{String: *record.CustomResponse, Valid: true}
	}
	if record.CorrectIntent != nil {
		correctIntent = sql.NullString{String: string(*record.CorrectIntent), Valid: true}
	}

	argsKV := map[string]interface{}{
		"id":                record.ID,
		"turn_id":           record.TurnID,
		"message_signature": record.MessageSignature,
		"original_message":  record.OriginalMessage,
		"is_correct":        record.IsCorrect,
		"custom_response":   customResponse,
		"correct_intent":    correctIntent,
		"recorded_at":       record.RecordedAt,
	}

	query, args, err := sqlx.Named(queryCreateFeedbackRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateFeedbackRecord")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"turn_id":    record.TurnID,
			}).Warn("CreateFeedbackRecord turn already has feedback")
			return assistant.ErrDuplicateFeedback
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating feedback record")
		return err
	}

	return nil
}

func (r *feedbackRepository) GetAllFeedbackRecords(ctx context.Context) ([]entity.FeedbackRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	var rows []FeedbackRecordDB
	if err := r.q.SelectContext(ctx, &rows, queryGetAllFeedbackRecords); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllFeedbackRecords execution err")
		return nil, err
	}

	records := make([]entity.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, r.makeFeedbackRecord(row))
	}
	return records, nil
}

// UpsertOverride writes override unless the stored row comes from a later
// record. It reports whether the row changed.
func (r *feedbackRepository) UpsertOverride(ctx context.Context, override Override) (bool, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"signature":     override.Signature,
		"response_text": override.ResponseText,
		"record_id":     override.RecordID,
		"updated_at":    override.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryUpsertOverride, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpsertOverride named query preparation err")
		return false, err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"signature":  override.Signature,
			"error":      err.Error(),
		}).Error("UpsertOverride execution err")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"signature":  override.Signature,
			"record_id":  override.RecordID,
		}).Info("Override superseded by a later record, row kept")
	}

	return affected > 0, nil
}

func (r *feedbackRepository) GetOverride(ctx context.Context, signature string) (Override, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var overrideDB OverrideDB

	query, args, err := sqlx.Named(queryGetOverride, map[string]interface{}{"signature": signature})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOverride named query preparation err")
		return Override{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&overrideDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Override{}, chat.ErrOverrideNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOverride execution err")
		return Override{}, err
	}

	return Override{
		Signature:    overrideDB.Signature.String,
		ResponseText: overrideDB.ResponseText.String,
		RecordID:     overrideDB.RecordID.String,
		UpdatedAt:    overrideDB.UpdatedAt.Time,
	}, nil
}

func (r *feedbackRepository) DeleteAllOverrides(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)

	if _, err := r.q.ExecContext(ctx, queryDeleteAllOverrides); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteAllOverrides execution err")
		return err
	}
	return nil
}

func (r *feedbackRepository) makeFeedbackRecord(row FeedbackRecordDB) entity.FeedbackRecord {
	record := entity.FeedbackRecord{
		ID:               row.ID.String,
		TurnID:           row.TurnID.String,
		MessageSignature: row.MessageSignature.String,
		OriginalMessage:  row.OriginalMessage.String,
		IsCorrect:        row.IsCorrect,
		RecordedAt:       row.RecordedAt.Time,
	}
	if row.CustomResponse.Valid {
		custom := row.CustomResponse.String
		record.CustomResponse = &custom
	}
	if row.CorrectIntent.Valid {
		intent := entity.IntentLabel(row.CorrectIntent.String)
		record.CorrectIntent = &intent
	}
	return record
}
