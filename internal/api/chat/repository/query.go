package chatRepository

const (
	queryCreateTurn = `
		INSERT INTO conversation_turns (
			id,
			session_id,
			message_text,
			received_at,
			signature,
			intent,
			keywords,
			entities,
			confidence,
			matched_rule,
			response_text,
			recommendations,
			provenance,
			needs_feedback,
			created_at
		) VALUES (
			:id,
			:session_id,
			:message_text,
			:received_at,
			:signature,
			:intent,
			:keywords,
			:entities,
			:confidence,
			:matched_rule,
			:response_text,
			:recommendations,
			:provenance,
			:needs_feedback,
			:created_at
		)
	`

	queryGetTurnByID = `
		SELECT
			id,
			session_id,
			message_text,
			received_at,
			signature,
			intent,
			keywords,
			entities,
			confidence,
			matched_rule,
			response_text,
			recommendations,
			provenance,
			needs_feedback,
			was_correct,
			created_at,
			resolved_at
		FROM conversation_turns
		WHERE id = :id
	`

	queryGetTurnsBySessionID = `
		SELECT
			id,
			session_id,
			message_text,
			received_at,
			signature,
			intent,
			keywords,
			entities,
			confidence,
			matched_rule,
			response_text,
			recommendations,
			provenance,
			needs_feedback,
			was_correct,
			created_at,
			resolved_at
		FROM conversation_turns
		WHERE session_id = :session_id
		ORDER BY created_at DESC, id DESC
	`

	queryGetTurnsBySessionIDLimited = queryGetTurnsBySessionID + `
		LIMIT :limit
	`

	queryCloseTurn = `
		UPDATE conversation_turns
		SET
			needs_feedback = FALSE,
			was_correct = :was_correct,
			resolved_at = :resolved_at
		WHERE
			id = :id
			AND needs_feedback = TRUE
	`

	queryTurnExists = `
		SELECT EXISTS (
			SELECT 1 FROM conversation_turns WHERE id = :id
		)
	`

	queryCreateFeedbackRecord = `
		INSERT INTO feedback_records (
			id,
			turn_id,
			message_signature,
			original_message,
			is_correct,
			custom_response,
			correct_intent,
			recorded_at
		) VALUES (
			:id,
			:turn_id,
			:message_signature,
			:original_message,
			:is_correct,
			:custom_response,
			:correct_intent,
			:recorded_at
		)
	`

	queryGetAllFeedbackRecords = `
		SELECT
			id,
			turn_id,
			message_signature,
			original_message,
			is_correct,
			custom_response,
			correct_intent,
			recorded_at
		FROM feedback_records
		ORDER BY recorded_at ASC, id ASC
	`

	queryUpsertOverride = `
		INSERT INTO feedback_overrides (
			signature,
			response_text,
			record_id,
			updated_at
		) VALUES (
			:signature,
			:response_text,
			:record_id,
			:updated_at
		)
		ON CONFLICT (signature) DO UPDATE SET
			response_text = EXCLUDED.response_text,
			record_id = EXCLUDED.record_id,
			updated_at = EXCLUDED.updated_at
		WHERE
			feedback_overrides.updated_at < EXCLUDED.updated_at
			OR (
				feedback_overrides.updated_at = EXCLUDED.updated_at
				AND feedback_overrides.record_id COLLATE "C" < EXCLUDED.record_id COLLATE "C"
			)
	`

	queryGetOverride = `
		SELECT
			signature,
			response_text,
			record_id,
			updated_at
		FROM feedback_overrides
		WHERE signature = :signature
	`

	queryDeleteAllOverrides = `
		DELETE FROM feedback_overrides
	`
)
