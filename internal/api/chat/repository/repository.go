package chatRepository

import (
	"GutAssistant/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"time"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Turns:    &turnRepository{q: sqlExecutor, log: r.log},
		Feedback: &feedbackRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type Override struct {
	Signature    string
	ResponseText string
	RecordID     string
	UpdatedAt    time.Time
}

type Client struct {
	Turns interface {
		CreateTurn(ctx context.Context, turn entity.ConversationTurn) error
		GetTurnByID(ctx context.Context, id string) (entity.ConversationTurn, error)
		GetTurnsBySessionID(ctx context.Context, sessionID string, limit int) ([]entity.ConversationTurn, error)
		CloseTurn(ctx context.Context, id string, wasCorrect bool, resolvedAt time.Time) error
	}

	Feedback interface {
		CreateFeedbackRecord(ctx context.Context, record entity.FeedbackRecord) error
		GetAllFeedbackRecords(ctx context.Context) ([]entity.FeedbackRecord, error)
		UpsertOverride(ctx context.Context, override Override) (bool, error)
		GetOverride(ctx context.Context, signature string) (Override, error)
		DeleteAllOverrides(ctx context.Context) error
	}

	Commit   func() error
	Rollback func() error
}

type turnRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type feedbackRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
