package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// tables declares the relational layout. A fresh set is built per migration
// since the migrator annotates tables while diffing.
func tables() []*schema.Table {
	usersColumns := []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "native_language", Type: field.TypeString, Default: "en"},
		{Name: "current_rating", Type: field.TypeFloat64},
		{Name: "last_session_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	users := &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	sentencesColumns := []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "content", Type: field.TypeString},
		{Name: "translation", Type: field.TypeString},
		{Name: "language", Type: field.TypeString},
		{Name: "native_language", Type: field.TypeString},
		{Name: "difficulty_rating", Type: field.TypeFloat64},
		{Name: "created_at", Type: field.TypeTime},
	}
	sentences := &schema.Table{
		Name:       "sentences",
		Columns:    sentencesColumns,
		PrimaryKey: []*schema.Column{sentencesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sentence_language_native_language", Columns: []*schema.Column{sentencesColumns[3], sentencesColumns[4]}},
		},
	}

	cardsColumns := []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "front", Type: field.TypeString},
		{Name: "back", Type: field.TypeString},
		{Name: "language", Type: field.TypeString},
		{Name: "ease_factor", Type: field.TypeFloat64},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "repetitions", Type: field.TypeInt},
		{Name: "next_due_date", Type: field.TypeTime},
		{Name: "last_reviewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
		{Name: "sentence_id", Type: field.TypeString, Nullable: true},
	}
	cards := &schema.Table{
		Name:       "cards",
		Columns:    cardsColumns,
		PrimaryKey: []*schema.Column{cardsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "cards_users_cards",
				Columns:    []*schema.Column{cardsColumns[10]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "cards_sentences_cards",
				Columns:    []*schema.Column{cardsColumns[11]},
				RefColumns: []*schema.Column{sentencesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "card_user_id_next_due_date", Columns: []*schema.Column{cardsColumns[10], cardsColumns[7]}},
		},
	}
	cards.ForeignKeys[0].RefTable = users
	cards.ForeignKeys[1].RefTable = sentences

	// active_user_id mirrors user_id while the session is ACTIVE and is NULL
	// once completed; its UNIQUE constraint allows one active session per user.
	sessionsColumns := []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "starting_rating", Type: field.TypeFloat64},
		{Name: "ending_rating", Type: field.TypeFloat64},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "ended_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "active_user_id", Type: field.TypeString, Unique: true, Nullable: true},
		{Name: "user_id", Type: field.TypeString},
	}
	sessions := &schema.Table{
		Name:       "sessions",
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "sessions_users_sessions",
				Columns:    []*schema.Column{sessionsColumns[8]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "session_user_id_started_at", Columns: []*schema.Column{sessionsColumns[8], sessionsColumns[4]}},
		},
	}
	sessions.ForeignKeys[0].RefTable = users

	reviewLogsColumns := []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "card_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "rating", Type: field.TypeInt},
		{Name: "streak_position", Type: field.TypeInt},
		{Name: "elo_impact", Type: field.TypeFloat64},
		{Name: "opponent_rating", Type: field.TypeFloat64},
		{Name: "rating_before", Type: field.TypeFloat64},
		{Name: "rating_after", Type: field.TypeFloat64},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
	}
	reviewLogs := &schema.Table{
		Name:       "review_logs",
		Columns:    reviewLogsColumns,
		PrimaryKey: []*schema.Column{reviewLogsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "review_logs_sessions_review_logs",
				Columns:    []*schema.Column{reviewLogsColumns[11]},
				RefColumns: []*schema.Column{sessionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "reviewlog_session_id_sequence", Columns: []*schema.Column{reviewLogsColumns[11], reviewLogsColumns[1]}},
		},
	}
	reviewLogs.ForeignKeys[0].RefTable = sessions

	llmColumns := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	llmRequests := &schema.Table{
		Name:       "llm_requests",
		Columns:    llmColumns,
		PrimaryKey: []*schema.Column{llmColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{llmColumns[5]}},
			{Name: "llmrequest_timestamp", Columns: []*schema.Column{llmColumns[2]}},
		},
	}

	return []*schema.Table{users, sentences, cards, sessions, reviewLogs, llmRequests}
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables()...)
}
