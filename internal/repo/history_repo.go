package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/pmalov/spravka/internal/model"
	"github.com/pmalov/spravka/internal/pkg/dbutil"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Append(ctx context.Context, sessionID, role, content string) error {
	data := map[string]interface{}{
		"session_id": sessionID,
		"role":       role,
		"content":    content,
		"timestamp":  time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildInsert("conversations", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Recent returns up to limit turns of the session in chronological order.
// The scan itself is newest-first; the slice is reversed before returning
// so callers never see the internal ordering.
func (r *HistoryRepo) Recent(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error) {
	where := map[string]interface{}{
		"session_id": sessionID,
		"_orderby":   "timestamp desc, id desc",
		"_limit":     []uint{uint(limit)},
	}
	sqlStr, args, err := builder.BuildSelect("conversations", where,
		[]string{"id", "session_id", "role", "content", "timestamp"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var turns []model.ConversationTurn
	for rows.Next() {
		var turn model.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role, &turn.Content, &turn.Timestamp); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Prune keeps the newest keep turns of every session and deletes the rest.
// Returns the number of deleted rows; a second run with no intervening
// writes deletes nothing.
func (r *HistoryRepo) Prune(ctx context.Context, keep int) (int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM conversations`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var sessions []string
	for rows.Next() {
		var sessionID string
		if err := rows.Scan(&sessionID); err != nil {
			return 0, err
		}
		sessions = append(sessions, sessionID)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	const query = `
		DELETE FROM conversations
		WHERE id IN (
			SELECT id FROM conversations
			WHERE session_id = $1
			ORDER BY timestamp DESC, id DESC
			OFFSET $2
		)
	`
	var total int64
	for _, sessionID := range sessions {
		res, err := r.db.ExecContext(ctx, query, sessionID, keep)
		if err != nil {
			return total, err
		}
		deleted, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += deleted
	}
	return total, nil
}
