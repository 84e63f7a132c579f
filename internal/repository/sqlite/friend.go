package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lababa/lababa/internal/repository"
)

type friendRepo struct {
	db *sql.DB
}

func (r *friendRepo) CreateInvite(ctx context.Context, invite *repository.FriendInvite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO friend_invites(id, inviter_user_id, created_at) VALUES(?, ?, ?)`,
		invite.ID, invite.InviterUserID, invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert friend invite: %w", err)
	}
	return nil
}

func (r *friendRepo) FindInvite(ctx context.Context, id string) (*repository.FriendInvite, error) {
	var inv repository.FriendInvite
	err := r.db.QueryRowContext(ctx,
		`SELECT id, inviter_user_id, created_at FROM friend_invites WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.InviterUserID, &inv.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r *friendRepo) AddRelation(ctx context.Context, rel *repository.FriendRelation) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO friend_relations(id, inviter_user_id, invitee_user_id, created_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(inviter_user_id, invitee_user_id) DO NOTHING`,
		rel.ID, rel.InviterUserID, rel.InviteeUserID, rel.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert friend relation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *friendRepo) ListRelations(ctx context.Context, userID string) ([]repository.FriendRelation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, inviter_user_id, invitee_user_id, created_at FROM friend_relations
		 WHERE inviter_user_id = ? OR invitee_user_id = ? ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list friend relations: %w", err)
	}
	defer rows.Close()
	out := []repository.FriendRelation{}
	for rows.Next() {
		var rel repository.FriendRelation
		if err := rows.Scan(&rel.ID, &rel.InviterUserID, &rel.InviteeUserID, &rel.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}
