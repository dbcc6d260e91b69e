package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/draftshare/internal/model"
	"github.com/xxxsen/draftshare/internal/pkg/dbutil"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
)

type ShareLinkRepo struct {
	db *sql.DB
}

func NewShareLinkRepo(db *sql.DB) *ShareLinkRepo {
	return &ShareLinkRepo{db: db}
}

func (r *ShareLinkRepo) Get(ctx context.Context, docID int64) (*model.ShareLink, error) {
	where := map[string]interface{}{"document_id": docID}
	sqlStr, args, err := builder.BuildSelect("share_links", where, []string{"document_id", "token", "expires_at", "ctime", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	var link model.ShareLink
	if err := rows.Scan(&link.DocumentID, &link.Token, &link.ExpiresAt, &link.Ctime, &link.Mtime); err != nil {
		return nil, err
	}
	return &link, nil
}

// Put replaces the document's link in a single statement so the previous
// token stops matching as soon as it commits.
func (r *ShareLinkRepo) Put(ctx context.Context, link *model.ShareLink) error {
	data := map[string]interface{}{
		"document_id": link.DocumentID,
		"token":       link.Token,
		"expires_at":  link.ExpiresAt,
		"ctime":       link.Ctime,
		"mtime":       link.Mtime,
	}
	sqlStr, args, err := dbutil.BuildUpsert("share_links", "document_id", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareLinkRepo) Delete(ctx context.Context, docID int64) error {
	where := map[string]interface{}{"document_id": docID}
	sqlStr, args, err := builder.BuildDelete("share_links", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareLinkRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM share_links")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
