package dbutil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Finalize rebinds gendry's '?' placeholders to postgres positional ones.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

// BuildUpsert renders an INSERT ... ON CONFLICT (key) DO UPDATE statement, which
// gendry's builder only offers in its MySQL dialect. Columns are emitted in
// sorted order so the statement text is stable.
func BuildUpsert(table, conflictKey string, data map[string]interface{}) (string, []interface{}, error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("upsert %s: no columns", table)
	}
	if _, ok := data[conflictKey]; !ok {
		return "", nil, fmt.Errorf("upsert %s: conflict key %s missing", table, conflictKey)
	}
	cols := make([]string, 0, len(data))
	for col := range data {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	args := make([]interface{}, 0, len(cols))
	holders := make([]string, 0, len(cols))
	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		args = append(args, data[col])
		holders = append(holders, "?")
		if col != conflictKey {
			updates = append(updates, fmt.Sprintf("%s=EXCLUDED.%s", col, col))
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(cols, ","), strings.Join(holders, ","), conflictKey, strings.Join(updates, ","))
	return query, args, nil
}

func IsConflict(err error) bool {
	if pgErr, ok := err.(*pq.Error); ok {
		return pgErr.Code == "23505"
	}
	return false
}
