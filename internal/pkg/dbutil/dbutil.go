package dbutil

import (
	"github.com/jmoiron/sqlx"
)

// Finalize rebinds gendry's MySQL-style "?" placeholders to the $N form
// Postgres expects.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}
