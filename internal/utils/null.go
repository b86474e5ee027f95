package utils

import (
	"database/sql"

	"github.com/guregu/null"
)

// SqlToNullString converts sql.NullString to null.String
func SqlToNullString(ns sql.NullString) null.String {
	if ns.Valid {
		return null.StringFrom(ns.String)
	}
	return null.String{}
}

// NullStringToSQL converts null.String to sql.NullString
func NullStringToSQL(s null.String) sql.NullString {
	return sql.NullString{
		String: s.String,
		Valid:  s.Valid,
	}
}
