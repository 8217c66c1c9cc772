package sqlutil

import "database/sql"

// Optional player stats are *int / *string in models and NULL-able columns in
// Postgres.

// NullInt binds an optional integer; nil becomes NULL.
func NullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

// NullText binds an optional string; nil becomes NULL.
func NullText(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// IntOrNil reads a scanned integer column back into an optional value.
func IntOrNil(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

// TextOrNil reads a scanned text column back into an optional value.
func TextOrNil(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
