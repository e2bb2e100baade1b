package pkg

import (
	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// IsSafeSelect reports whether sql parses as a plain SELECT statement.
// Anything else (DML, DDL, unparsable text) is rejected before it ever
// reaches a user database.
func IsSafeSelect(sql string) bool {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return false
	}
	switch stmt.(type) {
	case *sqlparser.Select:
		return true
	default:
		return false
	}
}
