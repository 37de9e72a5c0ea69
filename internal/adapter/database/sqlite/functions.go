package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	mattn "github.com/mattn/go-sqlite3"
	modernc "modernc.org/sqlite"
	moderncLib "modernc.org/sqlite/lib"
)

// LowerFunc is a SQL function that lowercases its argument with full Unicode
// folding. The builtin LOWER() only folds ASCII.
const LowerFunc = "unicode_lower"

// cgoDriverName is mattn/go-sqlite3 with LowerFunc registered on every
// connection.
const cgoDriverName = "sqlite3_tasks"

func init() {
	sql.Register(cgoDriverName, &mattn.SQLiteDriver{
		ConnectHook: func(conn *mattn.SQLiteConn) error {
			return conn.RegisterFunc(LowerFunc, strings.ToLower, true)
		},
	})

	modernc.MustRegisterDeterministicScalarFunction(LowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *modernc.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch value := args[0].(type) {
	case string:
		return strings.ToLower(value), nil
	case []byte:
		return strings.ToLower(string(value)), nil
	}

	return args[0], nil
}

func driverName(driver string) string {
	if driver == DriverCgo {
		return cgoDriverName
	}

	return driver
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint, for
// either driver.
func IsUniqueViolation(err error) bool {
	var cgoErr mattn.Error
	if errors.As(err, &cgoErr) {
		return cgoErr.ExtendedCode == mattn.ErrConstraintUnique
	}

	var pureErr *modernc.Error
	if errors.As(err, &pureErr) {
		return pureErr.Code() == moderncLib.SQLITE_CONSTRAINT_UNIQUE
	}

	return false
}
