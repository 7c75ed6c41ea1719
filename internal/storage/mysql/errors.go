package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	gomysql "github.com/go-sql-driver/mysql"

	"hotel_catalog/internal/domain"
)

// Server error numbers we translate.
const (
	erNoReferencedRow  = 1216
	erRowIsReferenced  = 1217
	erDupEntry         = 1062
	erRowIsReferenced2 = 1451
	erNoReferencedRow2 = 1452
	erCheckConstraint  = 3819
)

var (
	fkNameRe  = regexp.MustCompile("CONSTRAINT `([^`]+)`")
	keyNameRe = regexp.MustCompile(`for key '(?:[^'.]+\.)?([^']+)'`)
)

// classify maps driver errors onto domain errors. Unknown errors pass through.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %v", domain.ErrSessionClosed, err)
	}
	var me *gomysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case erDupEntry:
		return &domain.ConstraintError{Kind: domain.ConstraintUnique, Table: table, Constraint: match(keyNameRe, me.Message), Err: err}
	case erNoReferencedRow, erNoReferencedRow2, erRowIsReferenced, erRowIsReferenced2:
		return &domain.ConstraintError{Kind: domain.ConstraintForeignKey, Table: table, Constraint: match(fkNameRe, me.Message), Err: err}
	case erCheckConstraint:
		return fmt.Errorf("%w: %s", domain.ErrValidation, me.Message)
	}
	return err
}

func match(re *regexp.Regexp, msg string) string {
	if m := re.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return ""
}
