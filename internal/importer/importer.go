// Package importer turns bank statement files (CSV exports and OFX/QFX
// statements) into transactions for spending analysis.
package importer

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"zaman/internal/core"
)

// User-facing messages. Import never returns partial results: any of these
// aborts the whole file.
const (
	MsgEmptyFile      = "Файл пуст. Загрузите выписку с транзакциями."
	MsgHeader         = "Не удалось прочитать заголовок файла. Проверьте формат CSV."
	MsgMissingColumns = "В файле не найдены обязательные столбцы «Дата» и «Сумма»."
	MsgNoValidRows    = "В файле не найдено ни одной корректной транзакции."
	MsgStatement      = "Не удалось прочитать OFX-выписку."
)

var (
	ErrEmptyFile      = errors.New("empty file")
	ErrHeader         = errors.New("unreadable header")
	ErrMissingColumns = errors.New("missing date or amount column")
	ErrNoValidRows    = errors.New("no valid rows")
	ErrStatement      = errors.New("unreadable statement")
)

// ImportError pairs an internal cause with the message shown to the user.
type ImportError struct {
	Message string
	Err     error
}

func (e *ImportError) Error() string { return e.Message }

func (e *ImportError) Unwrap() error { return e.Err }

func importErr(kind error, msg string, cause error) *ImportError {
	if cause != nil {
		return &ImportError{Message: msg, Err: errors.Join(kind, cause)}
	}
	return &ImportError{Message: msg, Err: kind}
}

// Result is the outcome of a successful import.
type Result struct {
	Transactions      []core.Transaction `json:"transactions"`
	HasCategoryColumn bool               `json:"hasCategoryColumn"`
}

// Import picks the parser from the file name extension. Anything that is
// not .ofx or .qfx is treated as CSV.
func Import(filename string, r io.Reader) (Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		return ParseOFX(r)
	default:
		return ParseCSV(r)
	}
}
