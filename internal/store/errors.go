package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound: the row, or an object it refers to, does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: a relation row for the same (subject, object) exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrSelfReference: a user tried to follow themselves.
	ErrSelfReference = errors.New("self reference")
	// ErrConstraintViolation: the database rejected a write (unique, foreign key or check).
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrForbidden: the current user may not modify the row.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports one invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors of one payload.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Fields returns field -> messages, the shape the API reports.
func (es ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(es))
	for _, e := range es {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Err returns nil when es is empty.
func (es ValidationErrors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// ConstraintError wraps ErrConstraintViolation with the violated constraint.
type ConstraintError struct {
	Constraint string
	Code       string
	err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation (%s): %v", e.Constraint, e.err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{ErrConstraintViolation, e.err}
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Code == pgerrcode.UniqueViolation
}

// Translate maps driver and gorm errors onto the store's taxonomy.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
		switch pgerr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
			return &ConstraintError{Constraint: pgerr.ConstraintName, Code: pgerr.Code, err: err}
		}
	}
	return err
}
