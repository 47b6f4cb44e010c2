package db

import (
	"database/sql"
	"errors"
	"testing"
)

func TestMapDBError_DuplicateStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"mysql duplicate entry", errors.New("Error 1062: Duplicate entry 'x' for key 'PRIMARY'")},
		{"postgres unique violation", errors.New("duplicate key value violates unique constraint \"folders_pkey\" (SQLSTATE 23505)")},
		{"sqlite unique constraint", errors.New("UNIQUE constraint failed: master.id")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if mapped := MapDBError(c.err); !errors.Is(mapped, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate for case %s, got: %v", c.name, mapped)
			}
		})
	}
}

func TestMapDBError_Constraint(t *testing.T) {
	cases := []error{
		errors.New("FOREIGN KEY constraint failed"),
		errors.New("insert or update on table \"items\" violates foreign key constraint (SQLSTATE 23503)"),
		errors.New("NOT NULL constraint failed: folders.name"),
		errors.New("Error 1452: Cannot add or update a child row"),
	}
	for _, e := range cases {
		if mapped := MapDBError(e); !errors.Is(mapped, ErrConstraint) {
			t.Fatalf("expected ErrConstraint for %q, got: %v", e, mapped)
		}
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	e := errors.New("some io error")
	if mapped := MapDBError(e); mapped != e {
		t.Fatalf("expected original error to be returned unchanged, got: %v", mapped)
	}
	if MapDBError(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestWrapErr(t *testing.T) {
	if wrapErr("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	err := wrapErr("get item", sql.ErrNoRows)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "get item" {
		t.Fatalf("expected *StorageError with op, got %#v", err)
	}
	// Already wrapped errors keep their original op.
	if again := wrapErr("outer", err); again != err {
		t.Fatalf("expected wrapped error to pass through, got %v", again)
	}
}
