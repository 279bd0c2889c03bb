package postgres

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsBindParameterMismatch(t *testing.T) {
	t.Run("matches bind mismatch error", func(t *testing.T) {
		err := fakeErr("pq: bind message supplies 2 parameters, but prepared statement \"\" requires 1 (08P01)")
		if !isBindParameterMismatch(err) {
			t.Fatalf("expected true for bind mismatch error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation fpl_raw_payloads does not exist")
		if isBindParameterMismatch(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUnnamedPreparedStatementMissing(t *testing.T) {
	t.Run("matches statement missing message", func(t *testing.T) {
		err := fakeErr("pq: unnamed prepared statement does not exist (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for statement missing error")
		}
	})

	t.Run("matches by 26000 code", func(t *testing.T) {
		err := fakeErr("pq: prepared statement missing (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for 26000 prepared statement error")
		}
	})

	t.Run("matches wrapped error", func(t *testing.T) {
		err := fmt.Errorf("upsert raw payloads: %w", fakeErr("pq: unnamed prepared statement does not exist"))
		if !isPreparedStatementConflict(err) {
			t.Fatalf("expected true for wrapped statement error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation fpl_raw_payloads does not exist")
		if isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsPreparedStatementConflict_PQCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "invalid statement name", err: &pq.Error{Code: "26000", Message: "prepared statement \"\" does not exist"}, want: true},
		{name: "bind mismatch", err: &pq.Error{Code: "08P01", Message: "bind message supplies 7 parameters, but prepared statement \"\" requires 175"}, want: true},
		{name: "other protocol violation", err: &pq.Error{Code: "08P01", Message: "invalid frontend message type"}, want: false},
		{name: "unique violation", err: &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}, want: false},
		{name: "wrapped pq error", err: fmt.Errorf("upsert raw payloads batch=0: %w", &pq.Error{Code: "26000"}), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isPreparedStatementConflict(tc.err); got != tc.want {
				t.Fatalf("unexpected result: got=%t want=%t", got, tc.want)
			}
		})
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
