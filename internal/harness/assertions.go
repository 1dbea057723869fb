package harness

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/paddock/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the saved game.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch {
		case actx == nil || actx.Store == nil:
			err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
		case assertion.Type == AssertFinalState:
			err = assertFinalState(actx.Ctx, actx.Store, assertion)
		case assertion.Type == AssertRowCount, assertion.Type == AssertMinRows:
			err = assertRowCount(actx.Ctx, actx.Store, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertFinalState checks that exactly one row matches and holds the
// expected values (subset semantics).
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	rows, columns, err := queryRows(ctx, st, "SELECT *", assertion)
	if err != nil {
		return err
	}
	defer rows.Close()

	whereDesc := formatWhereClause(assertion.Where)
	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	// A second match makes the assertion ambiguous
	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q to exist", key),
				Actual:   fmt.Sprintf("column %q not present in %s columns: %v", key, assertion.Table, columns),
			}
		}

		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s.%s = %v where %s", assertion.Table, key, expectedValue, whereDesc),
				Actual:   fmt.Sprintf("%s.%s = %v", assertion.Table, key, actualValue),
			}
		}
	}

	return nil
}

// assertRowCount checks the number of matching rows, exactly for
// row_count and as a lower bound for min_rows.
func assertRowCount(ctx context.Context, st *store.Store, assertion Assertion) error {
	rows, _, err := queryRows(ctx, st, "SELECT COUNT(*)", assertion)
	if err != nil {
		return err
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	whereDesc := formatWhereClause(assertion.Where)
	if assertion.Type == AssertMinRows {
		if count < assertion.Count {
			return &AssertionError{
				Type:     AssertMinRows,
				Expected: fmt.Sprintf("at least %d rows in %s where %s", assertion.Count, assertion.Table, whereDesc),
				Actual:   fmt.Sprintf("%d rows", count),
			}
		}
		return nil
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s where %s", assertion.Count, assertion.Table, whereDesc),
			Actual:   fmt.Sprintf("%d rows", count),
		}
	}
	return nil
}

// queryRows runs selection against the assertion's table and filters.
//
// Table and column names are validated against a whitelist pattern since
// identifiers cannot be bound as parameters.
func queryRows(ctx context.Context, st *store.Store, selection string, assertion Assertion) (*sql.Rows, []string, error) {
	if !validIdentifier.MatchString(assertion.Table) {
		return nil, nil, fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf("%s FROM %s", selection, assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return nil, nil, &AssertionError{
			Type:     assertion.Type,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("get columns: %w", err)
	}
	return rows, columns, nil
}

// buildWhereClause constructs a parameterized WHERE clause.
// Keys are sorted for determinism.
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML value to a SQL parameter. Flags are stored
// as integers.
func toSQLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case string, int, int64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// stateValuesEqual compares a YAML value with a scanned column.
// SQLite returns integers as int64 and stores flags as 0/1.
func stateValuesEqual(expected, actual interface{}) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	switch exp := expected.(type) {
	case string:
		switch act := actual.(type) {
		case string:
			return exp == act
		case []byte:
			return exp == string(act)
		}
		return false
	case int:
		if actualInt, ok := actual.(int64); ok {
			return int64(exp) == actualInt
		}
		return false
	case int64:
		if actualInt, ok := actual.(int64); ok {
			return exp == actualInt
		}
		return false
	case bool:
		if actualInt, ok := actual.(int64); ok {
			return exp == (actualInt != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}
