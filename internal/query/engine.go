// Package query rewrites generated queries into a paginated form and executes
// them safely against the user database.
package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dbchat/internal/apperr"
	"dbchat/internal/dao"
	"dbchat/pkg"
)

// Settings are the pagination bounds, passed in at construction so the engine
// stays testable without global fixtures.
type Settings struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Outcome is a successfully executed, paginated result.
type Outcome struct {
	Columns    []string   `json:"columnNames"`
	Rows       [][]string `json:"rows"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalCount int64      `json:"totalCount"`
}

// Paginated is a query rewritten with LIMIT/OFFSET plus the resolved bounds.
type Paginated struct {
	Query    string
	Page     int
	PageSize int
}

// TrimQuery trims whitespace and strips at most one trailing statement
// terminator. Repeated calls on its own output are no-ops.
func TrimQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return q
	}
	if q[len(q)-1] == ';' {
		q = strings.TrimSpace(q[:len(q)-1])
	}
	return q
}

// Paginate validates the page bounds and wraps the query as a subquery with
// LIMIT and OFFSET. page defaults to 0, pageSize to the configured default.
func Paginate(q string, page, pageSize *int, s Settings) (Paginated, error) {
	p := 0
	if page != nil {
		p = *page
	}
	if p < 0 {
		return Paginated{}, &apperr.BadRequest{Message: "Page number cannot be negative, page=" + strconv.Itoa(p)}
	}

	size := s.DefaultPageSize
	if pageSize != nil {
		size = *pageSize
	}
	if size > s.MaxPageSize {
		return Paginated{}, &apperr.BadRequest{Message: "Page size is greater than maximum allowed value=" + strconv.Itoa(s.MaxPageSize)}
	}

	return Paginated{
		Query:    fmt.Sprintf("SELECT * FROM (%s) AS query LIMIT %d OFFSET %d;", TrimQuery(q), size, p*size),
		Page:     p,
		PageSize: size,
	}, nil
}

// countQuery wraps the inner query so the unpaginated row count can be read.
func countQuery(q string) string {
	return fmt.Sprintf("SELECT COUNT(*) AS count from (%s) AS all_results;", TrimQuery(q))
}

type Engine struct {
	settings Settings
}

func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings}
}

// Execute runs q paginated against the user database and materializes the
// outcome. Bounds are validated before anything touches the database; a
// driver failure surfaces as DatabaseExecutionError with the driver text
// verbatim so the orchestration loop can feed it back to the model.
func (slf *Engine) Execute(ctx context.Context, d dao.DatabaseDAO, q string, page, pageSize *int) (*Outcome, error) {
	if !pkg.IsSafeSelect(TrimQuery(q)) {
		return nil, &apperr.DatabaseExecutionError{Message: "only SELECT statements can be executed, got: " + q}
	}

	paginated, err := Paginate(q, page, pageSize, slf.settings)
	if err != nil {
		return nil, err
	}

	result, err := d.Query(ctx, paginated.Query)
	if err != nil {
		return nil, err
	}

	totalCount, err := slf.totalCount(ctx, d, q)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Columns:    result.Columns,
		Rows:       result.Rows,
		Page:       paginated.Page,
		PageSize:   paginated.PageSize,
		TotalCount: totalCount,
	}, nil
}

func (slf *Engine) totalCount(ctx context.Context, d dao.DatabaseDAO, q string) (int64, error) {
	result, err := d.Query(ctx, countQuery(q))
	if err != nil {
		return 0, err
	}
	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 {
		return 0, &apperr.DatabaseExecutionError{Message: "Cannot parse total count value from query"}
	}
	count, err := strconv.ParseInt(result.Rows[0][0], 10, 64)
	if err != nil {
		return 0, &apperr.DatabaseExecutionError{Message: "Cannot parse total count value from query"}
	}
	return count, nil
}
