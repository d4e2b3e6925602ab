package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sharmaronit/mindspend-labs/internal/common"
)

// Query narrows a table operation. Filters are equality-only; anything more
// elaborate belongs server-side behind a view.
type Query struct {
	// Filters maps column name to required value.
	Filters map[string]string
	// OrderBy names the sort column; Descending flips the direction.
	OrderBy    string
	Descending bool
	// Limit and Offset page the result; zero means unset.
	Limit  int
	Offset int
}

// Eq is shorthand for a single-column equality query.
func Eq(column, value string) Query {
	return Query{Filters: map[string]string{column: value}}
}

// And returns q with one more equality filter.
func (q Query) And(column, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[column] = value
	q.Filters = filters
	return q
}

// WithOrder returns q sorted by column.
func (q Query) WithOrder(column string, descending bool) Query {
	q.OrderBy = column
	q.Descending = descending
	return q
}

// WithPage returns q with limit/offset applied.
func (q Query) WithPage(limit, offset int) Query {
	q.Limit = limit
	q.Offset = offset
	return q
}

func (q Query) encode() string {
	v := url.Values{}
	for col, val := range q.Filters {
		v.Set(col, "eq."+val)
	}
	if q.OrderBy != "" {
		dir := ".asc"
		if q.Descending {
			dir = ".desc"
		}
		v.Set("order", q.OrderBy+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *HTTPClient) tableURL(table string, q Query) string {
	return c.serviceURL + "/rest/v1/" + url.PathEscape(table) + q.encode()
}

func (c *HTTPClient) requireAuth() error {
	access, _ := c.tokens()
	if access == "" {
		return common.ErrNotAuthenticated
	}
	return nil
}

// Select reads matching rows into out (a pointer to a slice or struct).
func (c *HTTPClient) Select(ctx context.Context, table string, q Query, out any) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	err := c.do(ctx, call{
		op:          "select_" + table,
		method:      "GET",
		url:         c.tableURL(table, q),
		authed:      true,
		refreshable: true,
	}, out)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

// Insert writes row and decodes the stored representation into out when
// out is non-nil.
func (c *HTTPClient) Insert(ctx context.Context, table string, row any, out any) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	err := c.do(ctx, call{
		op:          "insert_" + table,
		method:      "POST",
		url:         c.tableURL(table, Query{}),
		body:        row,
		authed:      true,
		refreshable: true,
		prefer:      "return=representation",
	}, out)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update applies patch to matching rows and decodes the result into out
// when out is non-nil.
func (c *HTTPClient) Update(ctx context.Context, table string, q Query, patch any, out any) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	err := c.do(ctx, call{
		op:          "update_" + table,
		method:      "PATCH",
		url:         c.tableURL(table, q),
		body:        patch,
		authed:      true,
		refreshable: true,
		prefer:      "return=representation",
	}, out)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// DeleteRows removes matching rows.
func (c *HTTPClient) DeleteRows(ctx context.Context, table string, q Query) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	err := c.do(ctx, call{
		op:          "delete_" + table,
		method:      "DELETE",
		url:         c.tableURL(table, q),
		authed:      true,
		refreshable: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}
