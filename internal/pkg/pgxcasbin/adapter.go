// Package pgxcasbin persists casbin policies in Postgres through pgx and
// keeps enforcers on every instance in sync with LISTEN/NOTIFY.
package pgxcasbin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

const (
	defaultTableName = "casbin_rule"
	fieldCount       = 6
)

var (
	ErrRuleTooLong = errors.New("pgxcasbin: rule has more than 6 fields")
	ErrBatchExec   = errors.New("pgxcasbin: batch execution failed")
)

// Commander is the subset of pgxpool.Pool the adapter uses.
type Commander interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var (
	_ persist.Adapter      = (*Adapter)(nil)
	_ persist.BatchAdapter = (*Adapter)(nil)
)

type Adapter struct {
	db    Commander
	table string
}

type Option func(*Adapter)

func WithTableName(name string) Option {
	return func(a *Adapter) { a.table = lo.SnakeCase(name) }
}

func NewAdapter(db Commander, opts ...Option) *Adapter {
	a := &Adapter{db: db, table: defaultTableName}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var columns = strings.Join(lo.Times(fieldCount, func(i int) string { return "v" + strconv.Itoa(i) }), ", ")

func (a *Adapter) insertSQL() string {
	params := strings.Join(lo.Times(fieldCount, func(i int) string { return "$" + strconv.Itoa(i+2) }), ", ")
	return fmt.Sprintf("INSERT INTO %s (ptype, %s) VALUES ($1, %s) ON CONFLICT DO NOTHING", a.table, columns, params)
}

func (a *Adapter) deleteSQL() string {
	conds := strings.Join(lo.Times(fieldCount, func(i int) string {
		return fmt.Sprintf("v%d = $%d", i, i+2)
	}), " AND ")
	return fmt.Sprintf("DELETE FROM %s WHERE ptype = $1 AND %s", a.table, conds)
}

// row returns ptype followed by exactly six values, padded with "".
func row(ptype string, rule []string) ([]any, error) {
	if len(rule) > fieldCount {
		return nil, fmt.Errorf("%w: %d", ErrRuleTooLong, len(rule))
	}
	vals := make([]string, fieldCount)
	copy(vals, rule)
	return append([]any{ptype}, lo.ToAnySlice(vals)...), nil
}

func (a *Adapter) LoadPolicy(m model.Model) error {
	ctx := context.Background()
	rows, err := a.db.Query(ctx, fmt.Sprintf("SELECT ptype, %s FROM %s ORDER BY id", columns, a.table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		line := make([]string, fieldCount+1)
		dst := lo.Map(line, func(_ string, i int) any { return &line[i] })
		if err := rows.Scan(dst...); err != nil {
			return err
		}
		// trailing empty values are padding, not policy fields
		last := len(line)
		for last > 1 && line[last-1] == "" {
			last--
		}
		if err := persist.LoadPolicyArray(line[:last], m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SavePolicy replaces every stored rule with the rules in m.
func (a *Adapter) SavePolicy(m model.Model) error {
	ctx := context.Background()
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+a.table); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, sec := range []string{"p", "g"} {
		for ptype, ast := range m[sec] {
			for _, rule := range ast.Policy {
				args, err := row(ptype, rule)
				if err != nil {
					return err
				}
				batch.Queue(a.insertSQL(), args...)
			}
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Join(ErrBatchExec, err)
	}
	return tx.Commit(ctx)
}

func (a *Adapter) AddPolicy(_, ptype string, rule []string) error {
	return a.AddPolicies("", ptype, [][]string{rule})
}

func (a *Adapter) RemovePolicy(_, ptype string, rule []string) error {
	return a.RemovePolicies("", ptype, [][]string{rule})
}

func (a *Adapter) AddPolicies(_, ptype string, rules [][]string) error {
	return a.batch(a.insertSQL(), ptype, rules)
}

func (a *Adapter) RemovePolicies(_, ptype string, rules [][]string) error {
	return a.batch(a.deleteSQL(), ptype, rules)
}

func (a *Adapter) batch(sql, ptype string, rules [][]string) error {
	ctx := context.Background()
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, rule := range rules {
		args, err := row(ptype, rule)
		if err != nil {
			return err
		}
		b.Queue(sql, args...)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return errors.Join(ErrBatchExec, err)
	}
	return tx.Commit(ctx)
}

// RemoveFilteredPolicy deletes rules whose fields from fieldIndex on match
// fieldValues; an empty value matches anything.
func (a *Adapter) RemoveFilteredPolicy(_, ptype string, fieldIndex int, fieldValues ...string) error {
	if fieldIndex < 0 || fieldIndex+len(fieldValues) > fieldCount {
		return ErrRuleTooLong
	}

	conds := []string{"ptype = $1"}
	args := []any{ptype}
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("v%d = $%d", fieldIndex+i, len(args)))
	}

	_, err := a.db.Exec(context.Background(),
		fmt.Sprintf("DELETE FROM %s WHERE %s", a.table, strings.Join(conds, " AND ")), args...)
	return err
}
