package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v9"

	"github.com/roach88/fractalreg/internal/grant"
)

const grantsTableName = "grants"

func indexTableName(name IndexName) string {
	return "grant_ids_by_" + string(name)
}

type sqliteTx struct {
	tx       *sql.Tx
	readOnly bool
}

func (t *sqliteTx) Grants() PrimaryTable {
	return &sqlitePrimary{t: t}
}

func (t *sqliteTx) Index(name IndexName) IndexTable {
	if !validIndex(name) {
		return unknownIndex{name: name}
	}
	return &sqliteIndex{t: t, table: indexTableName(name)}
}

func (t *sqliteTx) exec(ctx context.Context, ds interface {
	ToSQL() (string, []any, error)
}) (sql.Result, error) {
	if t.readOnly {
		return nil, ErrReadOnly
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return t.tx.ExecContext(ctx, query, args...)
}

type sqlitePrimary struct {
	t *sqliteTx
}

func (p *sqlitePrimary) Get(ctx context.Context, id string) (grant.Grant, bool, error) {
	query, args, err := dialect.From(grantsTableName).Prepared(true).
		Select("owner", "grantee", "data_id", "locked_until").
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return grant.Grant{}, false, fmt.Errorf("get grant: %w", err)
	}

	g, err := scanGrant(p.t.tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return grant.Grant{}, false, nil
	}
	if err != nil {
		return grant.Grant{}, false, fmt.Errorf("get grant %s: %w", id, err)
	}
	return g, true, nil
}

func (p *sqlitePrimary) Put(ctx context.Context, id string, g grant.Grant) error {
	_, err := p.t.exec(ctx, dialect.Insert(grantsTableName).Prepared(true).
		Rows(goqu.Record{
			"id":           id,
			"owner":        g.Owner.String(),
			"grantee":      g.Grantee.String(),
			"data_id":      g.DataID,
			"locked_until": strconv.FormatUint(g.LockedUntil, 10),
		}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"owner":        goqu.I("EXCLUDED.owner"),
			"grantee":      goqu.I("EXCLUDED.grantee"),
			"data_id":      goqu.I("EXCLUDED.data_id"),
			"locked_until": goqu.I("EXCLUDED.locked_until"),
		})))
	if err != nil {
		return fmt.Errorf("put grant %s: %w", id, err)
	}
	return nil
}

func (p *sqlitePrimary) Remove(ctx context.Context, id string) error {
	_, err := p.t.exec(ctx, dialect.Delete(grantsTableName).Prepared(true).
		Where(goqu.C("id").Eq(id)))
	if err != nil {
		return fmt.Errorf("remove grant %s: %w", id, err)
	}
	return nil
}

func (p *sqlitePrimary) Scan(ctx context.Context, fn func(id string, g grant.Grant) error) error {
	query, args, err := dialect.From(grantsTableName).Prepared(true).
		Select("id", "owner", "grantee", "data_id", "locked_until").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("scan grants: %w", err)
	}

	rows, err := p.t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("scan grants: %w", err)
	}
	defer rows.Close()

	type record struct {
		id string
		g  grant.Grant
	}
	var records []record
	for rows.Next() {
		var id, owner, grantee, dataID, lockedUntil string
		if err := rows.Scan(&id, &owner, &grantee, &dataID, &lockedUntil); err != nil {
			return fmt.Errorf("scan grants: %w", err)
		}
		g, err := decodeGrant(owner, grantee, dataID, lockedUntil)
		if err != nil {
			return fmt.Errorf("scan grant %s: %w", id, err)
		}
		records = append(records, record{id: id, g: g})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate grants: %w", err)
	}

	// fn may issue further queries; the single connection must be free.
	for _, r := range records {
		if err := fn(r.id, r.g); err != nil {
			return err
		}
	}
	return nil
}

func scanGrant(row *sql.Row) (grant.Grant, error) {
	var owner, grantee, dataID, lockedUntil string
	if err := row.Scan(&owner, &grantee, &dataID, &lockedUntil); err != nil {
		return grant.Grant{}, err
	}
	return decodeGrant(owner, grantee, dataID, lockedUntil)
}

func decodeGrant(owner, grantee, dataID, lockedUntil string) (grant.Grant, error) {
	lu, err := strconv.ParseUint(lockedUntil, 10, 64)
	if err != nil {
		return grant.Grant{}, fmt.Errorf("decode locked_until: %w", err)
	}
	return grant.Grant{
		Owner:       grant.AccountID(owner),
		Grantee:     grant.PublicKey(grantee),
		DataID:      dataID,
		LockedUntil: lu,
	}, nil
}

type sqliteIndex struct {
	t     *sqliteTx
	table string
}

func (ix *sqliteIndex) List(ctx context.Context, key string) ([]string, error) {
	query, args, err := dialect.From(ix.table).Prepared(true).
		Select("grant_id").
		Where(goqu.C("lookup_key").Eq(key)).
		Order(goqu.C("pos").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ix.table, err)
	}

	rows, err := ix.t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ix.table, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list %s: %w", ix.table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", ix.table, err)
	}
	return ids, nil
}

func (ix *sqliteIndex) Append(ctx context.Context, key, id string) error {
	res, err := ix.t.exec(ctx, dialect.Insert(ix.table).Prepared(true).
		Rows(goqu.Record{"lookup_key": key, "grant_id": id}).
		OnConflict(goqu.DoNothing()))
	if err != nil {
		return fmt.Errorf("append %s[%s]: %w", ix.table, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append %s[%s]: rows affected: %w", ix.table, key, err)
	}
	if n == 0 {
		return fmt.Errorf("append %s[%s]: %s already listed: %w", ix.table, key, id, ErrIndexCorrupt)
	}
	return nil
}

func (ix *sqliteIndex) Remove(ctx context.Context, key, id string) error {
	res, err := ix.t.exec(ctx, dialect.Delete(ix.table).Prepared(true).
		Where(goqu.C("lookup_key").Eq(key), goqu.C("grant_id").Eq(id)))
	if err != nil {
		return fmt.Errorf("remove %s[%s]: %w", ix.table, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove %s[%s]: rows affected: %w", ix.table, key, err)
	}
	if n == 0 {
		return fmt.Errorf("remove %s[%s]: %s not listed: %w", ix.table, key, id, ErrIndexCorrupt)
	}
	return nil
}

func (ix *sqliteIndex) Scan(ctx context.Context, fn func(key string, ids []string) error) error {
	query, args, err := dialect.From(ix.table).Prepared(true).
		Select("lookup_key", "grant_id").
		Order(goqu.C("lookup_key").Asc(), goqu.C("pos").Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("scan %s: %w", ix.table, err)
	}

	rows, err := ix.t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("scan %s: %w", ix.table, err)
	}
	defer rows.Close()

	var keys []string
	lists := map[string][]string{}
	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return fmt.Errorf("scan %s: %w", ix.table, err)
		}
		if _, ok := lists[key]; !ok {
			keys = append(keys, key)
		}
		lists[key] = append(lists[key], id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", ix.table, err)
	}

	for _, key := range keys {
		if err := fn(key, lists[key]); err != nil {
			return err
		}
	}
	return nil
}

type unknownIndex struct {
	name IndexName
}

func (u unknownIndex) err() error {
	return fmt.Errorf("%w: %q", ErrUnknownIndex, u.name)
}

func (u unknownIndex) List(context.Context, string) ([]string, error) { return nil, u.err() }
func (u unknownIndex) Append(context.Context, string, string) error   { return u.err() }
func (u unknownIndex) Remove(context.Context, string, string) error   { return u.err() }
func (u unknownIndex) Scan(context.Context, func(string, []string) error) error {
	return u.err()
}
