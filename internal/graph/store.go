package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same store
// methods run standalone or inside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// identPattern restricts labels and property keys to plain identifiers.
// Labels cannot be passed as cypher parameters, so they are validated
// instead; all values go through the parameter map.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store executes idempotent graph mutations against a Postgres database
// with the Apache AGE extension loaded. Every cypher statement is executed
// with its literal values passed separately as an agtype parameter map —
// values are never interpolated into the query text.
type Store struct {
	pool  *pgxpool.Pool
	db    querier
	graph string
}

// NewPool opens a pgx pool whose connections are prepared for AGE use.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, "LOAD 'age'"); err != nil {
			return err
		}
		_, err := conn.Exec(ctx, `SET search_path = ag_catalog, "$user", public`)
		return err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// NewStore creates a Store addressing the named graph.
func NewStore(pool *pgxpool.Pool, graphName string) *Store {
	return &Store{pool: pool, db: pool, graph: graphName}
}

// EnsureGraph creates the graph if it does not exist yet.
func (s *Store) EnsureGraph(ctx context.Context) error {
	var count int
	row := s.pool.QueryRow(ctx, "SELECT count(*) FROM ag_catalog.ag_graph WHERE name = $1", s.graph)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("checking graph %s: %w", s.graph, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, "SELECT ag_catalog.create_graph($1)", s.graph); err != nil {
		return fmt.Errorf("creating graph %s: %w", s.graph, err)
	}
	return nil
}

// InTx runs fn with a store bound to a single transaction. All mutations
// issued through that store commit atomically; any error rolls the whole
// batch back.
func (s *Store) InTx(ctx context.Context, fn func(*Store) error) error {
	if s.pool == nil {
		return fmt.Errorf("store is already transaction-bound")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txStore := &Store{db: tx, graph: s.graph}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// exec runs a cypher statement returning a single agtype column, with
// params marshaled as the cypher parameter map.
func (s *Store) exec(ctx context.Context, query string, params map[string]any) (pgx.Rows, error) {
	stmt := fmt.Sprintf(
		"SELECT * FROM ag_catalog.cypher('%s', $q$%s$q$, $1) AS (result ag_catalog.agtype)",
		s.graph, query,
	)

	arg, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling cypher params: %w", err)
	}
	if params == nil {
		arg = []byte("{}")
	}

	rows, err := s.db.Query(ctx, stmt, string(arg))
	if err != nil {
		return nil, fmt.Errorf("cypher execution failed: %w", err)
	}
	return rows, nil
}

// mutate runs a cypher statement and drains the result rows.
func (s *Store) mutate(ctx context.Context, query string, params map[string]any) error {
	rows, err := s.exec(ctx, query, params)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// scanCount runs a cypher statement expected to return a single integer.
func (s *Store) scanCount(ctx context.Context, query string, params map[string]any) (int64, error) {
	rows, err := s.exec(ctx, query, params)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, fmt.Errorf("scanning count: %w", err)
		}
		count, err = parseAgtypeInt(raw)
		if err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

// parseAgtypeInt parses an agtype scalar as an integer. A query returning
// zero rows is reported as zero by callers, never as an error.
func parseAgtypeInt(raw string) (int64, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), `"`)
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected agtype count %q: %w", raw, err)
	}
	return n, nil
}

func validIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid graph identifier %q", name)
	}
	return nil
}

// propPattern builds a cypher property-map fragment like
// "{name: $key_name, state: $key_state}" with each value bound through the
// parameter map under the given prefix. Keys are emitted in sorted order so
// generated statements are stable.
func propPattern(prefix string, props map[string]any, params map[string]any) (string, error) {
	if len(props) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := validIdent(k); err != nil {
			return "", err
		}
		param := prefix + "_" + k
		parts = append(parts, fmt.Sprintf("%s: $%s", k, param))
		params[param] = props[k]
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// setClause builds "SET n.a = $set_a, n.b = $set_b" fragments.
func setClause(alias string, updates map[string]any, params map[string]any) (string, error) {
	if len(updates) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := validIdent(k); err != nil {
			return "", err
		}
		param := "set_" + k
		parts = append(parts, fmt.Sprintf("%s.%s = $%s", alias, k, param))
		params[param] = updates[k]
	}
	return "SET " + strings.Join(parts, ", "), nil
}

// UpsertNode matches-or-creates a node by its natural key and overwrites the
// listed properties. Safe to call repeatedly with the same key: identity is
// stable, properties are last-write-wins.
func (s *Store) UpsertNode(ctx context.Context, label string, key, updates map[string]any) error {
	if err := validIdent(label); err != nil {
		return err
	}

	params := make(map[string]any)
	keyPattern, err := propPattern("key", key, params)
	if err != nil {
		return err
	}
	set, err := setClause("n", updates, params)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("MERGE (n:%s %s)\n%s\nRETURN n", label, keyPattern, set)
	if err := s.mutate(ctx, query, params); err != nil {
		return fmt.Errorf("upserting %s node: %w", label, err)
	}
	return nil
}

// CreateNode unconditionally creates a node. Used for immutable facts that
// are never updated after creation.
func (s *Store) CreateNode(ctx context.Context, label string, props map[string]any) error {
	if err := validIdent(label); err != nil {
		return err
	}

	params := make(map[string]any)
	pattern, err := propPattern("p", props, params)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("CREATE (n:%s %s)\nRETURN n", label, pattern)
	if err := s.mutate(ctx, query, params); err != nil {
		return fmt.Errorf("creating %s node: %w", label, err)
	}
	return nil
}

// MergeNode matches-or-creates a node whose identity is its full property
// set, then applies updates. Used for readings so re-ingesting the same
// timestamps does not accumulate duplicates.
func (s *Store) MergeNode(ctx context.Context, label string, key, updates map[string]any) error {
	return s.UpsertNode(ctx, label, key, updates)
}

// Link describes an edge between two nodes located by natural key.
type Link struct {
	FromLabel string
	FromKey   map[string]any
	ToLabel   string
	ToKey     map[string]any
	EdgeLabel string
	EdgeProps map[string]any

	// Symmetric also creates the mirror edge.
	Symmetric bool
	// Merge uses match-or-create for the edge instead of unconditional
	// creation, making re-runs idempotent.
	Merge bool
}

// MatchAndLink locates both endpoints by natural key and creates the edge
// (and its mirror when symmetric).
func (s *Store) MatchAndLink(ctx context.Context, link Link) error {
	if err := validIdent(link.FromLabel); err != nil {
		return err
	}
	if err := validIdent(link.ToLabel); err != nil {
		return err
	}
	if err := validIdent(link.EdgeLabel); err != nil {
		return err
	}

	params := make(map[string]any)
	fromPattern, err := propPattern("from", link.FromKey, params)
	if err != nil {
		return err
	}
	toPattern, err := propPattern("to", link.ToKey, params)
	if err != nil {
		return err
	}
	edgePattern, err := propPattern("edge", link.EdgeProps, params)
	if err != nil {
		return err
	}

	verb := "CREATE"
	if link.Merge {
		verb = "MERGE"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (a:%s %s), (b:%s %s)\n", link.FromLabel, fromPattern, link.ToLabel, toPattern)
	fmt.Fprintf(&b, "%s (a)-[r:%s %s]->(b)\n", verb, link.EdgeLabel, edgePattern)
	if link.Symmetric {
		fmt.Fprintf(&b, "%s (b)-[r2:%s %s]->(a)\n", verb, link.EdgeLabel, edgePattern)
	}
	b.WriteString("RETURN r")

	if err := s.mutate(ctx, b.String(), params); err != nil {
		return fmt.Errorf("linking %s-[%s]->%s: %w", link.FromLabel, link.EdgeLabel, link.ToLabel, err)
	}
	return nil
}

// LinkConcurrentReadings creates bidirectional CONCURRENT_WITH edges between
// every pair of label1/label2 readings for the location that share a
// timestamp, in one pass. Edges are merged, so re-running does not
// duplicate them. Returns the number of pairs linked.
func (s *Store) LinkConcurrentReadings(ctx context.Context, label1, label2, location string) (int64, error) {
	if err := validIdent(label1); err != nil {
		return 0, err
	}
	if err := validIdent(label2); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`MATCH (a:%s {location: $location}), (b:%s {location: $location})
WHERE a.timestamp = b.timestamp
MERGE (a)-[r:CONCURRENT_WITH]->(b)
MERGE (b)-[r2:CONCURRENT_WITH]->(a)
RETURN count(r)`, label1, label2)

	count, err := s.scanCount(ctx, query, map[string]any{"location": location})
	if err != nil {
		return 0, fmt.Errorf("linking concurrent %s/%s readings: %w", label1, label2, err)
	}
	return count, nil
}

// CountMatching returns the number of matches for a node pattern. The
// pattern is code-owned cypher; values bind through params.
func (s *Store) CountMatching(ctx context.Context, pattern string, params map[string]any) (int64, error) {
	query := fmt.Sprintf("MATCH %s\nRETURN count(*)", pattern)
	return s.scanCount(ctx, query, params)
}

// NodeCounts returns per-label node counts for the given labels.
func (s *Store) NodeCounts(ctx context.Context, labels ...string) (map[string]int64, error) {
	counts := make(map[string]int64, len(labels))
	for _, label := range labels {
		if err := validIdent(label); err != nil {
			return nil, err
		}
		n, err := s.CountMatching(ctx, fmt.Sprintf("(n:%s)", label), nil)
		if err != nil {
			return nil, fmt.Errorf("counting %s nodes: %w", label, err)
		}
		counts[label] = n
	}
	return counts, nil
}
