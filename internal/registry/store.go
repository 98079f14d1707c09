// Package registry persists classification results and encoded descriptors
// in a local SQLite database. The registry keeps one current row per command;
// re-registering a command whose documentation checksum changed supersedes
// the previous row while keeping it for history queries.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// Schema for the descriptor registry.
const schema = `
CREATE TABLE IF NOT EXISTS descriptors (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    command         TEXT NOT NULL,
    risk_level      INTEGER NOT NULL,
    privilege_level INTEGER NOT NULL,
    risk_score      REAL NOT NULL,
    flags           INTEGER NOT NULL,
    doc_checksum    INTEGER NOT NULL,
    descriptor      BLOB NOT NULL,
    run_id          TEXT NOT NULL,
    registered_ns   INTEGER NOT NULL,
    superseded      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_descriptors_command ON descriptors(command, superseded);
CREATE INDEX IF NOT EXISTS idx_descriptors_checksum ON descriptors(doc_checksum);
`

// ErrNotFound is returned when no current descriptor exists for a command.
var ErrNotFound = errors.New("no descriptor registered for command")

// Entry is one registered descriptor row.
type Entry struct {
	ID             int64
	Command        string
	RiskLevel      captypes.RiskLevel
	PrivilegeLevel captypes.PrivilegeLevel
	RiskScore      float64
	Flags          captypes.CapabilityFlags
	DocChecksum    uint64
	Descriptor     []byte
	RunID          string
	RegisteredAt   time.Time
	Superseded     bool
}

// Store is the SQLite-backed descriptor registry.
type Store struct {
	db *sql.DB
}

// Open opens or creates the registry database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply registry schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Register stores a classification result and its encoded descriptor. When a
// current row exists for the same command with a different documentation
// checksum, that row is marked superseded. Re-registering with an unchanged
// checksum replaces the stored descriptor in place.
func (s *Store) Register(result captypes.ClassificationResult, descriptor []byte, runID string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentID int64
	var currentChecksum uint64
	err = tx.QueryRow(`
		SELECT id, doc_checksum FROM descriptors
		WHERE command = ? AND superseded = 0`, result.Command,
	).Scan(&currentID, &currentChecksum)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first registration for this command
	case err != nil:
		return 0, fmt.Errorf("query current descriptor: %w", err)
	case currentChecksum == result.DocChecksum:
		if _, err := tx.Exec(`
			UPDATE descriptors
			SET risk_level = ?, privilege_level = ?, risk_score = ?, flags = ?, descriptor = ?, run_id = ?, registered_ns = ?
			WHERE id = ?`,
			int(result.RiskLevel), int(result.PrivilegeLevel), result.RiskScore,
			int64(result.Flags), descriptor, runID, time.Now().UnixNano(), currentID,
		); err != nil {
			return 0, fmt.Errorf("update descriptor: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("commit transaction: %w", err)
		}
		return currentID, nil
	default:
		if _, err := tx.Exec(`UPDATE descriptors SET superseded = 1 WHERE id = ?`, currentID); err != nil {
			return 0, fmt.Errorf("supersede descriptor: %w", err)
		}
	}

	res, err := tx.Exec(`
		INSERT INTO descriptors (command, risk_level, privilege_level, risk_score, flags, doc_checksum, descriptor, run_id, registered_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Command, int(result.RiskLevel), int(result.PrivilegeLevel), result.RiskScore,
		int64(result.Flags), int64(result.DocChecksum), descriptor, runID, time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert descriptor: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

// Current retrieves the current descriptor for a command.
func (s *Store) Current(command string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT id, command, risk_level, privilege_level, risk_score, flags, doc_checksum, descriptor, run_id, registered_ns, superseded
		FROM descriptors
		WHERE command = ? AND superseded = 0`, command)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, command)
		}
		return nil, fmt.Errorf("get current descriptor: %w", err)
	}
	return e, nil
}

// History retrieves all rows for a command, newest first, including
// superseded ones.
func (s *Store) History(command string) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, command, risk_level, privilege_level, risk_score, flags, doc_checksum, descriptor, run_id, registered_ns, superseded
		FROM descriptors
		WHERE command = ?
		ORDER BY registered_ns DESC`, command)
	if err != nil {
		return nil, fmt.Errorf("query descriptor history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan descriptor row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descriptor rows: %w", err)
	}
	return entries, nil
}

// Commands lists all commands with a current descriptor, sorted by name.
func (s *Store) Commands() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT command FROM descriptors
		WHERE superseded = 0
		ORDER BY command ASC`)
	if err != nil {
		return nil, fmt.Errorf("query registered commands: %w", err)
	}
	defer rows.Close()

	var commands []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan command row: %w", err)
		}
		commands = append(commands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate command rows: %w", err)
	}
	return commands, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var riskLevel, privilegeLevel int
	var flags, checksum, registeredNs int64
	var superseded int

	if err := row.Scan(&e.ID, &e.Command, &riskLevel, &privilegeLevel, &e.RiskScore,
		&flags, &checksum, &e.Descriptor, &e.RunID, &registeredNs, &superseded); err != nil {
		return nil, err
	}

	e.RiskLevel = captypes.RiskLevel(riskLevel)
	e.PrivilegeLevel = captypes.PrivilegeLevel(privilegeLevel)
	e.Flags = captypes.CapabilityFlags(flags)
	e.DocChecksum = uint64(checksum)
	e.RegisteredAt = time.Unix(0, registeredNs)
	e.Superseded = superseded != 0
	return &e, nil
}
