// Package trajectory persists simulation frames to a SQLite database, one
// row per system per reported step, keyed by a run id.
package trajectory

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Radical-AI/atomsim/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	note TEXT
);
CREATE TABLE IF NOT EXISTS frames (
	run_id TEXT NOT NULL REFERENCES runs(id),
	step INTEGER NOT NULL,
	system_idx INTEGER NOT NULL,
	n_atoms INTEGER NOT NULL,
	energy REAL,
	positions BLOB NOT NULL,
	cell BLOB NOT NULL,
	PRIMARY KEY (run_id, step, system_idx)
);
`

// Writer appends frames for a single run. It is not safe for concurrent
// use.
type Writer struct {
	db    *sql.DB
	runID string
}

// Open creates or opens the database at path and registers a fresh run.
func Open(path, note string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("trajectory: path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("trajectory: create tables: %w", err)
	}
	runID := uuid.NewString()
	_, err = db.Exec(`INSERT INTO runs (id, created_at, note) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), note)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("trajectory: register run: %w", err)
	}
	return &Writer{db: db, runID: runID}, nil
}

// RunID returns the identifier frames are written under.
func (w *Writer) RunID() string { return w.runID }

// Report writes one frame per system in s. The indices give each system's
// position in the caller's original collection.
func (w *Writer) Report(step int, indices []int, s *state.SimState) error {
	counts := s.AtomCounts()
	if len(counts) != len(indices) {
		return fmt.Errorf("trajectory: %d systems in batch but %d indices", len(counts), len(indices))
	}
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	atomOff := 0
	for pos, og := range indices {
		n := counts[pos]
		positions, err := json.Marshal(s.Positions[atomOff*3 : (atomOff+n)*3])
		if err != nil {
			tx.Rollback()
			return err
		}
		cell, err := json.Marshal(s.Cell[pos*9 : (pos+1)*9])
		if err != nil {
			tx.Rollback()
			return err
		}
		var energy sql.NullFloat64
		if s.Energies != nil {
			energy = sql.NullFloat64{Float64: s.Energies[pos], Valid: true}
		}
		_, err = tx.Exec(`
			INSERT INTO frames (run_id, step, system_idx, n_atoms, energy, positions, cell)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, step, system_idx) DO UPDATE SET
				n_atoms = excluded.n_atoms,
				energy = excluded.energy,
				positions = excluded.positions,
				cell = excluded.cell
		`, w.runID, step, og, n, energy, positions, cell)
		if err != nil {
			tx.Rollback()
			return err
		}
		atomOff += n
	}
	return tx.Commit()
}

// Energies returns the recorded energy series for one system, in step
// order.
func (w *Writer) Energies(systemIdx int) (steps []int, energies []float64, err error) {
	rows, err := w.db.Query(`
		SELECT step, energy FROM frames
		WHERE run_id = ? AND system_idx = ? AND energy IS NOT NULL
		ORDER BY step
	`, w.runID, systemIdx)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var step int
		var energy float64
		if err := rows.Scan(&step, &energy); err != nil {
			return nil, nil, err
		}
		steps = append(steps, step)
		energies = append(energies, energy)
	}
	return steps, energies, rows.Err()
}

// Close releases the underlying database handle.
func (w *Writer) Close() error { return w.db.Close() }
