package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/orrery/internal/scene"
)

const frameSchema = `
CREATE TABLE IF NOT EXISTS frames (
	frame    INTEGER PRIMARY KEY,
	elapsed  REAL,
	running  INTEGER);
CREATE TABLE IF NOT EXISTS bodies (
	frame    INTEGER,
	id       INTEGER, -- catalog index
	name     TEXT,
	x        REAL,
	y        REAL,
	z        REAL,
	rotation REAL,
	radius   REAL);
CREATE INDEX IF NOT EXISTS idx_frame ON bodies (frame, id);
`

const (
	insertFrame = `INSERT INTO frames VALUES (?, ?, ?);`
	insertBody  = `INSERT INTO bodies VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	queryFrame  = `SELECT id, name, x, y, z, rotation, radius FROM bodies WHERE frame = ? ORDER BY id ASC;`
	queryClock  = `SELECT elapsed, running FROM frames WHERE frame = ?;`
	countFrames = `SELECT COUNT(*) FROM frames;`
)

var ErrFrameNotFound = errors.New("storage: frame not found")

// FrameRow is one body in one recorded frame.
type FrameRow struct {
	ID       int
	Name     string
	X, Y, Z  float64
	Rotation float64
	Radius   float64
}

// Frame is a recorded frame read back from the database.
type Frame struct {
	Number  int
	Elapsed float64
	Running bool
	Bodies  []FrameRow
}

// FrameDB writes one row per body per frame to SQLite. SQLite allows a
// single writer, so Insert is not meant to be called concurrently.
type FrameDB struct {
	db    *sql.DB
	next  int
	frame *sql.Stmt
	body  *sql.Stmt
}

// OpenFrameDB creates filename and its tables. An existing file is an error
// so recordings are never appended to by accident.
func OpenFrameDB(filename string) (*FrameDB, error) {
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("storage: %s exists", filename)
	}
	db, err := sql.Open("sqlite3", "file:"+filename+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, err
	}
	return newFrameDB(db)
}

// OpenFrameDBReadOnly opens an existing recording for queries.
func OpenFrameDBReadOnly(filename string) (*FrameDB, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, err
	}
	return &FrameDB{db: db}, nil
}

func newFrameDB(db *sql.DB) (*FrameDB, error) {
	if _, err := db.Exec(frameSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create tables: %w", err)
	}
	f := &FrameDB{db: db}
	var err error
	if f.frame, err = db.Prepare(insertFrame); err != nil {
		db.Close()
		return nil, err
	}
	if f.body, err = db.Prepare(insertBody); err != nil {
		db.Close()
		return nil, err
	}
	return f, nil
}

// Render stores s as the next frame number.
func (f *FrameDB) Render(s scene.Snapshot) error {
	if err := f.Insert(f.next, s); err != nil {
		return err
	}
	f.next++
	return nil
}

// Insert writes s as frame n in a single transaction.
func (f *FrameDB) Insert(n int, s scene.Snapshot) error {
	if f.frame == nil {
		return fmt.Errorf("storage: frame database is read-only")
	}
	tx, err := f.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Stmt(f.frame).Exec(n, s.Elapsed, s.Running); err != nil {
		tx.Rollback()
		return fmt.Errorf("storage: insert frame %d: %w", n, err)
	}
	body := tx.Stmt(f.body)
	for i, b := range s.Bodies {
		p := b.Position
		if _, err := body.Exec(n, i, b.Body.Name, p.X(), p.Y(), p.Z(), p.Rotation, b.DisplayRadius); err != nil {
			tx.Rollback()
			return fmt.Errorf("storage: insert frame %d body %s: %w", n, b.Body.Name, err)
		}
	}
	return tx.Commit()
}

// QueryFrame reads frame n back in catalog order.
func (f *FrameDB) QueryFrame(n int) (*Frame, error) {
	fr := &Frame{Number: n}
	err := f.db.QueryRow(queryClock, n).Scan(&fr.Elapsed, &fr.Running)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrFrameNotFound, n)
	}
	if err != nil {
		return nil, err
	}

	rows, err := f.db.Query(queryFrame, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r FrameRow
		if err := rows.Scan(&r.ID, &r.Name, &r.X, &r.Y, &r.Z, &r.Rotation, &r.Radius); err != nil {
			return nil, err
		}
		fr.Bodies = append(fr.Bodies, r)
	}
	return fr, rows.Err()
}

// Count is the number of stored frames.
func (f *FrameDB) Count() (int, error) {
	var n int
	err := f.db.QueryRow(countFrames).Scan(&n)
	return n, err
}

func (f *FrameDB) Close() error {
	if f.frame != nil {
		f.frame.Close()
	}
	if f.body != nil {
		f.body.Close()
	}
	return f.db.Close()
}
