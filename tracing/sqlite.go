package tracing

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ahblite/ahb"
)

type row struct {
	unit string
	beat int
	t    ahb.Transaction
}

// SQLiteRecorder writes transactions into the transactions table of a SQLite
// database. Rows are buffered and inserted in batches, and the buffer is
// flushed when the program exits through atexit.
type SQLiteRecorder struct {
	*sql.DB

	statement *sql.Stmt
	dbName    string
	pending   []row
	batchSize int
	closed    bool
}

// NewSQLiteRecorder creates a recorder writing to path.sqlite3. An empty path
// picks a unique name.
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	return &SQLiteRecorder{
		dbName:    path,
		batchSize: 100000,
	}
}

// WithBatchSize sets the number of rows buffered before an insert.
func (r *SQLiteRecorder) WithBatchSize(n int) *SQLiteRecorder {
	r.batchSize = n
	return r
}

// Filename returns the database file name.
func (r *SQLiteRecorder) Filename() string {
	return r.dbName + ".sqlite3"
}

// Init creates the database. It fails if the file already exists.
func (r *SQLiteRecorder) Init() error {
	if r.dbName == "" {
		r.dbName = "ahblite_trace_" + xid.New().String()
	}

	filename := r.Filename()
	if _, err := os.Stat(filename); err == nil {
		return errors.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return errors.Wrapf(err, "opening %s", filename)
	}

	r.DB = db

	_, err = r.Exec(`
		create table transactions
		(
			unit     varchar(200) not null,
			beat     integer      not null,
			htrans   varchar(8)   not null,
			write    integer      not null,
			address  varchar(18)  not null,
			size     integer      not null,
			burst    varchar(8)   not null,
			prot     integer      not null,
			wdata    text
		);
	`)
	if err != nil {
		return errors.Wrap(err, "creating the transactions table")
	}

	_, err = r.Exec(`create index transactions_unit_index on transactions (unit);`)
	if err != nil {
		return errors.Wrap(err, "creating the unit index")
	}

	r.statement, err = r.Prepare(
		`INSERT INTO transactions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing the insert statement")
	}

	fmt.Fprintf(os.Stderr, "Transactions are recorded in %s\n", filename)

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing %s: %v\n", filename, err)
		}
	})

	return nil
}

// Record buffers one transaction.
func (r *SQLiteRecorder) Record(unit string, beat int, t ahb.Transaction) {
	r.pending = append(r.pending, row{unit: unit, beat: beat, t: t})
	if len(r.pending) >= r.batchSize {
		if err := r.Flush(); err != nil {
			panic(err)
		}
	}
}

// Flush inserts the buffered transactions in a single database transaction.
func (r *SQLiteRecorder) Flush() error {
	if len(r.pending) == 0 || r.closed {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return errors.Wrap(err, "starting a transaction")
	}

	stmt := tx.Stmt(r.statement)
	for _, p := range r.pending {
		_, err = stmt.Exec(
			p.unit,
			p.beat,
			p.t.TransferType.String(),
			p.t.Write,
			fmt.Sprintf("0x%016x", p.t.Address),
			int(p.t.Bytes()),
			ahb.DecodeBurst(p.t.BurstCode).String(),
			int(p.t.Protection),
			hex.EncodeToString(p.t.WriteData),
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting beat %d of unit %s",
				p.beat, p.unit)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}

	r.pending = nil

	return nil
}

// Close flushes the buffer and closes the database.
func (r *SQLiteRecorder) Close() error {
	if r.closed || r.DB == nil {
		return nil
	}

	if err := r.Flush(); err != nil {
		return err
	}

	r.closed = true

	if err := r.statement.Close(); err != nil {
		return errors.Wrap(err, "closing the insert statement")
	}

	return r.DB.Close()
}
