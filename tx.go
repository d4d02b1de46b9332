package farmstore

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type Tx struct {
	db  *DB
	stx spaceTx

	written     bool
	afterCommit []func()
}

func (db *DB) newTx(stx spaceTx) *Tx {
	return &Tx{
		db:  db,
		stx: stx,
	}
}

func (tx *Tx) DB() *DB {
	return tx.db
}

func (tx *Tx) IsWritable() bool {
	return tx.stx.Writable()
}

// View runs f in a read-only transaction.
func (db *DB) View(f func(tx *Tx) error) error {
	stx, err := db.st.Begin(false)
	if err != nil {
		return &InternalError{Op: "begin read", Err: err}
	}
	tx := db.newTx(stx)
	defer tx.rollback()
	db.reads.Add(1)
	return safelyCall(f, tx)
}

// Update runs f in a read-write transaction. The transaction commits only if
// f returns nil; a returned error or a panic rolls every change back. Panics
// are reported as *InternalError.
//
// Update doesn't retry and doesn't batch: callers are expected to be admitted
// one at a time by their host.
func (db *DB) Update(f func(tx *Tx) error) error {
	stx, err := db.st.Begin(true)
	if err != nil {
		return &InternalError{Op: "begin write", Err: err}
	}
	tx := db.newTx(stx)
	defer tx.rollback()

	if err := safelyCall(f, tx); err != nil {
		return err
	}
	if !tx.written {
		return nil
	}
	if err := stx.Commit(); err != nil {
		return &InternalError{Op: "commit", Err: err}
	}
	db.writes.Add(1)
	db.lastSize.Store(stx.Size())
	for _, f := range tx.afterCommit {
		f()
	}
	return nil
}

func (tx *Tx) rollback() {
	// Rollback after a successful Commit is a no-op.
	err := tx.stx.Rollback()
	if err != nil {
		panic(fmt.Errorf("rollback: %w", err)) // not expected unless the file is gone
	}
}

func (tx *Tx) markWritten() {
	if !tx.stx.Writable() {
		panic(ErrReadOnly)
	}
	tx.written = true
}

// OnCommit registers f to run once the transaction has been durably committed.
func (tx *Tx) OnCommit(f func()) {
	tx.afterCommit = append(tx.afterCommit, f)
}

func (tx *Tx) bucket(r *Region) regionData {
	b := tx.stx.Region(r.buck.Raw())
	if b == nil {
		panic(regionErrf(r, 0, nil, "bucket %s missing", r.buck))
	}
	return b
}

func safelyCall(fn func(*Tx) error, tx *Tx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			ie := &InternalError{Stack: string(debug.Stack())}
			if e, ok := p.(error); ok {
				ie.Err = e
			} else {
				ie.Err = fmt.Errorf("panic: %v", p)
			}
			err = ie
		}
	}()
	return fn(tx)
}

// wrapInternal turns a storage failure into *InternalError while leaving
// errors that already are internal untouched.
func wrapInternal(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}
