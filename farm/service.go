// Package farm keeps crops, tasks and expenses in a farmstore database and
// implements the handlers and queries over them.
//
// A Service is the single application context: it owns the identifier
// counter and the three collections, and every handler runs as one
// transaction against them. The host must admit one handler call at a time;
// nothing in this package takes locks of its own.
package farm

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/smartfarm/farmstore"
)

// Region tags are part of the on-disk layout and must never change.
const (
	IDsRegion      farmstore.RegionTag = 0
	CropsRegion    farmstore.RegionTag = 1
	TasksRegion    farmstore.RegionTag = 2
	ExpensesRegion farmstore.RegionTag = 3

	// MaxRecordSize bounds the encoded size of every crop, task and expense.
	// Names and descriptions must be kept short enough to fit.
	MaxRecordSize = 1024
)

type Schema struct {
	*farmstore.Schema
	IDs      *farmstore.Counter
	Crops    *farmstore.Store[Crop]
	Tasks    *farmstore.Store[Task]
	Expenses *farmstore.Store[Expense]
}

func NewSchema() *Schema {
	scm := farmstore.NewSchema()
	return &Schema{
		Schema:   scm,
		IDs:      farmstore.AddCounter(scm, scm.Region(IDsRegion, "ids")),
		Crops:    farmstore.AddStore[Crop](scm, scm.Region(CropsRegion, "crops"), MaxRecordSize),
		Tasks:    farmstore.AddStore[Task](scm, scm.Region(TasksRegion, "tasks"), MaxRecordSize),
		Expenses: farmstore.AddStore[Expense](scm, scm.Region(ExpensesRegion, "expenses"), MaxRecordSize),
	}
}

// Clock returns the current time in nanoseconds since the Unix epoch.
type Clock func() uint64

func SystemClock() uint64 {
	return uint64(time.Now().UnixNano())
}

type Options struct {
	Clock  Clock
	Logger *slog.Logger

	// LegacyMonthWindow makes MonthlyExpenseReport use the placeholder
	// year*10000 + month*100 + day boundaries instead of calendar months.
	LegacyMonthWindow bool
}

type Service struct {
	db     *farmstore.DB
	scm    *Schema
	now    Clock
	logger *slog.Logger

	legacyMonthWindow bool
	ids               idAllocator
}

// idAllocator hands out record identifiers inside a write transaction.
// *farmstore.Counter is the one used by New.
type idAllocator interface {
	Next(tx *farmstore.Tx) (uint64, error)
}

// New binds a Service to db, which must have been opened with scm.
func New(db *farmstore.DB, scm *Schema, opt Options) *Service {
	if db.Schema() != scm.Schema {
		panic("farm.New: db was opened with a different schema")
	}
	if opt.Clock == nil {
		opt.Clock = SystemClock
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Service{
		db:                db,
		scm:               scm,
		now:               opt.Clock,
		logger:            opt.Logger,
		legacyMonthWindow: opt.LegacyMonthWindow,
		ids:               scm.IDs,
	}
}

// Open opens the database file at path and returns a Service over it.
func Open(path string, dbOpt farmstore.Options, opt Options) (*Service, error) {
	scm := NewSchema()
	db, err := farmstore.Open(path, scm.Schema, dbOpt)
	if err != nil {
		return nil, fmt.Errorf("farm: %w", err)
	}
	return New(db, scm, opt), nil
}

func (s *Service) DB() *farmstore.DB {
	return s.db
}

func (s *Service) Schema() *Schema {
	return s.scm
}

func (s *Service) Close() error {
	return s.db.Close()
}

// Check decodes every stored record and returns the problems found.
func (s *Service) Check() ([]error, error) {
	var problems []error
	err := s.db.View(func(tx *farmstore.Tx) error {
		problems = tx.Verify()
		return nil
	})
	return problems, err
}

func (s *Service) view(f func(tx *farmstore.Tx) error) error {
	return s.db.View(f)
}

func (s *Service) update(f func(tx *farmstore.Tx) error) error {
	return s.db.Update(f)
}

func get[R any](s *Service, st *farmstore.Store[R], kind string, id uint64) (*R, error) {
	var row *R
	err := s.view(func(tx *farmstore.Tx) error {
		var ok bool
		row, ok = st.Get(tx, id)
		if !ok {
			return notFoundf("%s with id=%d not found.", kind, id)
		}
		return nil
	})
	return row, err
}

func list[R any](s *Service, st *farmstore.Store[R], plural string) ([]*R, error) {
	var rows []*R
	err := s.view(func(tx *farmstore.Tx) error {
		rows = st.Rows(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFoundf("No %s found.", plural)
	}
	return rows, nil
}

// create allocates a fresh id and stores the record built for it. If
// anything fails, neither the id nor the record is persisted.
func create[R any](s *Service, st *farmstore.Store[R], build func(id, now uint64) *R) (*R, error) {
	var row *R
	err := s.update(func(tx *farmstore.Tx) error {
		id, err := s.ids.Next(tx)
		if err != nil {
			return err
		}
		row = build(id, s.now())
		st.Put(tx, id, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// modify loads the record under id, applies f and stores the result.
func modify[R any](s *Service, st *farmstore.Store[R], kind string, id uint64, f func(row *R)) (*R, error) {
	var row *R
	err := s.update(func(tx *farmstore.Tx) error {
		var ok bool
		row, ok = st.Get(tx, id)
		if !ok {
			return notFoundf("%s with id=%d not found.", kind, id)
		}
		f(row)
		st.Put(tx, id, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func remove[R any](s *Service, st *farmstore.Store[R], kind string, id uint64) (*R, error) {
	var row *R
	err := s.update(func(tx *farmstore.Tx) error {
		var ok bool
		row, ok = st.Remove(tx, id)
		if !ok {
			return notFoundf("%s with id=%d not found.", kind, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}
