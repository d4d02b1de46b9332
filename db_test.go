package farmstore

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type (
	Note struct {
		ID    uint64   `msgpack:"id"`
		Title string   `msgpack:"t"`
		Body  string   `msgpack:"b"`
		Tags  []string `msgpack:"g,omitempty"`
		Seen  *uint64  `msgpack:"s,omitempty"`
	}

	Reading struct {
		ID    uint64  `msgpack:"id"`
		Value float64 `msgpack:"v"`
	}
)

var (
	basicSchema   = NewSchema()
	idsRegion     = basicSchema.Region(0, "ids")
	notesRegion   = basicSchema.Region(1, "notes")
	readingRegion = basicSchema.Region(2, "readings")
	ids           = AddCounter(basicSchema, idsRegion)
	notes         = AddStore[Note](basicSchema, notesRegion, 256)
	readings      = AddStore[Reading](basicSchema, readingRegion, 64)
)

func init() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

func TestDB(t *testing.T) {
	n1 := &Note{ID: 1, Title: "foo", Body: "first"}
	n2 := &Note{ID: 2, Title: "bar", Body: "second", Tags: []string{"x", "y"}}

	forEachBackend(t, func(t *testing.T, db *DB) {
		write(t, db, func(tx *Tx) {
			notes.Put(tx, n1.ID, n1)
			notes.Put(tx, n2.ID, n2)
		})

		read(t, db, func(tx *Tx) {
			row, ok := notes.Get(tx, 1)
			if !ok {
				t.Fatalf("Get(1) found nothing")
			}
			deepEqual(t, row, n1)
			row, _ = notes.Get(tx, 2)
			deepEqual(t, row, n2)
			isnil(t, must2(notes.Get(tx, 3)))
			deepEqual(t, notes.Rows(tx), []*Note{n1, n2})
			deepEqual(t, notes.Count(tx), 2)
			deepEqual(t, notes.Exists(tx, 2), true)
			deepEqual(t, notes.Exists(tx, 3), false)
		})

		write(t, db, func(tx *Tx) {
			row, ok := notes.Remove(tx, 1)
			if !ok {
				t.Fatalf("Remove(1) found nothing")
			}
			deepEqual(t, row, n1)
			isnil(t, must2(notes.Remove(tx, 1)))
		})

		read(t, db, func(tx *Tx) {
			isnil(t, must2(notes.Get(tx, 1)))
			deepEqual(t, notes.Exists(tx, 1), false)
			deepEqual(t, notes.Rows(tx), []*Note{n2})
		})
	})
}

func TestStore_PutReplaces(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		write(t, db, func(tx *Tx) {
			notes.Put(tx, 5, &Note{ID: 5, Title: "old"})
			notes.Put(tx, 5, &Note{ID: 5, Title: "new"})
			notes.Put(tx, 5, &Note{ID: 5, Title: "new"})
		})
		read(t, db, func(tx *Tx) {
			deepEqual(t, notes.Rows(tx), []*Note{{ID: 5, Title: "new"}})
		})
	})
}

func TestStore_AllIsOrderedAndRestartable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		write(t, db, func(tx *Tx) {
			for _, id := range []uint64{300, 2, 256, 1, 70000} {
				readings.Put(tx, id, &Reading{ID: id, Value: float64(id) / 2})
			}
		})
		read(t, db, func(tx *Tx) {
			seq := readings.All(tx)
			for pass := 0; pass < 2; pass++ {
				var got []uint64
				for id, row := range seq {
					if row.ID != id {
						t.Fatalf("row.ID = %d under key %d", row.ID, id)
					}
					got = append(got, id)
				}
				deepEqual(t, got, []uint64{1, 2, 256, 300, 70000})
			}

			var first []uint64
			for id := range seq {
				first = append(first, id)
				if len(first) == 2 {
					break
				}
			}
			deepEqual(t, first, []uint64{1, 2})
		})
	})
}

func TestStore_EmptyRegion(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		read(t, db, func(tx *Tx) {
			isempty(t, notes.Rows(tx))
			deepEqual(t, notes.Count(tx), 0)
		})
	})
}

func TestStore_RegionsAreIsolated(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		write(t, db, func(tx *Tx) {
			notes.Put(tx, 1, &Note{ID: 1, Title: "n"})
			readings.Put(tx, 1, &Reading{ID: 1, Value: 1.5})
		})
		write(t, db, func(tx *Tx) {
			readings.Remove(tx, 1)
		})
		read(t, db, func(tx *Tx) {
			row, _ := notes.Get(tx, 1)
			deepEqual(t, row, &Note{ID: 1, Title: "n"})
			isnil(t, must2(readings.Get(tx, 1)))
		})
	})
}

func TestStore_ZeroIDPanics(t *testing.T) {
	db := setup(t, basicSchema)
	err := db.Update(func(tx *Tx) error {
		notes.Put(tx, 0, &Note{Title: "zero"})
		return nil
	})
	if !IsInternal(err) {
		t.Fatalf("Put(0) err = %v, wanted *InternalError", err)
	}
}

func TestStore_OversizeRecordRollsBack(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		var issued uint64
		err := db.Update(func(tx *Tx) error {
			id := must(ids.Next(tx))
			issued = id
			notes.Put(tx, id, &Note{ID: id, Title: strings.Repeat("x", 300)})
			return nil
		})
		if !IsInternal(err) {
			t.Fatalf("oversize Put err = %v, wanted *InternalError", err)
		}
		var se *SizeError
		if !errors.As(err, &se) {
			t.Fatalf("oversize Put err = %v, wanted to wrap *SizeError", err)
		}
		if se.Max != 256 || se.Size <= 256 {
			t.Fatalf("SizeError = %+v, wanted Max=256 and Size>256", se)
		}
		if issued != 1 {
			t.Fatalf("issued = %d, wanted 1", issued)
		}

		read(t, db, func(tx *Tx) {
			isempty(t, notes.Rows(tx))
			deepEqual(t, ids.Current(tx), uint64(0))
		})
	})
}

func TestStore_ExactlyMaxSizeFits(t *testing.T) {
	db := setup(t, basicSchema)
	var title string
	for n := 0; n < 300; n++ {
		raw, err := notes.Encode(&Note{ID: 1, Title: strings.Repeat("x", n)})
		if err != nil {
			break
		}
		if len(raw) == notes.MaxSize() {
			title = strings.Repeat("x", n)
		}
	}
	if title == "" {
		t.Skip("no title length hits the bound exactly")
	}
	write(t, db, func(tx *Tx) {
		notes.Put(tx, 1, &Note{ID: 1, Title: title})
	})
}

func TestStore_CorruptedValueIsInternal(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		write(t, db, func(tx *Tx) {
			notes.Put(tx, 1, &Note{ID: 1, Title: "ok"})
		})
		write(t, db, func(tx *Tx) {
			b := tx.bucket(notesRegion)
			raw := append([]byte(nil), b.Get(appendKey(nil, 1))...)
			raw[len(raw)/2] ^= 0xFF
			tx.markWritten()
			ensure(b.Put(appendKey(nil, 1), raw))
		})

		err := db.View(func(tx *Tx) error {
			notes.Get(tx, 1)
			return nil
		})
		if !IsInternal(err) {
			t.Fatalf("Get on corrupted value err = %v, wanted *InternalError", err)
		}
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %v, wanted to wrap *DataError", err)
		}

		err = db.View(func(tx *Tx) error {
			for range notes.All(tx) {
			}
			return nil
		})
		if !IsInternal(err) {
			t.Fatalf("All on corrupted value err = %v, wanted *InternalError", err)
		}

		read(t, db, func(tx *Tx) {
			if errs := tx.Verify(); len(errs) != 1 {
				t.Fatalf("Verify() = %v, wanted exactly one error", errs)
			}
		})
	})
}

func TestStore_UpdateErrorRollsBack(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *DB) {
		boom := errors.New("boom")
		err := db.Update(func(tx *Tx) error {
			notes.Put(tx, 1, &Note{ID: 1})
			return boom
		})
		if err != boom {
			t.Fatalf("Update err = %v, wanted %v", err, boom)
		}
		read(t, db, func(tx *Tx) {
			isempty(t, notes.Rows(tx))
		})
	})
}

func TestStore_PutInViewFails(t *testing.T) {
	db := setup(t, basicSchema)
	err := db.View(func(tx *Tx) error {
		notes.Put(tx, 1, &Note{ID: 1})
		return nil
	})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Put inside View err = %v, wanted ErrReadOnly", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	n := &Note{ID: 2, Title: "kept", Tags: []string{"a"}}

	db := must(Open(path, basicSchema, Options{IsTesting: true}))
	write(t, db, func(tx *Tx) {
		deepEqual(t, must(ids.Next(tx)), uint64(1))
		deepEqual(t, must(ids.Next(tx)), uint64(2))
		notes.Put(tx, 2, n)
	})
	instance := db.InstanceID()
	if instance == "" {
		t.Fatalf("InstanceID is empty")
	}
	ensure(db.Close())

	db = must(Open(path, basicSchema, Options{IsTesting: true}))
	defer db.Close()
	deepEqual(t, db.InstanceID(), instance)
	read(t, db, func(tx *Tx) {
		row, _ := notes.Get(tx, 2)
		deepEqual(t, row, n)
		deepEqual(t, ids.Current(tx), uint64(2))
	})
	write(t, db, func(tx *Tx) {
		deepEqual(t, must(ids.Next(tx)), uint64(3))
	})
}

func TestOpen_RejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format.db")
	db := must(Open(path, basicSchema, Options{IsTesting: true}))
	write(t, db, func(tx *Tx) {
		tx.markWritten()
		ensure(tx.bucket(basicSchema.meta()).Put(metaFormatKey, []byte{99}))
	})
	ensure(db.Close())

	_, err := Open(path, basicSchema, Options{IsTesting: true})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Open err = %v, wanted ErrUnsupportedFormat", err)
	}
}

func TestStore_RejectsRecordsFromNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.db")

	v2 := NewSchema()
	readingsV2 := AddStore[Reading](v2, v2.Region(2, "readings"), 64).SetSchemaVersion(2)
	db := must(Open(path, v2, Options{IsTesting: true}))
	write(t, db, func(tx *Tx) {
		readingsV2.Put(tx, 1, &Reading{ID: 1, Value: 4.5})
	})
	read(t, db, func(tx *Tx) {
		deepEqual(t, must2(readingsV2.Get(tx, 1)), &Reading{ID: 1, Value: 4.5})
	})
	ensure(db.Close())

	v1 := NewSchema()
	readingsV1 := AddStore[Reading](v1, v1.Region(2, "readings"), 64)
	db = must(Open(path, v1, Options{IsTesting: true}))
	defer db.Close()
	err := db.View(func(tx *Tx) error {
		readingsV1.Get(tx, 1)
		return nil
	})
	var ie *InternalError
	var de *DataError
	if !errors.As(err, &ie) || !errors.As(err, &de) {
		t.Fatalf("Get of a v2 record by a v1 store err = %v, wanted *InternalError wrapping *DataError", err)
	}
	read(t, db, func(tx *Tx) {
		deepEqual(t, len(tx.Verify()), 1)
	})
}

func TestDB_Stats(t *testing.T) {
	db := must(OpenMem(basicSchema, Options{IsTesting: true}))
	defer db.Close()
	deepEqual(t, db.Stats().Writes, uint64(1))

	write(t, db, func(tx *Tx) {
		notes.Put(tx, 1, &Note{ID: 1, Title: "a"})
	})
	ensure(db.Update(func(tx *Tx) error { return nil }))
	read(t, db, func(tx *Tx) {})
	read(t, db, func(tx *Tx) {})

	st := db.Stats()
	deepEqual(t, st.Reads, uint64(2))
	deepEqual(t, st.Writes, uint64(2))
	if st.Size <= 0 || st.Size != db.Size() {
		t.Fatalf("Stats().Size = %d, Size() = %d, wanted equal and positive", st.Size, db.Size())
	}
}

func forEachBackend(t *testing.T, f func(t *testing.T, db *DB)) {
	t.Run("bolt", func(t *testing.T) {
		f(t, setup(t, basicSchema))
	})
	t.Run("mem", func(t *testing.T) {
		db := must(OpenMem(basicSchema, Options{IsTesting: true, Verbose: testing.Verbose(), Logf: t.Logf}))
		t.Cleanup(func() { db.Close() })
		f(t, db)
	})
}

func setup(t testing.TB, schema *Schema) *DB {
	t.Helper()

	dbFile := must(os.CreateTemp(t.TempDir(), "db_test_*.db"))
	dbFile.Close()

	db := must(Open(dbFile.Name(), schema, Options{
		IsTesting: true,
		Verbose:   testing.Verbose(),
		Logf:      t.Logf,
	}))
	t.Cleanup(func() { db.Close() })
	return db
}

func read(t testing.TB, db *DB, f func(tx *Tx)) {
	t.Helper()
	err := db.View(func(tx *Tx) error {
		f(tx)
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func write(t testing.TB, db *DB, f func(tx *Tx)) {
	t.Helper()
	err := db.Update(func(tx *Tx) error {
		f(tx)
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func must2[T any](v T, _ bool) T {
	return v
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isempty[T any, S ~[]T](t testing.TB, a S) {
	if len(a) > 0 {
		t.Helper()
		t.Errorf("** got %v, wanted empty slice", a)
	}
}

func isnil[T any, P ~*T](t testing.TB, a P) {
	if a != nil {
		t.Helper()
		t.Errorf("** got &%v, wanted nil", *a)
	}
}
