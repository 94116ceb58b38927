package store

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/sim"
	"github.com/sirupsen/logrus"
)

const resultPrefix = "result"

// BadgerStore implements the Store interface on a badger database.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens the database at path, creating it if needed. logger
// receives badger's own output and may be nil.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	if logger == nil {
		l := logrus.New()
		l.Level = logrus.WarnLevel
		logger = logrus.NewEntry(l)
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithLogger(logger.WithField("prefix", "badger"))

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

func resultKey(runID string) []byte {
	return []byte(fmt.Sprintf("%s_%s", resultPrefix, runID))
}

// Put implements the Store interface.
func (s *BadgerStore) Put(result *sim.Result) error {
	if result.RunID == "" {
		return fmt.Errorf("result has no run id")
	}

	val, err := marshalResult(result)
	if err != nil {
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	//insert [result_runID] => [result json]
	if err := tx.Set(resultKey(result.RunID), val); err != nil {
		return err
	}

	return tx.Commit()
}

// Get implements the Store interface.
func (s *BadgerStore) Get(runID string) (*sim.Result, error) {
	var resultBytes []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(runID))
		if err != nil {
			return err
		}
		resultBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, mapError(err, "Result", runID)
	}

	return unmarshalResult(resultBytes)
}

// List implements the Store interface.
func (s *BadgerStore) List() ([]*sim.Result, error) {
	res := []*sim.Result{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(resultPrefix + "_")

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			r, err := unmarshalResult(val)
			if err != nil {
				return err
			}
			res = append(res, r)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sortResults(res)
	return res, nil
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath implements the Store interface.
func (s *BadgerStore) StorePath() string {
	return s.path
}

func mapError(err error, name, key string) error {
	if err == badger.ErrKeyNotFound {
		return cm.NewStoreErr(name, cm.KeyNotFound, key)
	}
	return err
}
