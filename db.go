package finetract

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	stateBucket = []byte("state")
	txnBucket   = []byte("txns")
	dayBucket   = []byte("days")
)

// BoltStore is the production Store: a single local bolt file with one
// bucket for scalar state and one sequence-keyed bucket per record log.
type BoltStore struct {
	db  *bolt.DB
	log zerolog.Logger
}

// OpenBoltStore opens (creating if needed) the bolt file at path.
func OpenBoltStore(path string, log zerolog.Logger) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open boltdb at %v", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{stateBucket, txnBucket, dayBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "unable to create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db, log: log}, nil
}

// Close releases the underlying bolt file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) getState(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get([]byte(key))
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, errors.Wrapf(err, "read of %q failed", key)
}

func (s *BoltStore) putState(key string, val []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put([]byte(key), val)
	})
	return errors.Wrapf(err, "write of %q failed", key)
}

func (s *BoltStore) GetFloat(key string, def float64) (float64, error) {
	v, err := s.getState(key)
	if err != nil || v == nil {
		return def, err
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return def, errors.Wrapf(err, "stored value of %q is not a float", key)
	}
	return f, nil
}

func (s *BoltStore) SetFloat(key string, val float64) error {
	return s.putState(key, []byte(formatAmount(val)))
}

func (s *BoltStore) GetInt(key string, def int) (int, error) {
	v, err := s.getState(key)
	if err != nil || v == nil {
		return def, err
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return def, errors.Wrapf(err, "stored value of %q is not an int", key)
	}
	return n, nil
}

func (s *BoltStore) SetInt(key string, val int) error {
	return s.putState(key, []byte(strconv.Itoa(val)))
}

func (s *BoltStore) GetString(key, def string) (string, error) {
	v, err := s.getState(key)
	if err != nil || v == nil {
		return def, err
	}
	return string(v), nil
}

func (s *BoltStore) SetString(key, val string) error {
	return s.putState(key, []byte(val))
}

func (s *BoltStore) GetBool(key string, def bool) (bool, error) {
	v, err := s.getState(key)
	if err != nil || v == nil {
		return def, err
	}
	b, err := strconv.ParseBool(string(v))
	if err != nil {
		return def, errors.Wrapf(err, "stored value of %q is not a bool", key)
	}
	return b, nil
}

func (s *BoltStore) SetBool(key string, val bool) error {
	return s.putState(key, []byte(strconv.FormatBool(val)))
}

func (s *BoltStore) GetStringSet(key string) (map[string]bool, error) {
	v, err := s.getState(key)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, item := range strings.Split(string(v), "\n") {
		if item != "" {
			set[item] = true
		}
	}
	return set, nil
}

func (s *BoltStore) SetStringSet(key string, set map[string]bool) error {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return s.putState(key, []byte(strings.Join(items, "\n")))
}

func (s *BoltStore) AppendTransaction(rec TransactionRecord) error {
	return s.appendLog(txnBucket, encodeTransaction(rec))
}

func (s *BoltStore) Transactions() ([]TransactionRecord, error) {
	var txns []TransactionRecord
	err := s.readLog(txnBucket, func(line string) {
		t, err := decodeTransaction(line)
		if err != nil {
			s.log.Warn().Err(err).Msg("skipping unparseable transaction record")
			return
		}
		txns = append(txns, t)
	})
	return txns, err
}

func (s *BoltStore) AppendDay(rec DailyRecord) error {
	return s.appendLog(dayBucket, encodeDay(rec))
}

func (s *BoltStore) Days() ([]DailyRecord, error) {
	var days []DailyRecord
	err := s.readLog(dayBucket, func(line string) {
		d, err := decodeDay(line)
		if err != nil {
			s.log.Warn().Err(err).Msg("skipping unparseable daily record")
			return
		}
		days = append(days, d)
	})
	return days, err
}

func (s *BoltStore) appendLog(bucket []byte, line string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return b.Put(key[:], []byte(line))
	})
	return errors.Wrapf(err, "append to %s failed", bucket)
}

func (s *BoltStore) readLog(bucket []byte, fn func(line string)) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			fn(string(v))
		}
		return nil
	})
	return errors.Wrapf(err, "iterate over %s failed", bucket)
}
