package bolt

import (
	"encoding/binary"
	"errors"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
)

var (
	bucketContacts = []byte("contacts")
	bucketMeta     = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// boltStore implements contacts.Store using bbolt.
// Keys are normalized identifiers; values are a single marker byte.
type boltStore struct {
	db *bbolt.DB
}

type bucketCreator interface {
	CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error)
}

type bucketDeleter interface {
	DeleteBucket(name []byte) error
}

type bucketDeleterFunc func(name []byte) error

func (f bucketDeleterFunc) DeleteBucket(name []byte) error { return f(name) }

func ensureBuckets(tx bucketCreator) error {
	for _, name := range [][]byte{bucketContacts, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

// ensureBucketsFn is a seam for tests.
var ensureBucketsFn = func(tx bucketCreator) error { return ensureBuckets(tx) }

// deleteBuckets drops the named buckets, ignoring ones that do not exist.
func deleteBuckets(tx bucketDeleter, names ...[]byte) error {
	for _, name := range names {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return err
		}
	}
	return nil
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (contacts.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		return ensureBucketsFn(tx)
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Exists(id string) (bool, error) {
	var present bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketContacts)
		if b == nil {
			return nil
		}
		present = b.Get([]byte(id)) != nil
		return nil
	})
	return present, err
}

// RebuildAll replaces every stored identifier and the metadata in a single
// transaction; readers see either the old set or the new one.
func (s *boltStore) RebuildAll(ids []string, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deleteBuckets(tx, bucketContacts); err != nil {
			return err
		}
		if err := ensureBuckets(tx); err != nil {
			return err
		}
		b := tx.Bucket(bucketContacts)
		for _, id := range ids {
			if id == "" {
				continue
			}
			if err := b.Put([]byte(id), []byte{1}); err != nil {
				return err
			}
		}
		return putMeta(tx.Bucket(bucketMeta), version, updatedUnix)
	})
}

// Visit walks every stored identifier in key order.
func (s *boltStore) Visit(visit func(id string) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketContacts)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if !visit(string(k)) {
				return nil
			}
		}
		return nil
	})
}

func (s *boltStore) Stats() contacts.StoreStats {
	st := contacts.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketContacts); b != nil {
			st.Contacts = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

func putMeta(b *bbolt.Bucket, version uint64, updatedUnix int64) error {
	vbuf := make([]byte, 8)
	ubuf := make([]byte, 8)
	binary.BigEndian.PutUint64(vbuf, version)
	binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
	if err := b.Put(keyVersion, vbuf); err != nil {
		return err
	}
	return b.Put(keyUpdated, ubuf)
}

var _ contacts.Store = (*boltStore)(nil)
