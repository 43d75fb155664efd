package bolt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"
)

type assertErr struct{}

func (assertErr) Error() string { return "assert error" }

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "contacts.db")
}

func TestBoltStore_ExistsAndRebuild(t *testing.T) {
	dbPath := tempDB(t)
	st, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if ok, err := st.Exists("15551234"); err != nil || ok {
		t.Fatalf("expected empty miss, got ok=%v err=%v", ok, err)
	}

	if err := st.RebuildAll([]string{"15551234", "", "442079460000"}, 1, 1_700_000_000); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}
	for _, id := range []string{"15551234", "442079460000"} {
		if ok, err := st.Exists(id); err != nil || !ok {
			t.Fatalf("Exists(%q) ok=%v err=%v; want hit", id, ok, err)
		}
	}
	if ok, _ := st.Exists("1555"); ok {
		t.Fatalf("Exists must not match prefixes")
	}

	stats := st.Stats()
	if stats.Contacts != 2 || stats.Version != 1 || stats.UpdatedUnix != 1_700_000_000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// a second rebuild replaces, not merges
	if err := st.RebuildAll([]string{"999"}, 2, 1_700_000_100); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}
	if ok, _ := st.Exists("15551234"); ok {
		t.Fatalf("expected old entry to be gone after rebuild")
	}
	if ok, _ := st.Exists("999"); !ok {
		t.Fatalf("expected new entry after rebuild")
	}
	if v := st.Stats().Version; v != 2 {
		t.Fatalf("version=%d want=2", v)
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := tempDB(t)
	st, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := st.RebuildAll([]string{"123"}, 7, 42); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if ok, _ := st.Exists("123"); !ok {
		t.Fatalf("expected entry after reopen")
	}
	if v := st.Stats().Version; v != 7 {
		t.Fatalf("version=%d want=7", v)
	}
}

func TestBoltStore_Visit(t *testing.T) {
	st, err := New(tempDB(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if err := st.RebuildAll([]string{"3", "1", "2"}, 1, 1); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}

	var got []string
	if err := st.Visit(func(id string) bool {
		got = append(got, id)
		return true
	}); err != nil {
		t.Fatalf("Visit: %v", err)
	}
	if len(got) != 3 || got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Fatalf("Visit order = %v; want [1 2 3]", got)
	}

	got = got[:0]
	_ = st.Visit(func(id string) bool {
		got = append(got, id)
		return false
	})
	if len(got) != 1 {
		t.Fatalf("Visit did not stop early: %v", got)
	}
}

func TestNew_OpenFails(t *testing.T) {
	// a directory cannot be opened as a database file
	if _, err := New(t.TempDir()); err == nil {
		t.Fatalf("expected error opening a directory")
	}
}

type fakeBucketCreator struct{ errs map[string]error }

func (f fakeBucketCreator) CreateBucketIfNotExists(name []byte) (*bbolt.Bucket, error) {
	if err := f.errs[string(name)]; err != nil {
		return nil, err
	}
	return nil, nil
}

func TestNew_EnsureBucketsErrors(t *testing.T) {
	cases := []struct {
		name string
		fail string
	}{
		{name: "contacts bucket fails", fail: string(bucketContacts)},
		{name: "meta bucket fails", fail: string(bucketMeta)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			old := ensureBucketsFn
			ensureBucketsFn = func(tx bucketCreator) error {
				return ensureBuckets(fakeBucketCreator{errs: map[string]error{tc.fail: assertErr{}}})
			}
			defer func() { ensureBucketsFn = old }()

			dbPath := tempDB(t)
			st, err := New(dbPath)
			if err == nil || st != nil {
				t.Fatalf("expected error from New when %s fails", tc.fail)
			}
			_ = os.Remove(dbPath)
		})
	}
}

func TestDeleteBuckets(t *testing.T) {
	tests := []struct {
		name    string
		errs    map[string]error
		wantErr bool
	}{
		{name: "all buckets deleted", errs: nil, wantErr: false},
		{name: "ignore ErrBucketNotFound", errs: map[string]error{"a": bberrors.ErrBucketNotFound}, wantErr: false},
		{name: "first bucket fails", errs: map[string]error{"a": assertErr{}}, wantErr: true},
		{name: "second bucket fails", errs: map[string]error{"b": assertErr{}}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls []string
			del := bucketDeleterFunc(func(name []byte) error {
				calls = append(calls, string(name))
				return tc.errs[string(name)]
			})
			err := deleteBuckets(del, []byte("a"), []byte("b"))
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !errors.As(err, new(assertErr)) {
				t.Fatalf("expected assertErr, got %v", err)
			}
		})
	}
}
