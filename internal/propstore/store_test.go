package propstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "properties")
	s := NewStore()
	ok, fsetxattrFailed := s.AreaInit(path)
	require.True(t, ok)
	_ = fsetxattrFailed
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStoreAreaInitIsIdempotent(t *testing.T) {
	s, path := newTestStore(t)
	ok, _ := s.AreaInit(path)
	assert.True(t, ok)
}

func TestStoreAddFindGetRead(t *testing.T) {
	s, _ := newTestStore(t)

	assert.True(t, s.Add("sys.boot.reason", "cold"))

	pi := s.Find("sys.boot.reason")
	require.NotNil(t, pi)

	buf := make([]byte, PropValueMax)
	n := s.Get("sys.boot.reason", buf)
	assert.Equal(t, "cold", string(buf[:n]))

	n2, ok := s.Read("sys.boot.reason", buf)
	assert.True(t, ok)
	assert.Equal(t, "cold", string(buf[:n2]))
}

func TestStoreGetOnMissingNameReturnsZero(t *testing.T) {
	s, _ := newTestStore(t)
	buf := make([]byte, PropValueMax)
	n := s.Get("does.not.exist", buf)
	assert.Equal(t, 0, n)
}

func TestStoreAddRejectsEmptyName(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.Add("", "v"))
}

func TestStoreAddOnUninitializedStoreFails(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Add("a.b", "c"))
}

func TestStoreUpdateChangesValue(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("debug.level", "0"))
	pi := s.Find("debug.level")
	require.NotNil(t, pi)

	assert.True(t, s.Update(pi, "3"))

	buf := make([]byte, PropValueMax)
	n := s.Get("debug.level", buf)
	assert.Equal(t, "3", string(buf[:n]))
}

func TestStoreUpdateOnNilPropInfoFails(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.Update(nil, "x"))
}

func TestStoreReadCallbackForReadOnlyAndMutable(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("ro.build.type", "user"))
	require.True(t, s.Add("sys.mutable", "a"))

	var gotName, gotValue string
	ok := s.ReadCallback("ro.build.type", func(name, value string, serial uint32) {
		gotName, gotValue = name, value
	})
	require.True(t, ok)
	assert.Equal(t, "ro.build.type", gotName)
	assert.Equal(t, "user", gotValue)

	ok = s.ReadCallback("sys.mutable", func(name, value string, serial uint32) {
		gotValue = value
	})
	require.True(t, ok)
	assert.Equal(t, "a", gotValue)
}

func TestStoreWaitOnSpecificPropInfo(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("sys.event", "idle"))
	pi := s.Find("sys.event")
	require.NotNil(t, pi)

	oldSerial := pi.serial

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Update(pi, "fired")
	}()

	newSerial, ok := s.Wait(context.Background(), pi, oldSerial, time.Second)
	assert.True(t, ok)
	assert.NotEqual(t, oldSerial, newSerial)
}

func TestStoreWaitTimesOutWithoutChange(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("sys.quiet", "idle"))
	pi := s.Find("sys.quiet")
	require.NotNil(t, pi)

	_, ok := s.Wait(context.Background(), pi, pi.serial, 30*time.Millisecond)
	assert.False(t, ok)
}

func TestStoreWaitAnyWakesOnUnrelatedAdd(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("first.one", "v"))

	oldSerial := s.serialArea().Serial()

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Add("second.one", "v")
	}()

	newSerial, ok := s.WaitAny(context.Background(), oldSerial, time.Second)
	assert.True(t, ok)
	assert.NotEqual(t, oldSerial, newSerial)
}

func TestStoreWaitRespectsContextCancellation(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("sys.calm", "idle"))
	pi := s.Find("sys.calm")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok := s.Wait(ctx, pi, pi.serial, 5*time.Second)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStoreFindNthAndForeach(t *testing.T) {
	s, _ := newTestStore(t)
	names := []string{"a.one", "a.two", "a.three"}
	for _, n := range names {
		require.True(t, s.Add(n, "v"))
	}

	seen := make(map[string]bool)
	s.Foreach(func(pi *PropInfo) { seen[pi.Name()] = true })
	for _, n := range names {
		assert.True(t, seen[n])
	}

	var found []string
	for i := 0; i < len(names); i++ {
		pi := s.FindNth(i)
		require.NotNil(t, pi)
		found = append(found, pi.Name())
	}
	assert.Nil(t, s.FindNth(len(names)))
	assert.ElementsMatch(t, names, found)
}

func TestStoreConcurrentReadersDuringWrites(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Add("stress.value", "start"))
	pi := s.Find("stress.value")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, PropValueMax)
			for {
				select {
				case <-stop:
					return
				default:
				}
				s.Get("stress.value", buf)
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		s.Update(pi, "v")
	}
	close(stop)
	wg.Wait()
}
