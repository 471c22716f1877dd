package propstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestArea builds a PropArea over a plain heap-allocated buffer
// instead of an mmap'd file, so the trie/PropInfo/PropArea logic can be
// exercised without touching the filesystem. The byte layout and every
// accessor are identical to the mmap'd case: only the backing storage
// differs.
func newTestArea(t *testing.T, capacity uint32) *PropArea {
	t.Helper()
	mem := make([]byte, capacity)
	h := headerAt(mem)
	copy(h.magic[:], areaMagic)
	h.version = areaVersion
	h.capacity = capacity
	h.watermark = areaHeaderSize
	h.rootOffset = 0
	return wrapArea(mem, "test://"+t.Name(), true, nil)
}

func TestPropAreaAddAndFind(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	pi, err := a.Add("sys.boot.reason", "reboot", false)
	require.NoError(t, err)
	require.NotNil(t, pi)
	assert.Equal(t, "sys.boot.reason", pi.Name())

	found := a.Find("sys.boot.reason")
	require.NotNil(t, found)
	assert.Equal(t, pi, found)

	assert.Nil(t, a.Find("sys.boot.other"))
}

func TestPropAreaAddDuplicateRejected(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	_, err := a.Add("ro.build.id", "abc123", true)
	require.NoError(t, err)

	_, err = a.Add("ro.build.id", "xyz789", true)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestPropAreaAddValidatesInput(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	_, err := a.Add("", "value", false)
	assert.ErrorIs(t, err, ErrInvalidName)

	longValue := make([]byte, PropValueMax)
	for i := range longValue {
		longValue[i] = 'x'
	}
	_, err = a.Add("sys.mutable", string(longValue), false)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestPropAreaAddOnReadOnlyMapFails(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)
	a.writable = false

	_, err := a.Add("sys.x", "y", false)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestPropAreaForeachVisitsEveryProperty(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	names := []string{"a.b.c", "a.b.d", "a.e", "z"}
	for _, n := range names {
		_, err := a.Add(n, "v", false)
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	a.Foreach(func(pi *PropInfo) {
		seen[pi.Name()] = true
	})

	for _, n := range names {
		assert.True(t, seen[n], "missing %s from Foreach", n)
	}
	assert.Len(t, seen, len(names))
}

func TestPropAreaAddFillsCapacity(t *testing.T) {
	a := newTestArea(t, minAreaCapacity)

	added := 0
	for i := 0; ; i++ {
		name := "p." + string(rune('a'+(i%26))) + string(rune('0'+(i/26)%10))
		if _, err := a.Add(name, "v", false); err != nil {
			assert.ErrorIs(t, err, ErrAreaFull)
			break
		}
		added++
		if added > 10000 {
			t.Fatal("area never reported full")
		}
	}
	assert.Greater(t, added, 0)
}

func TestPropAreaBumpSerialAdvancesMonotonically(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	first := a.BumpSerial()
	second := a.BumpSerial()
	assert.Equal(t, first+1, second)
}
