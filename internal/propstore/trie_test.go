package propstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrieDistinguishesTerminalAndInteriorNodes(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	_, err := a.Add("sys.usb", "on", false)
	require.NoError(t, err)
	_, err = a.Add("sys.usb.config", "adb", false)
	require.NoError(t, err)

	usb := a.Find("sys.usb")
	require.NotNil(t, usb)
	usbConfig := a.Find("sys.usb.config")
	require.NotNil(t, usbConfig)
	assert.NotEqual(t, usb, usbConfig)

	assert.Nil(t, a.Find("sys"))
	assert.Nil(t, a.Find("sys.usb.config.extra"))
}

func TestTrieSiblingOrderingAtSameDepth(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	names := []string{"sys.m", "sys.a", "sys.z", "sys.c", "sys.b"}
	for _, n := range names {
		_, err := a.Add(n, "v", false)
		require.NoError(t, err)
	}
	for _, n := range names {
		assert.NotNil(t, a.Find(n), "expected to find %s", n)
	}
}

func TestFindOrInsertSiblingConcurrentAddsAllSucceedOrDuplicate(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)

	const n = 200
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("net.iface.%d", i)
			if _, err := a.Add(name, "up", false); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	// PropArea.Add is documented as single-writer; this test exercises
	// findOrInsertSibling's CAS retry path under contention rather than
	// claiming Add itself is meant to be called concurrently. Every
	// unique name must still end up findable exactly once.
	assert.Equal(t, n, successes)
	for i := 0; i < n; i++ {
		assert.NotNil(t, a.Find(fmt.Sprintf("net.iface.%d", i)))
	}
}

func TestFindSiblingReadDuringConcurrentInsert(t *testing.T) {
	a := newTestArea(t, DefaultAreaCapacity)
	_, err := a.Add("base.one", "1", false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			a.Find("base.one")
		}
	}()

	for i := 0; i < 500; i++ {
		_, err := a.Add(fmt.Sprintf("base.gen%d", i), "v", false)
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.NotNil(t, a.Find("base.one"))
	assert.NotNil(t, a.Find("base.gen499"))
}
