package pricing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_UnitPrice(t *testing.T) {
	table := DefaultTable()

	p, ok := table.UnitPrice(ComboKey{SizeA4, ColorBW, DuplexSingle})
	require.True(t, ok)
	assert.True(t, p.Equal(dec("0.5")))

	_, ok = table.UnitPrice(ComboKey{SizeA5, ColorBW, DuplexSingle})
	assert.False(t, ok)
}

func TestTable_LaterEntryOverwrites(t *testing.T) {
	table := NewTable([]Entry{
		{SizeA4, ColorBW, DuplexSingle, dec("0.5")},
		{SizeA4, ColorBW, DuplexSingle, dec("0.75")},
	})

	p, ok := table.UnitPrice(ComboKey{SizeA4, ColorBW, DuplexSingle})
	require.True(t, ok)
	assert.True(t, p.Equal(dec("0.75")))
}

func TestTable_AvailableOrderStable(t *testing.T) {
	table := DefaultTable()

	first := table.Available()
	second := table.Available()
	require.Equal(t, first, second)

	// Sorted by size, then color, then duplex.
	require.Len(t, first, 8)
	assert.Equal(t, SizeA3, first[0].Size)
	assert.Equal(t, SizeA4, first[4].Size)
}

func TestStore_SwapVisibleToReaders(t *testing.T) {
	store := NewStore(DefaultTable())

	replacement := NewTable([]Entry{{SizeA4, ColorBW, DuplexSingle, dec("9")}})
	store.Swap(replacement)

	p, ok := store.Load().UnitPrice(ComboKey{SizeA4, ColorBW, DuplexSingle})
	require.True(t, ok)
	assert.True(t, p.Equal(dec("9")))
}

// Concurrent readers during swaps always see a complete snapshot: every
// lookup either hits the old table's price or the new one, never a partial
// state.
func TestStore_ConcurrentReload(t *testing.T) {
	store := NewStore(DefaultTable())
	key := ComboKey{SizeA4, ColorBW, DuplexSingle}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.Swap(NewTable([]Entry{{SizeA4, ColorBW, DuplexSingle, dec("2")}}))
			store.Swap(DefaultTable())
		}
		close(stop)
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				p, ok := store.Load().UnitPrice(key)
				if assert.True(t, ok) {
					assert.True(t, p.Equal(dec("0.5")) || p.Equal(dec("2")), "got %s", p)
				}
			}
		}()
	}

	wg.Wait()
}
