package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppendRead(t *testing.T) {
	b := NewBuffer(10)

	assert.Equal(t, "", b.Read(1))

	b.Append(1, "first")
	b.Append(1, "second")
	b.Append(2, "other user")

	assert.Equal(t, "first\nsecond", b.Read(1))
	assert.Equal(t, "other user", b.Read(2))
}

func TestBufferFIFOEviction(t *testing.T) {
	const capacity = 5
	b := NewBuffer(capacity)

	for i := 0; i < capacity*3; i++ {
		b.Append(7, fmt.Sprintf("entry-%d", i))
	}

	require.Equal(t, capacity, b.Len(7))
	lines := strings.Split(b.Read(7), "\n")
	require.Len(t, lines, capacity)
	// The survivors are the last `capacity` entries in original order.
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("entry-%d", capacity*2+i), line)
	}
}

func TestBufferClearIdempotent(t *testing.T) {
	b := NewBuffer(0)
	b.Append(3, "hello")
	b.Clear(3)
	assert.Equal(t, "", b.Read(3))
	// Clearing again must not panic or error.
	b.Clear(3)
	b.Clear(42)
}

func TestBufferDefaultCapacity(t *testing.T) {
	b := NewBuffer(-1)
	for i := 0; i < DefaultCapacity+25; i++ {
		b.Append(1, "x")
	}
	assert.Equal(t, DefaultCapacity, b.Len(1))
}

func TestBufferConcurrentUsers(t *testing.T) {
	b := NewBuffer(100)
	var wg sync.WaitGroup
	for u := int64(0); u < 32; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b.Append(userID, "entry")
			}
		}(u)
	}
	wg.Wait()
	for u := int64(0); u < 32; u++ {
		assert.Equal(t, 100, b.Len(u))
	}
}
