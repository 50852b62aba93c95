package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_bitmap(t *testing.T) {
	bm := &Bitmap{}
	assert.True(t, bm.AllValid())
	assert.True(t, bm.RowIsValid(3))

	bm.SetInvalid(3)
	assert.False(t, bm.RowIsValid(3))
	assert.True(t, bm.RowIsValid(0))
	assert.Equal(t, 1, bm.CountInvalid(4))

	bm.SetValid(3)
	assert.True(t, bm.RowIsValid(3))

	bm.Set(2, false)
	assert.False(t, bm.RowIsValid(2))

	bm.Reset()
	assert.True(t, bm.AllValid())
}

func Test_bitmapResize(t *testing.T) {
	bm := &Bitmap{}
	bm.SetInvalid(0)
	bm.Resize(1, 64)
	assert.False(t, bm.RowIsValid(0))
	for i := uint64(1); i < 64; i++ {
		assert.True(t, bm.RowIsValid(i))
	}
}

func Test_reentryLock(t *testing.T) {
	lock := NewReentryLock()
	assert.False(t, lock.HeldByCurrent())
	lock.Lock()
	// Same goroutine may lock again.
	lock.Lock()
	lock.Unlock()
	assert.True(t, lock.HeldByCurrent())

	acquired := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		lock.Lock()
		close(acquired)
		lock.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while still held")
	default:
	}
	lock.Unlock()
	wg.Wait()
	<-acquired
	assert.False(t, lock.HeldByCurrent())
}

func Test_stlHelpers(t *testing.T) {
	data := []int{1, 2, 3}
	assert.Equal(t, 3, Back(data))
	assert.Equal(t, 3, Size(data))
	assert.False(t, Empty(data))
	assert.Equal(t, 1, FindIf(data, func(v int) bool { return v == 2 }))
	assert.Equal(t, -1, FindIf(data, func(v int) bool { return v == 9 }))

	cp := CopyTo(data)
	cp[0] = 9
	assert.Equal(t, 1, data[0])

	assert.Equal(t, uint64(8), NextPowerOfTwo(5))
	assert.True(t, IsPowerOfTwo(8))
	assert.False(t, IsPowerOfTwo(6))
}
