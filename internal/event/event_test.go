package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeed(t *testing.T) {
	var f Feed[string]
	var got []string

	d1 := f.Subscribe(func(s string) { got = append(got, "a:"+s) })
	d2 := f.Subscribe(func(s string) { got = append(got, "b:"+s) })
	f.Publish("x")
	assert.Equal(t, []string{"a:x", "b:x"}, got)

	d1()
	d1()
	assert.Equal(t, 1, f.Len())

	got = nil
	f.Publish("y")
	assert.Equal(t, []string{"b:y"}, got)

	d2()
	assert.Equal(t, 0, f.Len())
}

func TestFeedDisposeDuringPublish(t *testing.T) {
	var f Feed[int]
	calls := 0
	var dispose func()
	dispose = f.Subscribe(func(int) {
		calls++
		dispose()
	})
	f.Publish(1)
	f.Publish(2)
	assert.Equal(t, 1, calls)
}

func TestFeedConcurrent(t *testing.T) {
	var f Feed[int]
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := f.Subscribe(func(int) {})
			f.Publish(1)
			d()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, f.Len())
}

func TestBus(t *testing.T) {
	b := NewBus()
	clicks := 0
	dispose := b.On(Click, func(e *Event) {
		clicks++
		if e.Key == "" {
			e.PreventDefault()
		}
	})

	e := b.Dispatch(&Event{Type: Click, Target: "x"})
	assert.True(t, e.DefaultPrevented())
	assert.Equal(t, 1, clicks)

	e = b.Dispatch(&Event{Type: KeyDown, Key: "a"})
	assert.False(t, e.DefaultPrevented())
	assert.Equal(t, 1, clicks)

	dispose()
	b.Dispatch(&Event{Type: Click})
	assert.Equal(t, 1, clicks)
	assert.Equal(t, 0, b.Listeners(Click))
}

func TestWithin(t *testing.T) {
	e := &Event{Target: "caption", Path: []string{"video-1", "surface"}}
	assert.True(t, e.Within("caption"))
	assert.True(t, e.Within("video-1"))
	assert.False(t, e.Within("tags"))
}

func TestDisposer(t *testing.T) {
	var order []int
	var d Disposer
	d.Add(func() { order = append(order, 1) })
	d.Add(func() { order = append(order, 2) })
	d.Dispose()
	d.Dispose()
	assert.Equal(t, []int{2, 1}, order)
}
