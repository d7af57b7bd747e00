package buffer_test

import (
	"sync"
	"testing"

	"github.com/ringcast/ringcast/pkg/buffer"
	"github.com/smartystreets/goconvey/convey"
)

func TestRingBasics(t *testing.T) {
	convey.Convey("Given a ring with capacity three", t, func() {
		r := buffer.New[int](3)

		convey.Convey("A fresh ring is empty", func() {
			convey.So(r.Len(), convey.ShouldEqual, 0)
			convey.So(r.Cap(), convey.ShouldEqual, 3)

			_, ok := r.Read()
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = r.Peek()
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Items come out in insertion order", func() {
			r.Write(1)
			r.Write(2)
			r.Write(3)

			v, ok := r.Read()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 1)

			v, ok = r.Read()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 2)
		})

		convey.Convey("Peek does not consume", func() {
			r.Write(7)

			v, ok := r.Peek()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 7)
			convey.So(r.Len(), convey.ShouldEqual, 1)
		})

		convey.Convey("Writing past capacity evicts the oldest item", func() {
			convey.So(r.Write(1), convey.ShouldBeFalse)
			convey.So(r.Write(2), convey.ShouldBeFalse)
			convey.So(r.Write(3), convey.ShouldBeFalse)
			convey.So(r.Write(4), convey.ShouldBeTrue)

			convey.So(r.Len(), convey.ShouldEqual, 3)
			convey.So(r.Dropped(), convey.ShouldEqual, 1)

			v, _ := r.Read()
			convey.So(v, convey.ShouldEqual, 2)
		})

		convey.Convey("ReadBatch drains up to the requested count", func() {
			r.Write(1)
			r.Write(2)
			r.Write(3)

			batch := r.ReadBatch(2)
			convey.So(batch, convey.ShouldResemble, []int{1, 2})
			convey.So(r.Len(), convey.ShouldEqual, 1)

			batch = r.ReadBatch(10)
			convey.So(batch, convey.ShouldResemble, []int{3})
			convey.So(r.ReadBatch(5), convey.ShouldBeNil)
			convey.So(r.ReadBatch(0), convey.ShouldBeNil)
		})

		convey.Convey("Clear empties the ring", func() {
			r.Write(1)
			r.Write(2)
			r.Clear()

			convey.So(r.Len(), convey.ShouldEqual, 0)
			_, ok := r.Read()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a capacity below one", t, func() {
		r := buffer.New[string](0)

		convey.Convey("It is raised to one", func() {
			convey.So(r.Cap(), convey.ShouldEqual, 1)
			r.Write("a")
			r.Write("b")

			v, _ := r.Read()
			convey.So(v, convey.ShouldEqual, "b")
		})
	})
}

func TestRingDropCallback(t *testing.T) {
	convey.Convey("Given a ring with a drop callback", t, func() {
		var mu sync.Mutex
		var dropped []int
		r := buffer.New[int](2, buffer.WithDropCallback[int](func(v int) {
			mu.Lock()
			dropped = append(dropped, v)
			mu.Unlock()
		}))

		convey.Convey("Overflowed items are reported", func() {
			r.Write(1)
			r.Write(2)
			r.Write(3)

			mu.Lock()
			defer mu.Unlock()
			convey.So(dropped, convey.ShouldResemble, []int{1})
		})

		convey.Convey("Cleared items are reported", func() {
			r.Write(1)
			r.Write(2)
			r.Clear()

			mu.Lock()
			defer mu.Unlock()
			convey.So(dropped, convey.ShouldResemble, []int{1, 2})
		})
	})
}

func TestRingConcurrency(t *testing.T) {
	convey.Convey("Given concurrent writers and a reader", t, func() {
		r := buffer.New[int](64)
		var wg sync.WaitGroup

		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 1000; i++ {
					r.Write(i)
				}
			}()
		}

		read := 0
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 4000; i++ {
				if _, ok := r.Read(); ok {
					read++
				}
			}
		}()

		wg.Wait()
		<-done

		convey.Convey("Then no items are lost beyond the drop accounting", func() {
			remaining := r.Len()
			total := uint64(read+remaining) + r.Dropped()
			convey.So(total, convey.ShouldEqual, uint64(4000))
		})
	})
}
