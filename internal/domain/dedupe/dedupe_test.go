package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/metaboard/internal/domain/dedupe"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording submission IDs", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the ID is new", func() {
				seen := d.SeenAndRecord(context.Background(), "rec-1")

				Convey("Then it should return false and record the ID", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the ID was already seen", func() {
				d.SeenAndRecord(context.Background(), "rec-1")
				seen := d.SeenAndRecord(context.Background(), "rec-1")

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording an ID", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(context.Background(), "rec-1")
			d.Unrecord(context.Background(), "rec-1")

			Convey("Then the ID should be retryable again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(context.Background(), "rec-1"), ShouldBeFalse)
			})
		})

		Convey("When the cache reaches its maximum size", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 0; i < 3; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("rec-%d", i))
			}
			d.SeenAndRecord(context.Background(), "rec-overflow")

			Convey("Then the oldest ID should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "rec-0"), ShouldBeFalse)
				So(d.SeenAndRecord(context.Background(), "rec-overflow"), ShouldBeTrue)
			})
		})

		Convey("When recording concurrently", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					d.SeenAndRecord(context.Background(), fmt.Sprintf("rec-%d", i))
				}(i)
			}
			wg.Wait()

			Convey("Then every distinct ID should be recorded once", func() {
				So(d.Size(), ShouldEqual, 50)
			})
		})
	})
}
