package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/metaboard/internal/adapters/mq/queue"
	"github.com/okian/metaboard/internal/adapters/repository"
	"github.com/okian/metaboard/internal/domain/bayes"
	"github.com/okian/metaboard/internal/domain/model"
)

func TestDataset(t *testing.T) {
	Convey("Given an empty dataset", t, func() {
		ctx := context.Background()
		d := repository.NewDataset()

		Convey("When upserting submissions", func() {
			So(d.Upsert(ctx, queue.Submission{ID: "s-1", Record: model.RawRecord{Name: "beta", Count: 1, Wins: 1, Losses: 0}}), ShouldBeNil)
			So(d.Upsert(ctx, queue.Submission{ID: "s-2", Record: model.RawRecord{Name: "alpha", Count: 2, Wins: 3, Losses: 1}}), ShouldBeNil)

			Convey("Then the dataset should grow and version should advance", func() {
				So(d.Len(ctx), ShouldEqual, 2)
				So(d.Version(), ShouldEqual, 2)
			})

			Convey("Then All should return records sorted by name", func() {
				all := d.All(ctx)
				So(len(all), ShouldEqual, 2)
				So(all[0].Name, ShouldEqual, "alpha")
				So(all[1].Name, ShouldEqual, "beta")
			})

			Convey("And the same entity is upserted again", func() {
				So(d.Upsert(ctx, queue.Submission{ID: "s-3", Record: model.RawRecord{Name: "alpha", Count: 5, Wins: 9, Losses: 1}}), ShouldBeNil)

				Convey("Then the latest submission should win", func() {
					So(d.Len(ctx), ShouldEqual, 2)
					all := d.All(ctx)
					So(all[0].Count, ShouldEqual, 5)
					So(d.Version(), ShouldEqual, 3)
				})
			})
		})

		Convey("When seeding a bulk dataset", func() {
			accepted := d.Seed(ctx, []model.RawRecord{
				{Name: "alpha", Count: 1, Wins: 1, Losses: 1},
				{Name: "", Count: 1, Wins: 1, Losses: 1},   // invalid: empty name
				{Name: "ghost", Count: 0, Wins: 1},         // invalid: degenerate
				{Name: "beta", Count: 2, Wins: 4, Losses: 2},
			})

			Convey("Then invalid records should be skipped", func() {
				So(accepted, ShouldEqual, 2)
				So(d.Len(ctx), ShouldEqual, 2)
				So(d.Version(), ShouldEqual, 1)
			})
		})
	})
}

// publishedSnapshot builds a store with a three-entity snapshot.
func publishedSnapshot(ctx context.Context) *repository.SnapshotStore {
	records := []model.EnrichedRecord{
		{RawRecord: model.RawRecord{Name: "aggro-rush", Count: 60}, TotalMatches: 600, Rating: 150, Tier: "S", Rank: 1, MetaImpact: 900},
		{RawRecord: model.RawRecord{Name: "control-wall", Count: 30}, TotalMatches: 300, Rating: 120, Tier: "A", Rank: 2, MetaImpact: 950},
		{RawRecord: model.RawRecord{Name: "mill-fog", Count: 10}, TotalMatches: 100, Rating: 70, Tier: "Unranked", Rank: 3, MetaImpact: 100},
	}
	store := repository.NewSnapshotStore()
	store.Publish(ctx, repository.NewSnapshot(
		"snap-1", time.Now().UTC(), 7, bayes.Prior{Mean: 0.5, Alpha: 1, Beta: 1},
		records, 100, 1000,
	))
	return store
}

func TestSnapshotStore(t *testing.T) {
	Convey("Given a snapshot store", t, func() {
		ctx := context.Background()

		Convey("When no snapshot has been published", func() {
			store := repository.NewSnapshotStore()

			Convey("Then reads should fail with ErrNoSnapshot", func() {
				_, err := store.Current(ctx)
				So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)

				_, _, err = store.Page(ctx, repository.Query{Limit: 10})
				So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)

				_, err = store.Entity(ctx, "aggro-rush")
				So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)
			})
		})

		Convey("When a snapshot is published", func() {
			store := publishedSnapshot(ctx)

			Convey("Then Current should return it", func() {
				snap, err := store.Current(ctx)
				So(err, ShouldBeNil)
				So(snap.ID, ShouldEqual, "snap-1")
				So(snap.DatasetVersion, ShouldEqual, 7)
			})

			Convey("Then a default page should come back rank-ordered", func() {
				entries, total, err := store.Page(ctx, repository.Query{Limit: 10})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 3)
				So(entries[0].Name, ShouldEqual, "aggro-rush")
				So(entries[2].Name, ShouldEqual, "mill-fog")
			})

			Convey("Then limit and offset should page through", func() {
				entries, total, err := store.Page(ctx, repository.Query{Limit: 1, Offset: 1})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 3)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Name, ShouldEqual, "control-wall")
			})

			Convey("Then an offset past the end should return an empty page", func() {
				entries, total, err := store.Page(ctx, repository.Query{Limit: 10, Offset: 10})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 3)
				So(entries, ShouldBeEmpty)
			})

			Convey("Then a non-positive limit should be rejected", func() {
				_, _, err := store.Page(ctx, repository.Query{Limit: 0})
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})

			Convey("Then sorting by another metric should reorder", func() {
				entries, _, err := store.Page(ctx, repository.Query{Limit: 10, Sort: model.MetricMetaImpact})
				So(err, ShouldBeNil)
				So(entries[0].Name, ShouldEqual, "control-wall")
				So(entries[1].Name, ShouldEqual, "aggro-rush")
			})

			Convey("Then the tier filter should match exact labels", func() {
				entries, total, err := store.Page(ctx, repository.Query{Limit: 10, Tier: "S"})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 1)
				So(entries[0].Name, ShouldEqual, "aggro-rush")
			})

			Convey("Then the name filter should match substrings case-insensitively", func() {
				entries, total, err := store.Page(ctx, repository.Query{Limit: 10, Name: "WALL"})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 1)
				So(entries[0].Name, ShouldEqual, "control-wall")
			})

			Convey("Then Entity should look up by exact name", func() {
				entry, err := store.Entity(ctx, "mill-fog")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 3)

				_, err = store.Entity(ctx, "nonexistent")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then TierCounts should tally per label", func() {
				counts, err := store.TierCounts(ctx)
				So(err, ShouldBeNil)
				So(counts["S"], ShouldEqual, 1)
				So(counts["A"], ShouldEqual, 1)
				So(counts["Unranked"], ShouldEqual, 1)
			})

			Convey("And a newer snapshot is published", func() {
				store.Publish(ctx, repository.NewSnapshot(
					"snap-2", time.Now().UTC(), 9, bayes.Prior{}, nil, 0, 0,
				))

				Convey("Then readers should see the replacement", func() {
					snap, err := store.Current(ctx)
					So(err, ShouldBeNil)
					So(snap.ID, ShouldEqual, "snap-2")
				})
			})
		})
	})
}
