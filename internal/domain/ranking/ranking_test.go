package ranking_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/metaboard/internal/domain/model"
	"github.com/okian/metaboard/internal/domain/ranking"
)

func TestAssignRanks(t *testing.T) {
	Convey("Given a rated population", t, func() {
		Convey("When assigning ranks", func() {
			pop := []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "mid"}, Rating: 90},
				{RawRecord: model.RawRecord{Name: "top"}, Rating: 150},
				{RawRecord: model.RawRecord{Name: "low"}, Rating: 40},
			}
			err := ranking.AssignRanks(pop)

			Convey("Then ranks should be 1..N in rating order", func() {
				So(err, ShouldBeNil)
				So(pop[0].Name, ShouldEqual, "top")
				So(pop[0].Rank, ShouldEqual, 1)
				So(pop[1].Name, ShouldEqual, "mid")
				So(pop[1].Rank, ShouldEqual, 2)
				So(pop[2].Name, ShouldEqual, "low")
				So(pop[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When ratings tie", func() {
			pop := []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "zed"}, TotalMatches: 50, Rating: 100},
				{RawRecord: model.RawRecord{Name: "amy"}, TotalMatches: 50, Rating: 100},
				{RawRecord: model.RawRecord{Name: "kay"}, TotalMatches: 500, Rating: 100},
			}
			err := ranking.AssignRanks(pop)

			Convey("Then ties should break on total matches, then name", func() {
				So(err, ShouldBeNil)
				So(pop[0].Name, ShouldEqual, "kay")
				So(pop[1].Name, ShouldEqual, "amy")
				So(pop[2].Name, ShouldEqual, "zed")
			})
		})

		Convey("When the population is empty", func() {
			err := ranking.AssignRanks(nil)

			Convey("Then it should fail with ErrEmptyPopulation", func() {
				So(errors.Is(err, ranking.ErrEmptyPopulation), ShouldBeTrue)
			})
		})
	})
}

func TestApplyPercentiles(t *testing.T) {
	Convey("Given a ranked population", t, func() {
		Convey("When applying percentiles over three distinct ratings", func() {
			pop := []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "top"}, Rating: 150, Rank: 1},
				{RawRecord: model.RawRecord{Name: "mid"}, Rating: 90, Rank: 2},
				{RawRecord: model.RawRecord{Name: "low"}, Rating: 40, Rank: 3},
			}
			err := ranking.ApplyPercentiles(pop)

			Convey("Then the best should sit at 100 and the worst at 0", func() {
				So(err, ShouldBeNil)
				So(pop[0].RatingPercentile, ShouldEqual, 100)
				So(pop[1].RatingPercentile, ShouldEqual, 50)
				So(pop[2].RatingPercentile, ShouldEqual, 0)
			})

			Convey("Then rank percentiles should invert: rank 1 is the 100th", func() {
				So(pop[0].RankPercentile, ShouldEqual, 100)
				So(pop[2].RankPercentile, ShouldEqual, 0)
			})
		})

		Convey("When metric values tie", func() {
			pop := []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "a"}, Rating: 100, Rank: 1},
				{RawRecord: model.RawRecord{Name: "b"}, Rating: 100, Rank: 2},
				{RawRecord: model.RawRecord{Name: "c"}, Rating: 40, Rank: 3},
			}
			err := ranking.ApplyPercentiles(pop)

			Convey("Then tied values should share a percentile", func() {
				So(err, ShouldBeNil)
				So(pop[0].RatingPercentile, ShouldEqual, pop[1].RatingPercentile)
				So(pop[2].RatingPercentile, ShouldEqual, 0)
			})
		})

		Convey("When the population has a single record", func() {
			pop := []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "solo"}, Rating: 120, Rank: 1},
			}
			err := ranking.ApplyPercentiles(pop)

			Convey("Then every percentile should take the upper boundary", func() {
				So(err, ShouldBeNil)
				So(pop[0].RatingPercentile, ShouldEqual, 100)
				So(pop[0].RankPercentile, ShouldEqual, 100)
				So(pop[0].CountPercentile, ShouldEqual, 100)
			})
		})

		Convey("When percentiles are applied over every metric", func() {
			pop := []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "a", Count: 30}, TotalMatches: 300, WinRate: 60, AdjustedWinRate: 61, Depth: 10, MetaImpact: 900, Rating: 150, Rank: 1},
				{RawRecord: model.RawRecord{Name: "b", Count: 20}, TotalMatches: 200, WinRate: 50, AdjustedWinRate: 51, Depth: 10, MetaImpact: 400, Rating: 90, Rank: 2},
				{RawRecord: model.RawRecord{Name: "c", Count: 10}, TotalMatches: 100, WinRate: 40, AdjustedWinRate: 41, Depth: 10, MetaImpact: 100, Rating: 40, Rank: 3},
			}
			err := ranking.ApplyPercentiles(pop)

			Convey("Then values should stay within [0, 100]", func() {
				So(err, ShouldBeNil)
				for i := range pop {
					So(pop[i].CountPercentile, ShouldBeBetweenOrEqual, 0, 100)
					So(pop[i].TotalMatchesPercentile, ShouldBeBetweenOrEqual, 0, 100)
					So(pop[i].WinRatePercentile, ShouldBeBetweenOrEqual, 0, 100)
					So(pop[i].AdjustedWinRatePercentile, ShouldBeBetweenOrEqual, 0, 100)
					So(pop[i].DepthPercentile, ShouldBeBetweenOrEqual, 0, 100)
					So(pop[i].MetaImpactPercentile, ShouldBeBetweenOrEqual, 0, 100)
				}
			})

			Convey("Then a metric where everyone ties should give everyone 0", func() {
				// No record sits strictly below any other on depth.
				So(pop[0].DepthPercentile, ShouldEqual, 0)
				So(pop[1].DepthPercentile, ShouldEqual, 0)
				So(pop[2].DepthPercentile, ShouldEqual, 0)
			})
		})

		Convey("When the population is empty", func() {
			err := ranking.ApplyPercentiles(nil)

			Convey("Then it should fail with ErrEmptyPopulation", func() {
				So(errors.Is(err, ranking.ErrEmptyPopulation), ShouldBeTrue)
			})
		})
	})
}
