package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/metaboard/internal/adapters/http/api"
	"github.com/okian/metaboard/internal/adapters/mq/queue"
	"github.com/okian/metaboard/internal/adapters/repository"
	"github.com/okian/metaboard/internal/domain/model"
	"github.com/okian/metaboard/internal/domain/pipeline"
)

// fakeDeps is a controllable implementation of the handler dependencies.
type fakeDeps struct {
	seen         map[string]bool
	enqueueOK    bool
	enqueued     []queue.Submission
	pageEntries  []model.EnrichedRecord
	pageTotal    int
	pageErr      error
	entityErr    error
	recomputeErr error
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{seen: make(map[string]bool), enqueueOK: true}
}

func (f *fakeDeps) SeenAndRecord(_ context.Context, id string) bool {
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeDeps) Unrecord(_ context.Context, id string) { delete(f.seen, id) }

func (f *fakeDeps) Size() int { return len(f.seen) }

func (f *fakeDeps) Enqueue(_ context.Context, s queue.Submission) bool {
	if !f.enqueueOK {
		return false
	}
	f.enqueued = append(f.enqueued, s)
	return true
}

func (f *fakeDeps) Page(_ context.Context, _ repository.Query) ([]model.EnrichedRecord, int, error) {
	if f.pageErr != nil {
		return nil, 0, f.pageErr
	}
	return f.pageEntries, f.pageTotal, nil
}

func (f *fakeDeps) Entity(_ context.Context, name string) (model.EnrichedRecord, error) {
	if f.entityErr != nil {
		return model.EnrichedRecord{}, f.entityErr
	}
	return model.EnrichedRecord{RawRecord: model.RawRecord{Name: name}, Rank: 1}, nil
}

func (f *fakeDeps) Recompute(_ context.Context) error { return f.recomputeErr }

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"datasetSize": 3}
}

func TestRecordsHandler(t *testing.T) {
	Convey("Given the records handler", t, func() {
		deps := newFakeDeps()
		h := api.NewRecordsHandler(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
			w := httptest.NewRecorder()
			h.HandlePostRecord(w, req)
			return w
		}

		Convey("When posting a valid record", func() {
			w := post(`{"record_id":"r-1","name":"aggro-rush","count":10,"wins":6,"losses":4}`)

			Convey("Then it should be accepted and enqueued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].Record.Name, ShouldEqual, "aggro-rush")

				var ack struct {
					Status   string `json:"status"`
					RecordID string `json:"record_id"`
				}
				So(json.NewDecoder(w.Body).Decode(&ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.RecordID, ShouldEqual, "r-1")
			})
		})

		Convey("When posting a record without an id", func() {
			w := post(`{"name":"aggro-rush","count":10,"wins":6,"losses":4}`)

			Convey("Then one should be assigned", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var ack struct {
					RecordID string `json:"record_id"`
				}
				So(json.NewDecoder(w.Body).Decode(&ack), ShouldBeNil)
				So(ack.RecordID, ShouldNotBeEmpty)
			})
		})

		Convey("When posting the same record id twice", func() {
			post(`{"record_id":"r-1","name":"aggro-rush","count":10,"wins":6,"losses":4}`)
			w := post(`{"record_id":"r-1","name":"aggro-rush","count":10,"wins":6,"losses":4}`)

			Convey("Then the retry should be reported as a duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.NewDecoder(w.Body).Decode(&ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "duplicate")
				So(ack.Duplicate, ShouldBeTrue)
				So(len(deps.enqueued), ShouldEqual, 1)
			})
		})

		Convey("When the queue is saturated", func() {
			deps.enqueueOK = false
			w := post(`{"record_id":"r-1","name":"aggro-rush","count":10,"wins":6,"losses":4}`)

			Convey("Then the submission should get backpressure and stay retryable", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				// The seen mark must be rolled back so a retry is not a duplicate.
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := post(`{broken`)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting an invalid record", func() {
			Convey("Then a missing name should be rejected", func() {
				So(post(`{"count":10,"wins":6,"losses":4}`).Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then a degenerate record should be rejected", func() {
				So(post(`{"name":"ghost","count":0,"wins":6,"losses":4}`).Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then negative fields should be rejected", func() {
				So(post(`{"name":"bad","count":10,"wins":-1,"losses":4}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/records", nil)
			w := httptest.NewRecorder()
			h.HandlePostRecord(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given the leaderboard handler", t, func() {
		deps := newFakeDeps()
		h := api.NewLeaderboardHandler(deps, 500, 50)

		get := func(target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			w := httptest.NewRecorder()
			h.HandleGetLeaderboard(w, req)
			return w
		}

		Convey("When requesting a page", func() {
			deps.pageEntries = []model.EnrichedRecord{
				{RawRecord: model.RawRecord{Name: "aggro-rush"}, Rank: 1},
			}
			deps.pageTotal = 1
			w := get("/leaderboard?limit=10&offset=0")

			Convey("Then the page should come back with totals", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Entries []model.EnrichedRecord `json:"entries"`
					Total   int                    `json:"total"`
					Limit   int                    `json:"limit"`
				}
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(len(resp.Entries), ShouldEqual, 1)
				So(resp.Total, ShouldEqual, 1)
				So(resp.Limit, ShouldEqual, 10)
			})
		})

		Convey("When no snapshot exists yet", func() {
			deps.pageErr = repository.ErrNoSnapshot
			w := get("/leaderboard")

			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the limit exceeds the maximum", func() {
			So(get("/leaderboard?limit=501").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When parameters are malformed", func() {
			So(get("/leaderboard?limit=zero").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/leaderboard?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/leaderboard?offset=-1").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/leaderboard?sort=elo").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEntityHandler(t *testing.T) {
	Convey("Given the entity handler", t, func() {
		deps := newFakeDeps()
		h := api.NewEntityHandler(deps)

		get := func(target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			w := httptest.NewRecorder()
			h.HandleGetEntity(w, req)
			return w
		}

		Convey("When looking up an existing entity", func() {
			w := get("/entity/aggro-rush")

			Convey("Then the enriched record should come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entry model.EnrichedRecord
				So(json.NewDecoder(w.Body).Decode(&entry), ShouldBeNil)
				So(entry.Name, ShouldEqual, "aggro-rush")
			})
		})

		Convey("When the name is URL-escaped", func() {
			w := get("/entity/fire%20blade")

			Convey("Then it should be unescaped before lookup", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entry model.EnrichedRecord
				So(json.NewDecoder(w.Body).Decode(&entry), ShouldBeNil)
				So(entry.Name, ShouldEqual, "fire blade")
			})
		})

		Convey("When the entity does not exist", func() {
			deps.entityErr = repository.ErrNotFound
			So(get("/entity/nonexistent").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When no snapshot exists yet", func() {
			deps.entityErr = repository.ErrNoSnapshot
			So(get("/entity/aggro-rush").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the path has no name", func() {
			So(get("/entity/").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRecomputeHandler(t *testing.T) {
	Convey("Given the recompute handler", t, func() {
		deps := newFakeDeps()
		h := api.NewRecomputeHandler(deps)

		post := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/recompute", nil)
			w := httptest.NewRecorder()
			h.HandleRecompute(w, req)
			return w
		}

		Convey("When the recompute succeeds", func() {
			So(post().Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the dataset is empty", func() {
			deps.recomputeErr = pipeline.ErrEmptyPopulation
			So(post().Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When the dataset holds a degenerate record", func() {
			deps.recomputeErr = model.ErrDegenerateRecord
			So(post().Code, ShouldEqual, http.StatusConflict)
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given the stats handler", t, func() {
		h := api.NewStatsHandler(newFakeDeps())

		Convey("When requesting stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			h.HandleStats(w, req)

			Convey("Then the stats payload should come back as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&stats), ShouldBeNil)
				So(stats["datasetSize"], ShouldEqual, 3)
			})
		})
	})
}

func TestServerRegister(t *testing.T) {
	Convey("Given a fully registered server", t, func() {
		deps := newFakeDeps()
		srv := api.NewServer(deps, deps, 500, 50)
		mux := http.NewServeMux()
		srv.Register(context.Background(), mux)

		Convey("When hitting the health endpoint", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("When hitting the metrics endpoint", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}
