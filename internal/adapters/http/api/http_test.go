package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/boutstats/internal/adapters/http/api"
	service "github.com/okian/boutstats/internal/app"
	"github.com/okian/boutstats/internal/domain/analytics"
	"github.com/okian/boutstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)


func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func newMux() *http.ServeMux {
	svc := service.New(service.WithEngineOptions(analytics.WithPrecision(1)))
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	dec := json.NewDecoder(w.Body)
	dec.UseNumber()
	So(dec.Decode(&out), ShouldBeNil)
	return out
}

func TestBoutsAPI(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux()

		Convey("When creating a bout", func() {
			w := do(mux, http.MethodPost, "/bouts", `{"bout_id":"b1","duration_seconds":180,"competitor_a":"Red","competitor_b":"Blue"}`)

			Convey("Then it is created and can be fetched", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode(w)["bout_id"], ShouldEqual, "b1")

				got := do(mux, http.MethodGet, "/bouts/b1", "")
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decode(got)["competitor_b"], ShouldEqual, "Blue")
			})

			Convey("And creating it again conflicts", func() {
				again := do(mux, http.MethodPost, "/bouts", `{"bout_id":"b1","duration_seconds":60}`)
				So(again.Code, ShouldEqual, http.StatusConflict)
				So(decode(again)["code"], ShouldEqual, "conflict")
			})
		})

		Convey("When creating a bout without an id", func() {
			w := do(mux, http.MethodPost, "/bouts", `{"duration_seconds":60}`)

			Convey("Then an id is assigned", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode(w)["bout_id"], ShouldNotBeEmpty)
			})
		})

		Convey("When the body is malformed or the duration invalid", func() {
			bad := do(mux, http.MethodPost, "/bouts", `{"duration_seconds":`)
			zero := do(mux, http.MethodPost, "/bouts", `{"duration_seconds":0}`)

			Convey("Then both are bad requests", func() {
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(zero.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching an unknown bout", func() {
			w := do(mux, http.MethodGet, "/bouts/missing", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestEventsAndAnalyticsAPI(t *testing.T) {
	Convey("Given a registered thirty second bout", t, func() {
		mux := newMux()
		So(do(mux, http.MethodPost, "/bouts", `{"bout_id":"b1","duration_seconds":30}`).Code, ShouldEqual, http.StatusCreated)

		Convey("When events are posted", func() {
			first := do(mux, http.MethodPost, "/bouts/b1/events", `{"event_id":"e1","elapsed_seconds":10,"kind":"score","scorer":"A","score_diff_after":1}`)
			replay := do(mux, http.MethodPost, "/bouts/b1/events", `{"event_id":"e1","elapsed_seconds":10,"kind":"score","scorer":"A","score_diff_after":1}`)
			card := do(mux, http.MethodPost, "/bouts/b1/events", `{"event_id":"c1","kind":"card"}`)

			Convey("Then new events are accepted and replays are flagged", func() {
				So(first.Code, ShouldEqual, http.StatusAccepted)
				So(decode(first)["status"], ShouldEqual, "accepted")
				So(replay.Code, ShouldEqual, http.StatusOK)
				So(decode(replay)["duplicate"], ShouldEqual, true)
				So(card.Code, ShouldEqual, http.StatusAccepted)
			})

			Convey("And analytics reflect them exactly", func() {
				w := do(mux, http.MethodGet, "/bouts/b1/analytics", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, `"time_leading_pct":{"a":66.7,"b":0,"tied":33.3}`)
				So(body, ShouldContainSubstring, `"bounce_back_seconds":{"a":null,"b":null}`)
				So(body, ShouldContainSubstring, `"skipped_events":1`)
				So(body, ShouldContainSubstring, `"issues":[]`)
			})
		})

		Convey("When an event falls outside the bout", func() {
			w := do(mux, http.MethodPost, "/bouts/b1/events", `{"event_id":"e9","elapsed_seconds":31,"kind":"score","scorer":"a","score_diff_after":1}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When posting to an unknown bout", func() {
			w := do(mux, http.MethodPost, "/bouts/zzz/events", `{"event_id":"e1","kind":"card"}`)
			a := do(mux, http.MethodGet, "/bouts/zzz/analytics", "")

			Convey("Then both are not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(a.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestComputeAPI(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux()

		Convey("When computing a bout sent in the body", func() {
			w := do(mux, http.MethodPost, "/analytics", `{
				"bout": {"duration_seconds": 100},
				"events": [
					{"elapsed_seconds": 20, "kind": "score", "scorer": "b", "score_diff_after": -1},
					{"elapsed_seconds": 60, "kind": "score", "scorer": "a", "score_diff_after": 0}
				]
			}`)

			Convey("Then the statistics are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				pct := out["time_leading_pct"].(map[string]any)
				So(pct["b"], ShouldEqual, json.Number("40"))
				So(pct["tied"], ShouldEqual, json.Number("60"))
				bb := out["bounce_back_seconds"].(map[string]any)
				So(bb["a"], ShouldEqual, json.Number("40"))
				So(bb["b"], ShouldBeNil)
			})
		})

		Convey("When the engine rejects the input", func() {
			w := do(mux, http.MethodPost, "/analytics", `{"bout":{"duration_seconds":10},"events":[{"elapsed_seconds":-1,"kind":"card"}]}`)

			Convey("Then statistics are unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decode(w)["code"], ShouldEqual, "stats_unavailable")
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux()

		Convey("When scraping health and stats", func() {
			health := do(mux, http.MethodGet, "/healthz", "")
			stats := do(mux, http.MethodGet, "/stats", "")

			Convey("Then metrics and stats are served", func() {
				So(health.Code, ShouldEqual, http.StatusOK)
				So(health.Body.String(), ShouldContainSubstring, "boutstats_")
				So(stats.Code, ShouldEqual, http.StatusOK)
				So(decode(stats), ShouldContainKey, "totalBouts")
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodDelete, "/bouts", "")

			Convey("Then the mux refuses it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}
