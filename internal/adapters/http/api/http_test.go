package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/mela/internal/adapters/http/api"
	"github.com/okian/mela/internal/adapters/registry"
	"github.com/okian/mela/internal/adapters/statestore"
	"github.com/okian/mela/internal/domain/model"
	"github.com/okian/mela/internal/domain/scoring"
	"github.com/okian/mela/internal/lifecycle"
	. "github.com/smartystreets/goconvey/convey"
)

// mockService implements api.Dependencies with injectable failures.
type mockService struct {
	err      error
	reported []string
	started  []string
	ended    map[string]map[string]model.Position
	reset    []string
	rosters  map[string][]string
	ratings  map[string]int
	codes    map[string]string
	regs     map[string]model.Registration
}

func newMockService() *mockService {
	return &mockService{
		ended:   map[string]map[string]model.Position{},
		rosters: map[string][]string{},
		ratings: map[string]int{},
		codes:   map[string]string{"Chess": "CHS123"},
		regs: map[string]model.Registration{
			"R-1": {RegNo: "R-1", Event: "Chess", College: "St. Aloysius", Leader: "Ann"},
		},
	}
}

func (m *mockService) MarkReported(_ context.Context, regNo string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.regs[regNo]; !ok {
		return registry.ErrNotFound
	}
	m.reported = append(m.reported, regNo)
	return nil
}

func (m *mockService) StartEvent(_ context.Context, event string) error {
	if m.err != nil {
		return m.err
	}
	m.started = append(m.started, event)
	return nil
}

func (m *mockService) EndEvent(_ context.Context, event string, winners map[string]model.Position) error {
	if m.err != nil {
		return m.err
	}
	m.ended[event] = winners
	return nil
}

func (m *mockService) ResetWinners(_ context.Context, event string) error {
	if m.err != nil {
		return m.err
	}
	m.reset = append(m.reset, event)
	return nil
}

func (m *mockService) LookupRegistration(_ context.Context, regNo string) (model.Registration, error) {
	if m.err != nil {
		return model.Registration{}, m.err
	}
	reg, ok := m.regs[regNo]
	if !ok {
		return model.Registration{}, registry.ErrNotFound
	}
	return reg, nil
}

func (m *mockService) SpotRegister(_ context.Context, reg model.Registration) (model.Registration, error) {
	if m.err != nil {
		return model.Registration{}, m.err
	}
	if _, ok := m.regs[reg.RegNo]; ok {
		return model.Registration{}, registry.ErrDuplicateRegistration
	}
	if reg.RegNo == "" {
		reg.RegNo = "SPOT-TEST"
	}
	m.regs[reg.RegNo] = reg
	return reg, nil
}

func (m *mockService) GetColumns(_ context.Context) ([]string, error) {
	return []string{"Reg No", "Event Name"}, m.err
}

func (m *mockService) GetColumnMap(_ context.Context) (model.ColumnMap, error) {
	return model.ColumnMap{}, registry.ErrMappingNotSet
}

func (m *mockService) SetColumnMap(_ context.Context, _ model.ColumnMap) error {
	return m.err
}

func (m *mockService) GetRoster(_ context.Context, regNo string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if names, ok := m.rosters[regNo]; ok {
		return names, nil
	}
	reg, ok := m.regs[regNo]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return []string{reg.Leader}, nil
}

func (m *mockService) SetRosterOverride(_ context.Context, regNo string, names []string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.rosters[regNo] = names
	return names, nil
}

func (m *mockService) ListEvents(_ context.Context) ([]string, error) {
	return []string{"Chess"}, m.err
}

func (m *mockService) GetEventAggregate(_ context.Context, event string) (model.EventAggregate, error) {
	if m.err != nil {
		return model.EventAggregate{}, m.err
	}
	return model.EventAggregate{Event: event, Rating: 3}, nil
}

func (m *mockService) GetAllAggregates(_ context.Context) (map[string]model.EventAggregate, error) {
	return map[string]model.EventAggregate{"Chess": {Event: "Chess", Rating: 3}}, m.err
}

func (m *mockService) GetChampionStandings(_ context.Context) ([]model.CollegeStanding, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []model.CollegeStanding{{College: "St. Aloysius", TotalPoints: 70}}, nil
}

func (m *mockService) ReportedTeams(_ context.Context, event string) ([]lifecycle.ReportedTeam, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return []lifecycle.ReportedTeam{{RegNo: "R-1", College: "St. Aloysius"}}, true, nil
}

func (m *mockService) CompletedEntries(_ context.Context) (map[string]lifecycle.CompletedEntry, error) {
	return map[string]lifecycle.CompletedEntry{}, m.err
}

func (m *mockService) GetRatings(_ context.Context) (map[string]int, error) {
	return m.ratings, m.err
}

func (m *mockService) GetRating(_ context.Context, event string) (int, error) {
	return m.ratings[event], m.err
}

func (m *mockService) SetRating(_ context.Context, event string, rating int) error {
	if m.err != nil {
		return m.err
	}
	if rating < 1 || rating > 5 {
		return statestore.ErrInvalidRating
	}
	m.ratings[event] = rating
	return nil
}

func (m *mockService) GetRequirements(_ context.Context, event string) scoring.TeamRequirement {
	return scoring.Requirements(event)
}

func (m *mockService) VerifyEventCode(_ context.Context, event, code string) (bool, bool, error) {
	if m.err != nil {
		return false, false, m.err
	}
	want, ok := m.codes[event]
	if !ok {
		return false, false, nil
	}
	return strings.EqualFold(want, code), true, nil
}

func (m *mockService) SetEventCode(_ context.Context, event, code string) error {
	if m.err != nil {
		return m.err
	}
	m.codes[event] = code
	return nil
}

func (m *mockService) InitEventCodes(_ context.Context) (map[string]string, error) {
	return map[string]string{"Mime": "ABC123"}, m.err
}

type mockStatsProvider struct{}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(svc *mockService) *http.ServeMux {
	server := api.NewServer(svc, &mockStatsProvider{})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("Then the health endpoint responds", func() {
			w := do(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint responds", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "started")
		})

		Convey("Then the metrics endpoint responds", func() {
			w := do(mux, "GET", "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestLifecycleEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("When reporting a known registration", func() {
			w := do(mux, "POST", "/report", `{"reg_no":"R-1"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.reported, ShouldResemble, []string{"R-1"})
		})

		Convey("When reporting an unknown registration", func() {
			w := do(mux, "POST", "/report", `{"reg_no":"R-404"}`)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the report body is missing the number", func() {
			w := do(mux, "POST", "/report", `{}`)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the report body is not JSON", func() {
			w := do(mux, "POST", "/report", `not json`)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the event is already finalized", func() {
			svc.err = lifecycle.ErrEventLocked
			w := do(mux, "POST", "/report", `{"reg_no":"R-1"}`)

			So(w.Code, ShouldEqual, http.StatusConflict)

			var resp map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "event_locked")
		})

		Convey("When starting an event", func() {
			w := do(mux, "POST", "/events/start", `{"event":"Chess"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.started, ShouldResemble, []string{"Chess"})
		})

		Convey("When ending an event with winners", func() {
			w := do(mux, "POST", "/events/end", `{"event":"Chess","winners":{"R-1":1,"R-2":2}}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.ended["Chess"]["R-1"], ShouldEqual, model.First)
			So(svc.ended["Chess"]["R-2"], ShouldEqual, model.Second)
		})

		Convey("When the winner data is rejected", func() {
			svc.err = lifecycle.ErrInvalidWinnerData
			w := do(mux, "POST", "/events/end", `{"event":"Chess","winners":{"R-1":1}}`)

			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When the store is busy", func() {
			svc.err = statestore.ErrBusy
			w := do(mux, "POST", "/events/end", `{"event":"Chess","winners":{"R-1":1}}`)

			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When resetting winners", func() {
			w := do(mux, "POST", "/events/reset", `{"event":"Chess"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.reset, ShouldResemble, []string{"Chess"})
		})

		Convey("When there is nothing to reset", func() {
			svc.err = lifecycle.ErrNothingToReset
			w := do(mux, "POST", "/events/reset", `{"event":"Chess"}`)

			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When using the wrong method", func() {
			w := do(mux, "GET", "/report", "")

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRosterEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("When fetching a roster by registration number", func() {
			w := do(mux, "GET", "/roster/R-1", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Ann")
		})

		Convey("When the roster path is empty", func() {
			w := do(mux, "GET", "/roster/", "")

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When setting a roster override", func() {
			w := do(mux, "POST", "/roster", `{"reg_no":"R-1","team":["Zoe","Yan"]}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.rosters["R-1"], ShouldResemble, []string{"Zoe", "Yan"})
		})
	})
}

func TestEventsEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("When listing events", func() {
			w := do(mux, "GET", "/events", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Chess")
		})

		Convey("When fetching one aggregate", func() {
			w := do(mux, "GET", "/events/aggregate?event=Chess", "")

			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the aggregate query lacks an event", func() {
			w := do(mux, "GET", "/events/aggregate", "")

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching all aggregates", func() {
			w := do(mux, "GET", "/events/aggregates", "")

			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When fetching the standings", func() {
			w := do(mux, "GET", "/standings", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "St. Aloysius")
		})

		Convey("When fetching reported teams", func() {
			w := do(mux, "GET", "/events/reported?event=Chess", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("When fetching completed entries", func() {
			w := do(mux, "GET", "/events/completed", "")

			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestRatingsAndCodesEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("When setting and reading ratings", func() {
			w := do(mux, "POST", "/ratings", `{"event":"Chess","rating":4}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			w = do(mux, "GET", "/ratings", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"Chess":4`)
		})

		Convey("When setting an invalid rating", func() {
			w := do(mux, "POST", "/ratings", `{"event":"Chess","rating":9}`)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching requirements", func() {
			w := do(mux, "GET", "/requirements?event=Mime", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"min":6`)
		})

		Convey("When verifying a correct code", func() {
			w := do(mux, "POST", "/codes/verify", `{"event":"Chess","code":"chs123"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"valid":true`)
		})

		Convey("When verifying a code for an unconfigured event", func() {
			w := do(mux, "POST", "/codes/verify", `{"event":"Mime","code":"chs123"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"configured":false`)
		})

		Convey("When initializing codes", func() {
			w := do(mux, "POST", "/codes/init", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Mime")
		})
	})
}

func TestRegistrationEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("When looking up a registration", func() {
			w := do(mux, "POST", "/registrations/lookup", `{"reg_no":"R-1"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "St. Aloysius")
		})

		Convey("When submitting a spot registration", func() {
			w := do(mux, "POST", "/registrations", `{"event":"Chess","college":"X","contact":"1","email":"a@x.test","leader":"Ann"}`)

			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldContainSubstring, "SPOT-TEST")
		})

		Convey("When the registration number already exists", func() {
			w := do(mux, "POST", "/registrations", `{"reg_no":"R-1","event":"Chess","college":"X","contact":"1","email":"a@x.test"}`)

			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When reading the columns", func() {
			w := do(mux, "GET", "/columns", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Reg No")
		})
	})
}
