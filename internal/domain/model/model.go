// Package model contains domain models passed between layers.
package model

// Position is a finishing place assigned when an event is ended.
type Position int

// Valid finishing positions.
const (
	First  Position = 1
	Second Position = 2
	Third  Position = 3
)

// Valid reports whether p is an awardable finishing place.
func (p Position) Valid() bool {
	return p >= First && p <= Third
}

// Registration is one entrant/team entry sourced from the registrations
// spreadsheet. The core never mutates it outside the documented write-back
// operations on the registry.
type Registration struct {
	RegNo   string
	Event   string
	College string
	Contact string
	Email   string
	Leader  string
	Members []string
	// Extra holds values from loosely named roster columns
	// ("participants", "students", ...) that are not part of the mapping.
	Extra []string
}

// RegistrationStatus is the per-registration mutable lifecycle record.
// The set of these records is the single source of truth for where each
// registration is in the event lifecycle.
type RegistrationStatus struct {
	Event          string    `json:"event"`
	Reported       bool      `json:"reported"`
	EventStarted   bool      `json:"event_started"`
	EventEnded     bool      `json:"event_ended"`
	Position       *Position `json:"position,omitempty"`
	RosterOverride []string  `json:"team_override,omitempty"`
}

// Clone returns a deep copy of the status record.
func (s *RegistrationStatus) Clone() *RegistrationStatus {
	if s == nil {
		return nil
	}
	out := *s
	if s.Position != nil {
		p := *s.Position
		out.Position = &p
	}
	if s.RosterOverride != nil {
		out.RosterOverride = append([]string(nil), s.RosterOverride...)
	}
	return &out
}

// StatusDoc is the durable form of the status store: one document mapping
// registration number to its lifecycle record.
type StatusDoc map[string]*RegistrationStatus

// Clone returns a deep copy so transactions can mutate freely without
// aliasing the committed snapshot.
func (d StatusDoc) Clone() StatusDoc {
	out := make(StatusDoc, len(d))
	for regNo, st := range d {
		out[regNo] = st.Clone()
	}
	return out
}

// Winner is one finishing entry inside an event aggregate.
type Winner struct {
	RegNo   string   `json:"reg_no"`
	Roster  []string `json:"team"`
	College string   `json:"college,omitempty"`
}

// EventAggregate is the derived per-event state, folded on read from all
// status records sharing the event name. It is never stored.
type EventAggregate struct {
	Event        string              `json:"event"`
	EventStarted bool                `json:"event_started"`
	EventEnded   bool                `json:"event_ended"`
	Rating       int                 `json:"rating"`
	Winners      map[Position]Winner `json:"winners"`
}

// Win records one scored finish attributed to a college.
type Win struct {
	Event    string   `json:"event"`
	Position Position `json:"position"`
	Rating   int      `json:"rating"`
	Points   int      `json:"points"`
}

// CollegeStanding is one row of the championship table.
type CollegeStanding struct {
	College     string `json:"college"`
	TotalPoints int    `json:"total_points"`
	Wins        []Win  `json:"wins"`
}

// ColumnMap tells the registry which spreadsheet columns carry which fields.
// TeamMembers is ordered; member slots are read in this order.
type ColumnMap struct {
	RegNo          string   `json:"reg_no"`
	Event          string   `json:"event"`
	College        string   `json:"college"`
	TeamLeader     string   `json:"team_leader"`
	TeamMembers    []string `json:"team_members"`
	Contact        string   `json:"contact,omitempty"`
	SpecifyCollege string   `json:"specify_college,omitempty"`
}

// Complete reports whether the mapping covers the columns every read path
// depends on.
func (m ColumnMap) Complete() bool {
	return m.RegNo != "" && m.Event != "" && m.College != ""
}
