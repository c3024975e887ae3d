package record

import "strings"

// Kind describes one record category: how it is addressed in storage, which
// query parameters its list endpoint understands and how a new value is made.
type Kind struct {
	// Name is the type name; the collection is derived from it.
	Name string
	// Path is the HTTP route segment.
	Path string
	// Message is the confirmation returned after a successful create.
	Message string
	Params  []FilterParam
	New     func() Record
}

// Collection returns the storage collection for the kind.
func (k Kind) Collection() string {
	return strings.ToLower(k.Name)
}

var (
	AccountKind = Kind{
		Name:    "Account",
		Path:    "account",
		Message: "Account angelegt",
		Params: []FilterParam{
			{Name: "email", Field: "email", Match: Equals, Email: true},
		},
		New: func() Record { return NewAccount() },
	}
	PlanKind = Kind{
		Name:    "Plan",
		Path:    "plan",
		Message: "Plan erstellt",
		Params: []FilterParam{
			{Name: "account_email", Field: "account_email", Match: Equals, Email: true},
		},
		New: func() Record { return NewPlan() },
	}
	AngebotKind = Kind{
		Name:    "Angebot",
		Path:    "angebot",
		Message: "Angebot erstellt",
		Params: []FilterParam{
			{Name: "plan_id", Field: "plan_id", Match: Equals},
			{Name: "status", Field: "status", Match: Equals},
		},
		New: func() Record { return NewAngebot() },
	}
	BeratungKind = Kind{
		Name:    "Beratung",
		Path:    "beratung",
		Message: "Beratungsanfrage erfasst",
		Params: []FilterParam{
			{Name: "account_email", Field: "account_email", Match: Equals, Email: true},
		},
		New: func() Record { return NewBeratung() },
	}
	ServiceTicketKind = Kind{
		Name:    "ServiceTicket",
		Path:    "service",
		Message: "Service-Ticket erstellt",
		Params: []FilterParam{
			{Name: "account_email", Field: "account_email", Match: Equals, Email: true},
			{Name: "status", Field: "status", Match: Equals},
		},
		New: func() Record { return NewServiceTicket() },
	}
	InspirationKind = Kind{
		Name:    "Inspiration",
		Path:    "inspiration",
		Message: "Inspiration veröffentlicht",
		Params: []FilterParam{
			{Name: "tag", Field: "tags", Match: Contains},
		},
		New: func() Record { return NewInspiration() },
	}
)

// Kinds returns every registered kind in route order.
func Kinds() []Kind {
	return []Kind{AccountKind, PlanKind, AngebotKind, BeratungKind, ServiceTicketKind, InspirationKind}
}
