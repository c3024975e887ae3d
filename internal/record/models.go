package record

import "strings"

// Record is a typed value of one of the registered kinds. Records are
// stored once and never updated.
type Record interface {
	record()
}

// Document is the schema-less stored representation of a record, returned
// verbatim by the store (including its "_id").
type Document map[string]any

// Account is a customer account. Plans, consultations and service tickets
// refer to it by email.
type Account struct {
	Vorname        string  `json:"vorname" bson:"vorname" binding:"required"`
	Nachname       string  `json:"nachname" bson:"nachname" binding:"required"`
	Email          string  `json:"email" bson:"email" binding:"required,email"`
	Telefon        *string `json:"telefon" bson:"telefon"`
	Rolle          string  `json:"rolle" bson:"rolle"`
	MarketingOptIn bool    `json:"marketing_opt_in" bson:"marketing_opt_in"`
}

// Plan is a home planning project owned by an account.
type Plan struct {
	AccountEmail string   `json:"account_email" bson:"account_email" binding:"required,email"`
	Titel        string   `json:"titel" bson:"titel" binding:"required"`
	Beschreibung *string  `json:"beschreibung" bson:"beschreibung"`
	Status       string   `json:"status" bson:"status"`
	Budget       *float64 `json:"budget" bson:"budget" binding:"omitempty,gte=0"`
}

// Angebot is an offer, optionally tied to a plan. PlanID is a free-form
// back-reference and is never checked against stored plans.
type Angebot struct {
	PlanID     *string    `json:"plan_id" bson:"plan_id"`
	Titel      string     `json:"titel" bson:"titel" binding:"required"`
	Preis      *float64   `json:"preis" bson:"preis" binding:"required,gte=0"`
	GueltigBis *Timestamp `json:"gueltig_bis" bson:"gueltig_bis"`
	Status     string     `json:"status" bson:"status"`
}

// Beratung is a consultation request.
type Beratung struct {
	AccountEmail      string  `json:"account_email" bson:"account_email" binding:"required,email"`
	Thema             string  `json:"thema" bson:"thema" binding:"required"`
	Nachricht         *string `json:"nachricht" bson:"nachricht"`
	BevorzugterTermin *string `json:"bevorzugter_termin" bson:"bevorzugter_termin"`
}

// ServiceTicket is an after-sales support ticket.
type ServiceTicket struct {
	AccountEmail string `json:"account_email" bson:"account_email" binding:"required,email"`
	Kategorie    string `json:"kategorie" bson:"kategorie" binding:"required"`
	Beschreibung string `json:"beschreibung" bson:"beschreibung" binding:"required"`
	Prioritaet   string `json:"prioritaet" bson:"prioritaet"`
	Status       string `json:"status" bson:"status"`
}

// Inspiration is a published idea with free-form tags.
// Tags starts out empty; an explicit null fails the required check.
type Inspiration struct {
	Titel        string   `json:"titel" bson:"titel" binding:"required"`
	Tags         []string `json:"tags" bson:"tags" binding:"required"`
	BildURL      *string  `json:"bild_url" bson:"bild_url"`
	Beschreibung *string  `json:"beschreibung" bson:"beschreibung"`
}

func (*Account) record()       {}
func (*Plan) record()          {}
func (*Angebot) record()       {}
func (*Beratung) record()      {}
func (*ServiceTicket) record() {}
func (*Inspiration) record()   {}

// NewAccount returns an Account carrying its defaults.
func NewAccount() *Account { return &Account{Rolle: "kunde"} }

func NewPlan() *Plan { return &Plan{Status: "in_planung"} }

func NewAngebot() *Angebot { return &Angebot{Status: "entwurf"} }

func NewBeratung() *Beratung { return &Beratung{} }

func NewServiceTicket() *ServiceTicket {
	return &ServiceTicket{Prioritaet: "normal", Status: "offen"}
}

func NewInspiration() *Inspiration { return &Inspiration{Tags: []string{}} }

// NormalizeEmail lowercases the domain part of an address. The local part
// is kept as given.
func NormalizeEmail(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return s
	}
	return s[:at+1] + strings.ToLower(s[at+1:])
}

type normalizer interface {
	normalize()
}

// Normalize rewrites the email fields of rec into their stored form.
func Normalize(rec Record) {
	if n, ok := rec.(normalizer); ok {
		n.normalize()
	}
}

func (a *Account) normalize()       { a.Email = NormalizeEmail(a.Email) }
func (p *Plan) normalize()          { p.AccountEmail = NormalizeEmail(p.AccountEmail) }
func (b *Beratung) normalize()      { b.AccountEmail = NormalizeEmail(b.AccountEmail) }
func (s *ServiceTicket) normalize() { s.AccountEmail = NormalizeEmail(s.AccountEmail) }
