package matching

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"leasing-import-backend/internal/services/importer"
)

type MatchType string

const (
	MatchVAT     MatchType = "vat"
	MatchCompany MatchType = "company"
	MatchName    MatchType = "name"
	MatchNone    MatchType = "none"
)

// ClientRecord is a known client of the tenant. It is never written by the matcher.
type ClientRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	VATNumber string    `json:"vat_number"`
}

type ClientMatch struct {
	Matched   bool          `json:"matched"`
	Client    *ClientRecord `json:"client,omitempty"`
	MatchType MatchType     `json:"match_type"`
}

type entry struct {
	record  ClientRecord
	vat     string
	name    string
	company string
}

// Directory is a read-only snapshot of the client list with its comparison
// keys computed once.
type Directory struct {
	entries []entry
}

func NewDirectory(records []ClientRecord) *Directory {
	d := &Directory{entries: make([]entry, 0, len(records))}
	for _, r := range records {
		d.entries = append(d.entries, newEntry(r))
	}
	return d
}

func newEntry(r ClientRecord) entry {
	return entry{
		record:  r,
		vat:     NormalizeVAT(r.VATNumber),
		name:    Canonicalize(r.Name),
		company: Canonicalize(r.Company),
	}
}

func (d *Directory) Len() int {
	return len(d.entries)
}

// Strategy finds the first directory record that satisfies one rule.
type Strategy struct {
	Type MatchType
	Find func(c importer.ClientIdentity, d *Directory) (ClientRecord, bool)
}

// DefaultStrategies are evaluated in order; the first hit wins.
var DefaultStrategies = []Strategy{
	{Type: MatchVAT, Find: byVAT},
	{Type: MatchCompany, Find: byCompany},
	{Type: MatchName, Find: byName},
}

func byVAT(c importer.ClientIdentity, d *Directory) (ClientRecord, bool) {
	key := NormalizeVAT(c.VATNumber)
	if key == "" {
		return ClientRecord{}, false
	}
	for _, e := range d.entries {
		if e.vat == key {
			return e.record, true
		}
	}
	return ClientRecord{}, false
}

func byCompany(c importer.ClientIdentity, d *Directory) (ClientRecord, bool) {
	return byCanonical(Canonicalize(c.Company), d)
}

func byName(c importer.ClientIdentity, d *Directory) (ClientRecord, bool) {
	return byCanonical(Canonicalize(c.Name), d)
}

// byCanonical compares the key against both the company and the name of
// each record.
func byCanonical(key string, d *Directory) (ClientRecord, bool) {
	if key == "" {
		return ClientRecord{}, false
	}
	for _, e := range d.entries {
		if e.company == key || e.name == key {
			return e.record, true
		}
	}
	return ClientRecord{}, false
}

type Matcher struct {
	dir        *Directory
	strategies []Strategy
}

// NewMatcher uses DefaultStrategies when none are given.
func NewMatcher(dir *Directory, strategies ...Strategy) *Matcher {
	if dir == nil {
		dir = NewDirectory(nil)
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Matcher{dir: dir, strategies: strategies}
}

func (m *Matcher) Match(c importer.ClientIdentity) ClientMatch {
	for _, s := range m.strategies {
		if rec, ok := s.Find(c, m.dir); ok {
			return ClientMatch{Matched: true, Client: &rec, MatchType: s.Type}
		}
	}
	return ClientMatch{MatchType: MatchNone}
}

// MatchAll computes one match per dossier number.
func (m *Matcher) MatchAll(contracts []importer.GroupedContract) map[string]ClientMatch {
	out := make(map[string]ClientMatch, len(contracts))
	for _, gc := range contracts {
		if _, done := out[gc.DossierNumber]; done {
			continue
		}
		out[gc.DossierNumber] = m.Match(gc.Client)
	}
	return out
}

// NormalizeVAT drops whitespace, dots and hyphens and upper-cases the rest.
func NormalizeVAT(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' || r == '-' {
			return -1
		}
		return r
	}, s))
}

// Canonicalize folds accents, lower-cases, keeps only letters, digits and
// single spaces.
func Canonicalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IdentityKey is the stored match key of a client: the VAT number when
// present, then the company, then the name.
func IdentityKey(c importer.ClientIdentity) string {
	if vat := NormalizeVAT(c.VATNumber); vat != "" {
		return "vat:" + vat
	}
	if company := Canonicalize(c.Company); company != "" {
		return "company:" + company
	}
	return "name:" + Canonicalize(c.Name)
}
