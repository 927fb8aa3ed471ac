package matching

import (
	"github.com/google/uuid"

	"leasing-import-backend/internal/services/importer"
)

// NewClient is a client that does not exist yet. Key is the dossier number
// that introduced it and Identity merges every dossier assigned to it.
type NewClient struct {
	Key      string
	Identity importer.ClientIdentity
}

// PlanNewClients assigns every dossier without a match to a client to be
// created. Dossiers are walked in order and each one is matched, with the
// same strategies as Match, against the clients planned before it, so two
// dossiers the matcher would link on a later run share one client now.
func PlanNewClients(contracts []importer.GroupedContract, matches map[string]ClientMatch, strategies ...Strategy) map[string]*NewClient {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	dir := NewDirectory(nil)
	byID := make(map[uuid.UUID]*NewClient)
	out := make(map[string]*NewClient)

	for _, gc := range contracts {
		if _, done := out[gc.DossierNumber]; done {
			continue
		}
		if m, ok := matches[gc.DossierNumber]; ok && m.Matched {
			continue
		}

		var nc *NewClient
		for _, s := range strategies {
			if rec, ok := s.Find(gc.Client, dir); ok {
				nc = byID[rec.ID]
				mergeIdentity(&nc.Identity, gc.Client)
				dir.replace(rec.ID, nc.Identity)
				break
			}
		}
		if nc == nil {
			nc = &NewClient{Key: gc.DossierNumber, Identity: gc.Client}
			id := uuid.New()
			byID[id] = nc
			dir.add(id, nc.Identity)
		}
		out[gc.DossierNumber] = nc
	}
	return out
}

// mergeIdentity fills the empty fields of dst from src.
func mergeIdentity(dst *importer.ClientIdentity, src importer.ClientIdentity) {
	fill := func(d *string, s string) {
		if *d == "" {
			*d = s
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.Company, src.Company)
	fill(&dst.Email, src.Email)
	fill(&dst.Phone, src.Phone)
	fill(&dst.VATNumber, src.VATNumber)
	fill(&dst.Address, src.Address)
	fill(&dst.City, src.City)
	fill(&dst.PostalCode, src.PostalCode)
	fill(&dst.Country, src.Country)
}

func (d *Directory) add(id uuid.UUID, c importer.ClientIdentity) {
	d.entries = append(d.entries, newEntry(ClientRecord{ID: id, Name: c.Name, Company: c.Company, VATNumber: c.VATNumber}))
}

func (d *Directory) replace(id uuid.UUID, c importer.ClientIdentity) {
	for i := range d.entries {
		if d.entries[i].record.ID == id {
			d.entries[i] = newEntry(ClientRecord{ID: id, Name: c.Name, Company: c.Company, VATNumber: c.VATNumber})
			return
		}
	}
}
