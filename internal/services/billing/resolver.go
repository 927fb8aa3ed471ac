package billing

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNoBillingEntity means the company has no billing entity configured.
var ErrNoBillingEntity = errors.New("no billing entity configured")

type BillingEntity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
}

// Resolver maps free-text billing entity names to configured entities.
type Resolver struct {
	byName   map[string]BillingEntity
	fallback BillingEntity
}

// NewResolver fails with ErrNoBillingEntity when entities is empty. The
// fallback is the first entity flagged default, else the first entity.
func NewResolver(entities []BillingEntity) (*Resolver, error) {
	if len(entities) == 0 {
		return nil, ErrNoBillingEntity
	}

	r := &Resolver{
		byName:   make(map[string]BillingEntity, len(entities)),
		fallback: entities[0],
	}
	foundDefault := false
	for _, e := range entities {
		key := nameKey(e.Name)
		if _, dup := r.byName[key]; !dup && key != "" {
			r.byName[key] = e
		}
		if e.IsDefault && !foundDefault {
			r.fallback = e
			foundDefault = true
		}
	}
	return r, nil
}

// Resolve always returns an entity id.
func (r *Resolver) Resolve(name string) uuid.UUID {
	return r.Entity(name).ID
}

func (r *Resolver) Entity(name string) BillingEntity {
	if e, ok := r.byName[nameKey(name)]; ok {
		return e
	}
	return r.fallback
}

func (r *Resolver) Default() BillingEntity {
	return r.fallback
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
