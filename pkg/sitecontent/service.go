package sitecontent

import (
	"fmt"
	"time"

	"github.com/gridironhq/site-content/pkg/sitecontent/audit"
)

// Option represents a functional option for configuring the service
type Option func(*service)

// WithObjectStore sets the object store backing the service.
func WithObjectStore(store ObjectStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithSections replaces the section registry.
func WithSections(sections map[string]SectionSpec) Option {
	return func(s *service) {
		s.sections = sections
	}
}

// WithAuditLog records every successful write to the given repository.
// Recording is best-effort: failures downgrade to result warnings.
func WithAuditLog(repo audit.Repository) Option {
	return func(s *service) {
		s.audit = repo
	}
}

// WithClock overrides the wall clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		sections: DefaultSections(),
		now:      time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("object store is required")
	}

	return s, nil
}
