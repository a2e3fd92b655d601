package models

import "fmt"

// ScopeKind selects which upstream API surface a deployment is bound to.
type ScopeKind string

const (
	ScopeOrganization ScopeKind = "organization"
	ScopeEnterprise   ScopeKind = "enterprise"
)

// Scope identifies the enterprise or organization a metrics or seat query is
// bound to. The two kinds are mutually exclusive per deployment.
type Scope struct {
	Kind ScopeKind
	Name string
}

func (s Scope) IsEnterprise() bool { return s.Kind == ScopeEnterprise }

func (s Scope) String() string {
	return fmt.Sprintf("%s/%s", s.Kind, s.Name)
}

// Validate ensures the scope carries a kind and an identifier.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeOrganization, ScopeEnterprise:
	default:
		return fmt.Errorf("unknown scope kind %q", s.Kind)
	}
	if s.Name == "" {
		return fmt.Errorf("scope %s missing identifier", s.Kind)
	}
	return nil
}
