package translator

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultProviderName is used when no provider is configured.
const DefaultProviderName = "mymemory"

// Registry stores translation providers and resolves a default provider.
type Registry struct {
	providers       map[string]Provider
	defaultProvider string
}

func NewRegistry(defaultProvider string) *Registry {
	name := normalizeProviderName(defaultProvider)
	if name == "" {
		name = DefaultProviderName
	}
	return &Registry{
		providers:       make(map[string]Provider),
		defaultProvider: name,
	}
}

// Register adds one provider, replacing any provider with the same name.
func (r *Registry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	name := normalizeProviderName(provider.Name())
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	r.providers[name] = provider
	return nil
}

// Provider resolves a provider by name. Empty names use the default provider.
func (r *Registry) Provider(name string) (Provider, error) {
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("%w: no translation providers are registered", ErrTranslationUnavailable)
	}

	resolved := normalizeProviderName(name)
	if resolved == "" {
		resolved = r.defaultProvider
	}
	if provider, ok := r.providers[resolved]; ok {
		return provider, nil
	}

	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, resolved, strings.Join(r.ProviderNames(), ", "))
}

func (r *Registry) DefaultProvider() string {
	return r.defaultProvider
}

func (r *Registry) ProviderNames() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
