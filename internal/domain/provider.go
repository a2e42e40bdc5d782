package domain

import "strings"

// Provider identifies the origin domain of a request. The set is closed.
type Provider string

const (
	ProviderGitHub        Provider = "github"
	ProviderSlack         Provider = "slack"
	ProviderDiscord       Provider = "discord"
	ProviderRouter        Provider = "router"
	ProviderSummarization Provider = "summarization"
	ProviderModeration    Provider = "moderation"
)

// Providers lists every known provider in declaration order.
var Providers = []Provider{
	ProviderGitHub,
	ProviderSlack,
	ProviderDiscord,
	ProviderRouter,
	ProviderSummarization,
	ProviderModeration,
}

// ParseProvider maps a path segment to a Provider.
func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", &UnknownProviderError{Provider: raw}
}

func (p Provider) String() string {
	return string(p)
}
