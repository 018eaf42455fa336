package oauth

import (
	"errors"
	"strings"

	"github.com/2beens/healthzones/internal/providers"

	"golang.org/x/oauth2"
)

var ErrUnknownProvider = errors.New("unknown provider")

var (
	OuraEndpoint = oauth2.Endpoint{
		AuthURL:   "https://cloud.ouraring.com/oauth/authorize",
		TokenURL:  "https://api.ouraring.com/oauth/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	WhoopEndpoint = oauth2.Endpoint{
		AuthURL:   "https://api.prod.whoop.com/oauth/oauth2/auth",
		TokenURL:  "https://api.prod.whoop.com/oauth/oauth2/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}

	ouraScopes  = strings.Fields("daily readiness heartrate workout tag session sleep")
	whoopScopes = strings.Fields("read:recovery read:cycles read:sleep read:workout read:profile read:body_measurement offline")
)

type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Provider is the authorization setup for one provider.
type Provider struct {
	Name    providers.Name
	Config  *oauth2.Config
	UsePKCE bool
}

type Registry map[providers.Name]*Provider

// NewRegistry builds the providers that have a client id configured. Redirect
// URLs are <publicURL>/oauth/<provider>/callback.
func NewRegistry(publicURL string, creds map[providers.Name]Credentials, usePKCE bool) Registry {
	publicURL = strings.TrimSuffix(publicURL, "/")
	registry := Registry{}
	for _, p := range providers.All {
		c, ok := creds[p]
		if !ok || c.ClientID == "" {
			continue
		}

		cfg := &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  publicURL + "/oauth/" + string(p) + "/callback",
		}
		provider := &Provider{Name: p, Config: cfg}
		switch p {
		case providers.Oura:
			cfg.Endpoint = OuraEndpoint
			cfg.Scopes = ouraScopes
		case providers.Whoop:
			cfg.Endpoint = WhoopEndpoint
			cfg.Scopes = whoopScopes
			provider.UsePKCE = usePKCE
		}
		registry[p] = provider
	}
	return registry
}

func (r Registry) Get(name string) (*Provider, error) {
	p, ok := providers.ParseName(name)
	if !ok {
		return nil, ErrUnknownProvider
	}
	provider, ok := r[p]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return provider, nil
}

// Configs exposes the oauth2 configs, keyed by provider, for token refreshes.
func (r Registry) Configs() map[providers.Name]*oauth2.Config {
	configs := make(map[providers.Name]*oauth2.Config, len(r))
	for name, p := range r {
		configs[name] = p.Config
	}
	return configs
}
