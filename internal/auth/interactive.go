package auth

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
)

// InteractiveSecret wraps ClientCredentials and prompts for the client
// secret on the terminal when configuration and environment left it empty.
// The entered secret is kept for the rest of the run so a fleet batch asks
// at most once.
type InteractiveSecret struct {
	Inner *ClientCredentials
}

func (i *InteractiveSecret) Authenticate(ctx context.Context, tenant, site string) (Token, error) {
	if i.Inner.ClientSecret == "" {
		secret, err := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Client secret for %s", i.Inner.ClientID)).
			WithMask("*").
			Show()
		if err != nil {
			return Token{}, fmt.Errorf("secret entry: %w", err)
		}
		if secret == "" {
			return Token{}, fmt.Errorf("no client secret provided")
		}
		i.Inner.ClientSecret = secret
	}
	return i.Inner.Authenticate(ctx, tenant, site)
}
