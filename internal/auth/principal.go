package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PrincipalHeader carries the platform-verified identity: a base64-encoded
// JSON document injected by the hosting platform on every authenticated
// request.
const PrincipalHeader = "x-ms-client-principal"

// Claim types surfaced by the identity provider.
const (
	EmailClaimType   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	NameClaimType    = "name"
	PictureClaimType = "picture"
)

// Roles used by the whitelist resolution.
const (
	RoleAuthenticated = "authenticated"
	RoleBoardUser     = "travelcash_user"
	RoleAdmin         = "admin"
)

type Claim struct {
	Typ string `json:"typ"`
	Val string `json:"val"`
}

// ClientPrincipal is the decoded identity header. Handlers never decode the
// header themselves; the auth middleware parses it once and threads it
// through the request context.
type ClientPrincipal struct {
	UserID      string   `json:"userId"`
	UserDetails string   `json:"userDetails"`
	UserRoles   []string `json:"userRoles"`
	Claims      []Claim  `json:"claims"`
}

// ParsePrincipal decodes the base64 JSON identity header.
func ParsePrincipal(header string) (*ClientPrincipal, error) {
	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("decoding client principal: %w", err)
	}
	var principal ClientPrincipal
	if err := json.Unmarshal(decoded, &principal); err != nil {
		return nil, fmt.Errorf("parsing client principal: %w", err)
	}
	return &principal, nil
}

// ClaimValue returns the first claim with the given type, or "".
func (p *ClientPrincipal) ClaimValue(typ string) string {
	for _, c := range p.Claims {
		if c.Typ == typ {
			return c.Val
		}
	}
	return ""
}

// Email returns the email claim, or "" when the provider sent none.
func (p *ClientPrincipal) Email() string {
	return p.ClaimValue(EmailClaimType)
}

func (p *ClientPrincipal) HasRole(role string) bool {
	for _, r := range p.UserRoles {
		if r == role {
			return true
		}
	}
	return false
}
