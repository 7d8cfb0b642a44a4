package steamid

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Recognition patterns, tried in order. The canonical pattern runs before
// the URL patterns so a bare 17-digit ID never reaches the resolver, and the
// bare-token pattern runs last so plain digit strings such as "12345" are
// treated as vanity candidates (Steam permits all-numeric vanity names),
// never as raw account numbers.
var (
	ownerAliasPattern = regexp.MustCompile(`(?i)^(?:me|my|myself|mine)$`)
	canonicalPattern  = regexp.MustCompile(`^7656119\d{10}$`)
	legacyPattern     = regexp.MustCompile(`(?i)^STEAM_([0-5]):([01]):(\d+)$`)
	steamID3Pattern   = regexp.MustCompile(`^\[U:1:(\d+)\]$`)
	profileURLPattern = regexp.MustCompile(`(?i)^(?:https?://)?steamcommunity\.com/profiles/(7656119\d{10})/?$`)
	vanityURLPattern  = regexp.MustCompile(`(?i)^(?:https?://)?steamcommunity\.com/id/([^/]+)/?$`)
	bareTokenPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Resolver resolves a vanity name to a SteamID64, typically over the Steam
// Web API. Implementations return an error wrapping ErrUnresolvableAlias
// when Steam answers "no match" and pass transport failures through
// unchanged.
type Resolver interface {
	ResolveVanityURL(ctx context.Context, name string) (SteamID, error)
}

// Normalizer resolves any recognized spelling of a Steam identity to its
// canonical SteamID64.
type Normalizer struct {
	resolver Resolver
	owner    SteamID
	hasOwner bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithOwner configures the identity that owner shorthands ("me", "my",
// "myself", "mine") resolve to.
func WithOwner(id SteamID) Option {
	return func(n *Normalizer) {
		n.owner = id
		n.hasOwner = true
	}
}

// NewNormalizer creates a Normalizer. The resolver may be nil, in which case
// vanity spellings fail with ErrUnresolvableAlias without a network call.
func NewNormalizer(resolver Resolver, opts ...Option) *Normalizer {
	n := &Normalizer{resolver: resolver}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Owner returns the configured owner identity, if any.
func (n *Normalizer) Owner() (SteamID, bool) {
	return n.owner, n.hasOwner
}

// Normalize resolves input to a canonical SteamID64. Recognition is
// order-sensitive and the first matching format wins:
//
//  1. owner shorthand ("me", "my", "myself", "mine")
//  2. canonical 17-digit SteamID64
//  3. legacy STEAM_X:Y:Z triplet
//  4. [U:1:N] account ID
//  5. steamcommunity.com/profiles/<id64> URL
//  6. steamcommunity.com/id/<vanity> URL
//  7. bare vanity token
//
// Formats 1-5 never perform I/O. Inputs matching none of the formats fail
// with an error wrapping ErrInvalidFormat.
func (n *Normalizer) Normalize(ctx context.Context, input string) (SteamID, error) {
	s := strings.TrimSpace(input)

	if ownerAliasPattern.MatchString(s) {
		if !n.hasOwner {
			return 0, ErrNoOwnerConfigured
		}
		return n.owner, nil
	}

	if canonicalPattern.MatchString(s) {
		return Parse(s)
	}

	if m := legacyPattern.FindStringSubmatch(s); m != nil {
		y, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return 0, &InvalidFormatError{Input: s}
		}
		z, err := strconv.ParseUint(m[3], 10, 64)
		if err != nil {
			return 0, &InvalidFormatError{Input: s}
		}
		id, err := FromLegacy(y, z)
		if err != nil {
			return 0, &InvalidFormatError{Input: s}
		}
		return id, nil
	}

	if m := steamID3Pattern.FindStringSubmatch(s); m != nil {
		account, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return 0, &InvalidFormatError{Input: s}
		}
		return FromAccountID(uint32(account)), nil
	}

	if m := profileURLPattern.FindStringSubmatch(s); m != nil {
		return Parse(m[1])
	}

	if m := vanityURLPattern.FindStringSubmatch(s); m != nil {
		return n.resolveVanity(ctx, m[1])
	}

	if bareTokenPattern.MatchString(s) {
		return n.resolveVanity(ctx, s)
	}

	return 0, &InvalidFormatError{Input: s}
}

func (n *Normalizer) resolveVanity(ctx context.Context, name string) (SteamID, error) {
	if n.resolver == nil {
		return 0, &UnresolvableAliasError{Alias: name}
	}
	return n.resolver.ResolveVanityURL(ctx, name)
}
