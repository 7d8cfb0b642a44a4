// Package steamid provides the canonical SteamID64 value type and the
// normalizer that resolves the many textual spellings of a Steam identity
// (legacy STEAM_X:Y:Z triplets, [U:1:N] account IDs, community URLs, vanity
// names, owner shorthand) to it.
package steamid

import (
	"fmt"
	"math"
	"strconv"
)

// Base is the SteamID64 of account number zero in the public universe
// (universe 1, individual account type, desktop instance). Every individual
// SteamID64 is Base plus the 32-bit account number.
const Base SteamID = 76561197960265728

// validPrefix is the upper 32 bits shared by every individual desktop
// account in the public universe.
const validPrefix = 0x01100001

// SteamID is a canonical 64-bit Steam identifier.
type SteamID uint64

// String returns the canonical 17-digit decimal rendering.
func (id SteamID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsValid reports whether the ID denotes an individual desktop account in
// the public universe.
func (id SteamID) IsValid() bool {
	return uint64(id)>>32 == validPrefix
}

// AccountID returns the 32-bit account number.
func (id SteamID) AccountID() uint32 {
	return uint32(uint64(id) - uint64(Base))
}

// Legacy returns the STEAM_1:Y:Z rendering of the ID.
func (id SteamID) Legacy() string {
	account := id.AccountID()
	return fmt.Sprintf("STEAM_1:%d:%d", account&1, account>>1)
}

// SteamID3 returns the [U:1:N] rendering of the ID.
func (id SteamID) SteamID3() string {
	return fmt.Sprintf("[U:1:%d]", id.AccountID())
}

// ProfileURL returns the permanent community profile URL for the ID.
func (id SteamID) ProfileURL() string {
	return "https://steamcommunity.com/profiles/" + id.String()
}

// FromAccountID converts a 32-bit account number to a SteamID64.
func FromAccountID(account uint32) SteamID {
	return Base + SteamID(account)
}

// FromLegacy converts the Y and Z components of a STEAM_X:Y:Z triplet to a
// SteamID64. The account number is Z*2+Y.
func FromLegacy(y, z uint64) (SteamID, error) {
	// Bound z before multiplying: z*2 wraps uint64 for z >= 2^63.
	if y > 1 || z > (math.MaxUint32-y)/2 {
		return 0, &InvalidFormatError{Input: fmt.Sprintf("STEAM_1:%d:%d", y, z)}
	}
	return FromAccountID(uint32(z*2 + y)), nil
}

// Parse converts a canonical 17-digit SteamID64 string. Inputs in any other
// spelling belong to Normalizer.Normalize.
func Parse(s string) (SteamID, error) {
	if !canonicalPattern.MatchString(s) {
		return 0, &InvalidFormatError{Input: s}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &InvalidFormatError{Input: s}
	}
	id := SteamID(v)
	if !id.IsValid() {
		return 0, &InvalidFormatError{Input: s}
	}
	return id, nil
}
