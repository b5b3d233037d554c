package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SessionKey is where the cart lives in the session.
const SessionKey = "cart"

// ErrCorrupt is returned by Load when the stored cart cannot be decoded.
var ErrCorrupt = errors.New("cart: stored cart is corrupt")

// SessionStore is the slice of a client session the cart needs.
type SessionStore interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// Load reads the cart from s. A missing cart is empty.
func Load(s SessionStore) (Cart, error) {
	raw, ok := s.Get(SessionKey)
	if !ok || raw == nil {
		return Cart{}, nil
	}
	if entries, ok := raw.([]Entry); ok {
		return FromEntries(entries), nil
	}

	// Values read back from the session backend are decoded JSON.
	data, err := json.Marshal(raw)
	if err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return FromEntries(entries), nil
}

// Save writes c to s in a single Set.
func Save(s SessionStore, c Cart) {
	s.Set(SessionKey, c.Entries())
}

// Drop removes the cart from s.
func Drop(s SessionStore) {
	s.Delete(SessionKey)
}
