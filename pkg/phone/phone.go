// Package phone normalises patient phone numbers to E.164.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalid is returned for numbers that cannot be dialled.
var ErrInvalid = errors.New("invalid phone number")

// Normalizer parses numbers written without a country prefix using a default region.
type Normalizer struct {
	region string
}

// NewNormalizer returns a Normalizer for the given ISO 3166 region, e.g. "ES".
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = "ES"
	}
	return &Normalizer{region: region}
}

// Normalize returns raw formatted as E.164 ("+34600111222").
func (n *Normalizer) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	num, err := phonenumbers.Parse(raw, n.region)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
