// Package keys centralizes index store key naming. Every key the service
// writes goes through one scheme so the prefix is configurable in one place.
package keys

import "strings"

// Scheme derives store keys from a configured prefix.
type Scheme struct {
	prefix string
}

// NewScheme creates a key scheme. An empty prefix defaults to "propsearch:".
func NewScheme(prefix string) Scheme {
	if prefix == "" {
		prefix = "propsearch:"
	}
	return Scheme{prefix: prefix}
}

// Document returns the hash key for a property's index document.
func (s Scheme) Document(propertyID string) string {
	return s.prefix + "prop:" + propertyID
}

// DocumentPrefix returns the key prefix shared by all index documents.
func (s Scheme) DocumentPrefix() string {
	return s.prefix + "prop:"
}

// PropertyID extracts the property ID from a document key.
func (s Scheme) PropertyID(key string) string {
	return strings.TrimPrefix(key, s.DocumentPrefix())
}

// Index returns the search index name.
func (s Scheme) Index() string {
	return s.prefix + "idx:properties"
}

// Watermark returns the KV key holding a sync pass's high-water mark.
func (s Scheme) Watermark(pass string) string {
	return s.prefix + "sync:wm:" + pass
}

// KnownIDs returns the KV key holding the indexed-property ID snapshot.
func (s Scheme) KnownIDs() string {
	return s.prefix + "sync:known_ids"
}
