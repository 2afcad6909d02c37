package pkg

import "strings"

// CollisionResolver hands out unique names within a single directory.
// Create one per directory; it must not be shared across directories.
//
// Names are compared case-insensitively so that the generated scripts also
// work on case-insensitive filesystems.
type CollisionResolver struct {
	claimed map[string]bool
}

// NewCollisionResolver creates an empty registry.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{claimed: make(map[string]bool)}
}

// Reserve marks a name that already exists in the directory as taken.
func (c *CollisionResolver) Reserve(name string) {
	c.claimed[strings.ToLower(name)] = true
}

// Taken reports whether name has been reserved or claimed.
func (c *CollisionResolver) Taken(name string) bool {
	return c.claimed[strings.ToLower(name)]
}

// Claim returns the undecorated name if it is free, otherwise the name with
// the lowest free positive disambiguator, and records it as taken.
func (c *CollisionResolver) Claim(base BaseName) string {
	for n := 0; ; n++ {
		candidate := base.WithSuffix(n)
		if !c.Taken(candidate) {
			c.Reserve(candidate)
			return candidate
		}
	}
}

// ResolveDirectory assigns final names to the proposals of one directory,
// in order, after reserving the names already present there.
func ResolveDirectory(existing []string, proposals []BaseName) []string {
	resolver := NewCollisionResolver()
	for _, name := range existing {
		resolver.Reserve(name)
	}
	names := make([]string, len(proposals))
	for i, base := range proposals {
		names[i] = resolver.Claim(base)
	}
	return names
}
