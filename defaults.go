package httpenv

// DefaultSharingMode is the sharing mode used when WithSharingMode is not
// given. Each case gets its own fixture.
const DefaultSharingMode = PerCase
