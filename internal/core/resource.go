package core

import "fmt"

// Kind tags a value kept in the Store.
type Kind int

const (
	// KindFixture is the running *Fixture. Internal; never injected.
	KindFixture Kind = iota
	// KindClient is the fixture's *http.Client.
	KindClient
	// KindTarget is the fixture's *platform.Target (base-address handle).
	KindTarget
	// KindAddress is the fixture's raw base *url.URL.
	KindAddress
)

// injectableKinds are the kinds a test case may request, in publish order.
var injectableKinds = [...]Kind{KindClient, KindTarget, KindAddress}

func (k Kind) String() string {
	switch k {
	case KindFixture:
		return "fixture"
	case KindClient:
		return "client"
	case KindTarget:
		return "target"
	case KindAddress:
		return "address"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Injectable reports whether k can be requested by a test case.
func (k Kind) Injectable() bool {
	switch k {
	case KindClient, KindTarget, KindAddress:
		return true
	default:
		return false
	}
}
