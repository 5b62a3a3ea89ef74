package core

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestStorePutGetRemove(t *testing.T) {
	t.Parallel()

	st := NewStore()
	s := NewSuiteScope("TestStore", nil)

	if _, ok := st.Get(s, KindClient); ok {
		t.Fatal("Get on empty store reported a value")
	}

	st.Put(s, KindClient, "client")
	st.Put(s, KindAddress, "address")
	if v, ok := st.Get(s, KindClient); !ok || v != "client" {
		t.Fatalf("Get() = %v, %v; want client, true", v, ok)
	}
	if n := st.Len(s); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}

	st.Put(s, KindClient, "replaced")
	if v, _ := st.Get(s, KindClient); v != "replaced" {
		t.Errorf("Get() after replace = %v, want replaced", v)
	}

	if v, ok := st.Remove(s, KindClient); !ok || v != "replaced" {
		t.Fatalf("first Remove() = %v, %v; want replaced, true", v, ok)
	}
	if v, ok := st.Remove(s, KindClient); ok || v != nil {
		t.Fatalf("second Remove() = %v, %v; want nil, false", v, ok)
	}
	if v, ok := st.Remove(NewSuiteScope("other", nil), KindClient); ok || v != nil {
		t.Fatalf("Remove() on unknown scope = %v, %v; want nil, false", v, ok)
	}
}

func TestStoreNoParentFallback(t *testing.T) {
	t.Parallel()

	st := NewStore()
	suite := NewSuiteScope("TestStoreNoParentFallback", nil)
	c := suite.NewCase("case", nil)

	st.Put(suite, KindFixture, "suite fixture")

	if _, ok := st.Get(c, KindFixture); ok {
		t.Error("Get in case scope fell back to the suite scope")
	}
	if v, ok := st.Get(c.Parent(), KindFixture); !ok || v != "suite fixture" {
		t.Errorf("Get in parent = %v, %v; want suite fixture, true", v, ok)
	}
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	st := NewStore()
	a := NewSuiteScope("a", nil)
	b := NewSuiteScope("b", nil)

	for _, k := range injectableKinds {
		st.Put(a, k, k.String())
		st.Put(b, k, k.String())
	}
	st.Clear(a)

	if n := st.Len(a); n != 0 {
		t.Errorf("Len(a) after Clear = %d, want 0", n)
	}
	if n := st.Len(b); n != len(injectableKinds) {
		t.Errorf("Len(b) = %d, want %d", n, len(injectableKinds))
	}
	if n := st.Scopes(); n != 1 {
		t.Errorf("Scopes() = %d, want 1", n)
	}

	// Removing the last key drops the scope as well.
	for _, k := range injectableKinds {
		st.Remove(b, k)
	}
	if n := st.Scopes(); n != 0 {
		t.Errorf("Scopes() after removing every key = %d, want 0", n)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	st := NewStore()
	s := NewSuiteScope("TestLookup", nil)
	st.Put(s, KindAddress, "http://127.0.0.1")

	if got, ok := Lookup[string](st, s, KindAddress); !ok || got != "http://127.0.0.1" {
		t.Errorf("Lookup[string]() = %q, %v", got, ok)
	}
	if got, ok := Lookup[int](st, s, KindAddress); ok || got != 0 {
		t.Errorf("Lookup[int]() on a string = %d, %v; want 0, false", got, ok)
	}
	if _, ok := Lookup[string](st, s, KindClient); ok {
		t.Error("Lookup() of an absent kind reported true")
	}
}

func TestStoreConcurrentReads(t *testing.T) {
	t.Parallel()

	st := NewStore()
	suite := NewSuiteScope("TestStoreConcurrentReads", nil)
	st.Put(suite, KindFixture, "shared")

	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			c := suite.NewCase("case", nil)
			for range 100 {
				if v, ok := st.Get(suite, KindFixture); !ok || v != "shared" {
					t.Errorf("reader %d: Get() = %v, %v", i, v, ok)
					return nil
				}
				st.Put(c, KindClient, i)
				st.Remove(c, KindClient)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := st.Scopes(); n != 1 {
		t.Errorf("Scopes() = %d, want 1", n)
	}
}
