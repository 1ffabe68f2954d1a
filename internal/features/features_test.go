package features

import "testing"

func TestRegistryAvailable(t *testing.T) {
	r := NewRegistry(StaticContent, "  Spree_Videos ")

	if !r.Available(StaticContent) {
		t.Fatalf("expected %s to be available", StaticContent)
	}
	if !r.Available(Videos) {
		t.Fatalf("expected names to be normalized")
	}
	if r.Available("fake_solidus_gem_name") {
		t.Fatalf("unknown name reported as available")
	}
	if r.Available("") {
		t.Fatalf("empty name reported as available")
	}
}

func TestNilRegistryIsEmpty(t *testing.T) {
	var r *Registry
	if r.Available(StaticContent) {
		t.Fatalf("nil registry reported a feature")
	}
}

func TestRegisterIgnoresBlankNames(t *testing.T) {
	r := NewRegistry("", "   ", EssentialsCMS)

	names := r.Names()
	if len(names) != 1 || names[0] != EssentialsCMS {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegisterBuildInfoDoesNotInventModules(t *testing.T) {
	r := NewRegistry()
	r.RegisterBuildInfo()

	if r.Available("example.com/definitely/not/linked") {
		t.Fatalf("unlinked module reported as available")
	}
	if len(r.Names()) > 0 && !r.Available(r.Names()[0]) {
		t.Fatalf("registered module not reported as available")
	}
}

func TestDefaultRegistry(t *testing.T) {
	Register("testing")

	if !Available("testing") {
		t.Fatalf("expected registered feature on the default registry")
	}
	if Available("fake_solidus_gem_name") {
		t.Fatalf("unknown feature on the default registry")
	}
}
