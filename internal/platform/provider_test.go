package platform

import (
	"errors"
	"testing"

	"github.com/mj1618/uisync/internal/model"
)

type stubIntrospector struct{}

func (stubIntrospector) LiveRoots() ([]*model.Node, error)      { return nil, nil }
func (stubIntrospector) LastShownScreen() (ScreenHandle, error) { return nil, nil }
func (stubIntrospector) DisplayHeight(model.Screen) (int, error) {
	return 0, nil
}

func TestNewProvider_Unregistered(t *testing.T) {
	_, err := NewProvider("does-not-exist", Options{})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_Registered(t *testing.T) {
	Register("stub-ok", func(Options) (*Provider, error) {
		return &Provider{Introspector: stubIntrospector{}}, nil
	})
	p, err := NewProvider("stub-ok", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "stub-ok" {
		t.Errorf("expected name stub-ok, got %q", p.Name)
	}

	found := false
	for _, name := range Backends() {
		if name == "stub-ok" {
			found = true
		}
	}
	if !found {
		t.Error("expected stub-ok in Backends()")
	}
}

func TestNewProvider_MissingIntrospector(t *testing.T) {
	Register("stub-empty", func(Options) (*Provider, error) {
		return &Provider{}, nil
	})
	_, err := NewProvider("stub-empty", Options{})
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got: %v", err)
	}
}

func TestNewProvider_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	Register("stub-err", func(Options) (*Provider, error) { return nil, boom })
	_, err := NewProvider("stub-err", Options{})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped factory error, got: %v", err)
	}
}
