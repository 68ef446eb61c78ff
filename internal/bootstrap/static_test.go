package bootstrap

import (
	"context"
	"testing"
)

func TestStaticBootstrapDiscoverReturnsConfiguredPeers(t *testing.T) {
	b := NewStaticBootstrap([]string{"a:1", "b:2"})

	peers, err := b.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(peers) != 2 || peers[0] != "a:1" || peers[1] != "b:2" {
		t.Fatalf("Discover() = %v, want [a:1 b:2]", peers)
	}
}

func TestStaticBootstrapDiscoverReturnsACopy(t *testing.T) {
	b := NewStaticBootstrap([]string{"a:1"})

	peers, _ := b.Discover(context.Background())
	peers[0] = "mutated"

	again, _ := b.Discover(context.Background())
	if again[0] != "a:1" {
		t.Fatalf("Discover() result was not independent of caller mutation: %v", again)
	}
}

func TestStaticBootstrapRegisterDeregisterAreNoops(t *testing.T) {
	b := NewStaticBootstrap(nil)
	if err := b.Register(context.Background(), "a:1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := b.Deregister(context.Background(), "a:1"); err != nil {
		t.Fatalf("Deregister() error = %v", err)
	}
}
