package provider

import (
	"context"
	"errors"
	"testing"
)

// stubClient implements Client for registry tests.
type stubClient struct {
	name string
}

func (s *stubClient) Complete(ctx context.Context, req Request) (*Response, error) {
	return &Response{Content: "stub response", Model: req.Model}, nil
}

func TestRegister(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	Register("test", func(cfg Config) (Client, error) {
		return &stubClient{name: "test"}, nil
	})

	if !IsRegistered("test") {
		t.Error("expected 'test' to be registered")
	}
}

func TestRegister_Panic(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	Register("duplicate", func(cfg Config) (Client, error) {
		return &stubClient{name: "duplicate"}, nil
	})

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("duplicate", func(cfg Config) (Client, error) {
		return &stubClient{name: "duplicate2"}, nil
	})
}

func TestNew(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	Register("test", func(cfg Config) (Client, error) {
		return &stubClient{name: "test"}, nil
	})

	client, err := New("test", Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client == nil {
		t.Fatal("New() returned nil client")
	}
}

func TestNew_Unknown(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	_, err := New("nonexistent", Config{})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	Register("zeta", func(cfg Config) (Client, error) { return &stubClient{}, nil })
	Register("alpha", func(cfg Config) (Client, error) { return &stubClient{}, nil })

	names := Available()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("Available() = %v, want [alpha zeta]", names)
	}
}

func TestUnregister(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	Register("temp", func(cfg Config) (Client, error) { return &stubClient{}, nil })
	Unregister("temp")

	if IsRegistered("temp") {
		t.Error("expected 'temp' to be unregistered")
	}
}
