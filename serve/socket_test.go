package main

import (
	"errors"
	"io/fs"
	"os"
	"testing"
)

func TestNewServerRemovesStaleSocket(t *testing.T) {
	sockPath := testSocketPath()
	if err := os.WriteFile(sockPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	srv, err := NewServerWithEngine(sockPath, &stubEngine{})
	if err != nil {
		t.Fatalf("expected stale socket file to be replaced: %v", err)
	}
	defer srv.Close()

	info, err := os.Stat(sockPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		t.Errorf("expected %s to be a socket, got mode %v", sockPath, info.Mode())
	}
}

func TestCloseRemovesSocketAndClosesEngine(t *testing.T) {
	engine := &stubEngine{}
	sockPath := testSocketPath()
	srv, err := NewServerWithEngine(sockPath, engine)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	srv.Close()
	if err := <-done; err == nil {
		t.Error("expected Serve to return an error after Close")
	}
	if _, err := os.Stat(sockPath); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected socket file to be removed, got %v", err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.closed {
		t.Error("expected engine to be closed")
	}
}

func TestNewServerBadPath(t *testing.T) {
	if _, err := NewServerWithEngine("/nonexistent-dir/promptline.sock", &stubEngine{}); err == nil {
		t.Error("expected error for an unusable socket path")
	}
}
