package suggest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Paranoid-AF/promptline"
)

var testSocketCounter atomic.Int64

// fakeDaemon answers each connection with handle's return value, or closes
// the connection without writing when it returns nil.
func fakeDaemon(t *testing.T, handle func(raw []byte) any) string {
	t.Helper()
	// Short path to stay under the Unix socket path limit.
	sockPath := fmt.Sprintf("/tmp/promptline-c%d-%d.sock", os.Getpid(), testSocketCounter.Add(1))
	os.Remove(sockPath)
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ln.Close()
		os.Remove(sockPath)
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				if !scanner.Scan() {
					return
				}
				resp := handle(scanner.Bytes())
				if resp == nil {
					return
				}
				data, _ := json.Marshal(resp)
				conn.Write(append(data, '\n'))
			}(conn)
		}
	}()
	return sockPath
}

func TestClientSuggest(t *testing.T) {
	received := make(chan promptline.Request, 1)
	sock := fakeDaemon(t, func(raw []byte) any {
		var got promptline.Request
		json.Unmarshal(raw, &got)
		received <- got
		return promptline.Response{
			RequestID: got.RequestID,
			Candidates: []promptline.Candidate{
				{Completion: "git status", Kind: promptline.KindLine},
				{Completion: "$HOME", Kind: promptline.KindWord},
			},
		}
	})

	c := &Client{SocketPath: sock}
	list, err := c.Suggest(context.Background(), &promptline.Request{
		RequestID:            7,
		SessionID:            "s1",
		CurrentText:          "git st",
		CurrentCaretPosition: 6,
	})
	if err != nil {
		t.Fatal(err)
	}
	got := <-received
	if got.CurrentText != "git st" || got.CurrentCaretPosition != 6 || got.SessionID != "s1" {
		t.Errorf("daemon received unexpected request %+v", got)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(list))
	}
	if _, ok := list[0].(Line); !ok {
		t.Errorf("expected Line, got %T", list[0])
	}
	if _, ok := list[1].(Word); !ok {
		t.Errorf("expected Word, got %T", list[1])
	}
}

func TestClientDaemonError(t *testing.T) {
	sock := fakeDaemon(t, func([]byte) any {
		return promptline.Response{Error: &promptline.Error{Code: "invalid_request", Message: "bad"}}
	})

	c := &Client{SocketPath: sock}
	_, err := c.Suggest(context.Background(), &promptline.Request{CurrentText: "x"})
	var derr *promptline.Error
	if !errors.As(err, &derr) || derr.Code != "invalid_request" {
		t.Errorf("expected daemon error, got %v", err)
	}
}

func TestClientNoResponse(t *testing.T) {
	sock := fakeDaemon(t, func([]byte) any { return nil })

	c := &Client{SocketPath: sock}
	_, err := c.Suggest(context.Background(), &promptline.Request{CurrentText: "x"})
	if !errors.Is(err, ErrNoResponse) {
		t.Errorf("expected ErrNoResponse, got %v", err)
	}
}

func TestClientTimeout(t *testing.T) {
	sock := fakeDaemon(t, func([]byte) any {
		time.Sleep(500 * time.Millisecond)
		return promptline.Response{}
	})

	c := &Client{SocketPath: sock, Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := c.Suggest(context.Background(), &promptline.Request{CurrentText: "x"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 400*time.Millisecond {
		t.Errorf("client should give up after its timeout, took %v", time.Since(start))
	}
}

func TestClientDialError(t *testing.T) {
	c := &Client{SocketPath: "/tmp/promptline-missing.sock"}
	if _, err := c.Suggest(context.Background(), &promptline.Request{}); err == nil {
		t.Error("expected dial error")
	}
}

func TestClientRecord(t *testing.T) {
	received := make(chan promptline.RecordRequest, 1)
	sock := fakeDaemon(t, func(raw []byte) any {
		var got promptline.RecordRequest
		json.Unmarshal(raw, &got)
		received <- got
		return promptline.RecordResponse{OK: true}
	})

	c := &Client{SocketPath: sock}
	if err := c.Record(context.Background(), "make test"); err != nil {
		t.Fatal(err)
	}
	got := <-received
	if got.Type != "record" || got.Command != "make test" {
		t.Errorf("daemon received unexpected record %+v", got)
	}
}
