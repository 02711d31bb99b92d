package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestParseCommand(t *testing.T) {
	command, err := parseCommand("patch /tmp/my%20patch.json\r")
	if err != nil {
		t.Fatal(err)
	}
	expectEqual(t, len(command), 2)
	expectEqual(t, command[0], "patch")
	expectEqual(t, command[1], "/tmp/my patch.json")

	_, err = parseCommand("set volume %zz")
	if err == nil {
		t.Error("expected an error for a bad escape")
	}
	_, err = parseCommand("  ")
	if err == nil {
		t.Error("expected an error for an empty line")
	}
}

func TestKeyNote(t *testing.T) {
	note, ok := keyNote('a', 0)
	expectEqual(t, ok, true)
	expectEqual(t, note, 60)
	note, ok = keyNote('k', -1)
	expectEqual(t, ok, true)
	expectEqual(t, note, 60)
	note, ok = keyNote('w', 2)
	expectEqual(t, ok, true)
	expectEqual(t, note, 85)
	_, ok = keyNote('k', 6)
	expectEqual(t, ok, false)
	_, ok = keyNote('p', 0)
	expectEqual(t, ok, false)
}

func TestRunKeys(t *testing.T) {
	keys := make(chan byte, 8)
	commandCh := make(chan []string, 16)
	for _, k := range []byte("axsq") {
		keys <- k
	}
	err := runKeys(context.Background(), keys, commandCh)
	if err != nil {
		t.Fatal(err)
	}
	close(commandCh)
	var got []string
	for c := range commandCh {
		got = append(got, strings.Join(c, " "))
	}
	// held notes are released on quit, in any order
	expectEqual(t, len(got), 4)
	expectEqual(t, got[0], "note_on 60 0.8")
	expectEqual(t, got[1], "note_on 74 0.8")
	offs := got[2] + "," + got[3]
	if offs != "note_off 60,note_off 74" && offs != "note_off 74,note_off 60" {
		t.Errorf("unexpected releases: %v", offs)
	}
}

func TestRunKeysReleasesAfterGate(t *testing.T) {
	keys := make(chan byte, 1)
	commandCh := make(chan []string, 16)
	keys <- 'd'
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runKeys(ctx, keys, commandCh) }()

	expectEqual(t, strings.Join(<-commandCh, " "), "note_on 64 0.8")
	select {
	case c := <-commandCh:
		expectEqual(t, strings.Join(c, " "), "note_off 64")
	case <-time.After(5 * time.Second):
		t.Fatal("note was not released")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestReadKeysClosesOnEOF(t *testing.T) {
	var got []byte
	for k := range readKeys(bytes.NewReader([]byte("asd"))) {
		got = append(got, k)
	}
	expectEqual(t, string(got), "asd")
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{&buf}.Write([]byte("a\nb\n"))
	if err != nil {
		t.Fatal(err)
	}
	expectEqual(t, n, 4)
	expectEqual(t, buf.String(), "a\r\nb\r\n")
}
