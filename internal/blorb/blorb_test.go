package blorb

import (
	"encoding/binary"
	"bytes"
	"testing"
)

func buildBlorb(t *testing.T, execBody []byte) []byte {
	t.Helper()
	var inner bytes.Buffer
	inner.WriteString(blorbFormType)

	writeChunk := func(id string, body []byte) {
		inner.WriteString(id)
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(body)))
		inner.Write(length[:])
		inner.Write(body)
		if len(body)%2 == 1 {
			inner.WriteByte(0)
		}
	}
	writeChunk("RIdx", []byte{0, 0, 0, 0})
	writeChunk(execChunkID, execBody)

	var out bytes.Buffer
	out.WriteString(formID)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(inner.Len()))
	out.Write(length[:])
	out.Write(inner.Bytes())
	return out.Bytes()
}

func TestExtractExecFromBlorb(t *testing.T) {
	story := []byte{3, 0, 1, 2, 3, 4, 5, 6}
	data := buildBlorb(t, story)

	got, err := ExtractExec(data)
	if err != nil {
		t.Fatalf("ExtractExec: %v", err)
	}
	if !bytes.Equal(got, story) {
		t.Fatalf("got %v, want %v", got, story)
	}
}

func TestExtractExecPassesThroughBareStory(t *testing.T) {
	story := []byte{3, 0, 1, 2, 3, 4, 5, 6}
	got, err := ExtractExec(story)
	if err != nil {
		t.Fatalf("ExtractExec: %v", err)
	}
	if !bytes.Equal(got, story) {
		t.Fatalf("got %v, want unchanged %v", got, story)
	}
}

func TestExtractExecRejectsUnknownFormType(t *testing.T) {
	data := []byte("FORM\x00\x00\x00\x04WXYZ")
	if _, err := ExtractExec(data); err == nil {
		t.Fatal("expected an error for a non-IFRS FORM container")
	}
}
