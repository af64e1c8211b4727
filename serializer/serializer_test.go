package serializer

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/rmap/wire"
)

type point struct {
	X, Y int
}

func TestStringSerializerRoundTrip(t *testing.T) {
	buf := wire.NewFramedBuffer(64)
	var s Serializer[string] = StringSerializer{}
	if err := s.Write("hello world", buf); err != nil {
		t.Fatal(err)
	}
	buf.SetPosition(0)
	got, err := s.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Fatalf("want %q got %q", "hello world", got)
	}
}

func TestBytesSerializerRoundTrip(t *testing.T) {
	buf := wire.NewFramedBuffer(64)
	var s Serializer[[]byte] = BytesSerializer{}
	in := []byte{1, 2, 3, 4, 5}
	if err := s.Write(in, buf); err != nil {
		t.Fatal(err)
	}
	buf.SetPosition(0)
	got, err := s.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(in) {
		t.Fatalf("want %v got %v", in, got)
	}
}

func TestJSONSerializerRoundTrip(t *testing.T) {
	buf := wire.NewFramedBuffer(128)
	var s Serializer[point] = JSONSerializer[point]{}
	in := point{X: 3, Y: -7}
	if err := s.Write(in, buf); err != nil {
		t.Fatal(err)
	}
	buf.SetPosition(0)
	got, err := s.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Fatalf("want %v got %v", in, got)
	}
}

func TestGobSerializerRoundTrip(t *testing.T) {
	buf := wire.NewFramedBuffer(128)
	var s Serializer[point] = GobSerializer[point]{}
	in := point{X: 42, Y: 99}
	if err := s.Write(in, buf); err != nil {
		t.Fatal(err)
	}
	buf.SetPosition(0)
	got, err := s.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Fatalf("want %v got %v", in, got)
	}
}

func TestJSONSerializerOutOfSpaceIsRecoverable(t *testing.T) {
	buf := wire.NewFramedBuffer(1)
	var s Serializer[point] = JSONSerializer[point]{}
	buf.SetPosition(buf.Capacity() - 1)
	anchor := buf.Position()
	err := s.Write(point{X: 1, Y: 1}, buf)
	if err == nil {
		t.Fatal("expected an out-of-space style error near capacity boundary")
	}
	var oos *wire.OutOfSpaceError
	if !errors.As(err, &oos) {
		t.Fatalf("expected *wire.OutOfSpaceError, got %T (%v)", err, err)
	}

	buf.Resize(buf.Capacity()+oos.Required+64, anchor)
	if err := s.Write(point{X: 1, Y: 1}, buf); err != nil {
		t.Fatalf("write after resize: %v", err)
	}
	buf.SetPosition(anchor)
	got, err := s.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != (point{X: 1, Y: 1}) {
		t.Fatalf("want %v got %v", point{X: 1, Y: 1}, got)
	}
}
