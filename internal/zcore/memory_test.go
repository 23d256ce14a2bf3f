package zcore

import (
	"os"
	"testing"
)

func loadFixture(t *testing.T, path string) *Memory {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Skipf("fixture %s not available: %v", path, err)
	}
	m, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestLoadRejectsShortImage(t *testing.T) {
	_, err := Load(make([]uint8, 10))
	if err == nil {
		t.Fatal("expected error loading undersized image")
	}
	if _, ok := err.(*LoadError); !ok {
		t.Fatalf("expected *LoadError, got %T", err)
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	image := make([]uint8, MinHeaderSize)
	image[0] = 9
	image[0x0e] = 0x00
	image[0x0f] = 0x40
	_, err := Load(image)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestZork1HeaderFields(t *testing.T) {
	m := loadFixture(t, "../../zork1.z1")
	if m.Version != 1 {
		t.Fatalf("expected version 1, got %d", m.Version)
	}
	if m.StaticBase < MinHeaderSize {
		t.Fatalf("static base 0x%x should be >= header size", m.StaticBase)
	}
}

func TestSetByteRejectsStaticMemory(t *testing.T) {
	image := make([]uint8, 128)
	image[0] = 3
	image[0x0e] = 0x00
	image[0x0f] = 0x40 // static base = 0x40, i.e. right at the header boundary
	m, err := Load(image)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := m.SetByte(0x40, 1); err == nil {
		t.Fatal("expected write to static memory to fail")
	}
	if err := m.SetByte(0x3f, 1); err != nil {
		t.Fatalf("write to dynamic memory should succeed: %v", err)
	}
}

func TestUnpackAddressByVersion(t *testing.T) {
	cases := []struct {
		version uint8
		packed  uint16
		want    uint32
	}{
		{1, 0x100, 0x200},
		{3, 0x100, 0x200},
		{4, 0x100, 0x400},
		{5, 0x100, 0x400},
		{8, 0x100, 0x800},
	}
	for _, c := range cases {
		m := &Memory{Version: c.version}
		if got := m.UnpackRoutine(c.packed); got != c.want {
			t.Errorf("version %d: UnpackRoutine(0x%x) = 0x%x, want 0x%x", c.version, c.packed, got, c.want)
		}
	}
}

