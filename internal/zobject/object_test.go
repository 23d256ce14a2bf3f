package zobject

import "testing"

// fakeMemory is a minimal in-slice MemoryAccessor for exercising the object
// table logic without a real story file.
type fakeMemory struct {
	bytes []uint8
}

func (m *fakeMemory) GetByte(addr uint32) (uint8, error) {
	if int(addr) >= len(m.bytes) {
		return 0, errOOB(addr)
	}
	return m.bytes[addr], nil
}

func (m *fakeMemory) SetByte(addr uint32, value uint8) error {
	if int(addr) >= len(m.bytes) {
		return errOOB(addr)
	}
	m.bytes[addr] = value
	return nil
}

func (m *fakeMemory) GetWord(addr uint32) (uint16, error) {
	if int(addr)+1 >= len(m.bytes) {
		return 0, errOOB(addr)
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

func (m *fakeMemory) SetWord(addr uint32, value uint16) error {
	if int(addr)+1 >= len(m.bytes) {
		return errOOB(addr)
	}
	m.bytes[addr] = uint8(value >> 8)
	m.bytes[addr+1] = uint8(value)
	return nil
}

type errOOB uint32

func (e errOOB) Error() string { return "out of bounds" }

func newV3Fixture() (*fakeMemory, *Table) {
	// base at 0, property defaults 31*2=62 bytes, then 3 objects of 9
	// bytes each, then a tiny property table area for object 1.
	size := 62 + 9*3 + 16
	mem := &fakeMemory{bytes: make([]uint8, size)}
	tbl := NewTable(mem, 0, 3)
	// object 1's property table pointer -> address 62+27 (just past objects)
	propAddr := uint32(62 + 9*3)
	_ = mem.SetWord(tbl.objectAddr(1)+tbl.propertyAddrOffset(), uint16(propAddr))
	// name length 0 words, then property 3 (size 2) = 0x1234, then terminator 0
	mem.bytes[propAddr] = 0   // short name: 0 words
	mem.bytes[propAddr+1] = (1<<5 | 3) // size-1=1 -> size 2, property 3
	mem.bytes[propAddr+2] = 0x12
	mem.bytes[propAddr+3] = 0x34
	mem.bytes[propAddr+4] = 0 // terminator
	return mem, tbl
}

func TestInsertAndRemoveObject(t *testing.T) {
	_, tbl := newV3Fixture()

	if err := tbl.InsertObject(2, 1); err != nil {
		t.Fatalf("InsertObject: %v", err)
	}
	if err := tbl.InsertObject(3, 1); err != nil {
		t.Fatalf("InsertObject: %v", err)
	}

	child, err := tbl.Child(1)
	if err != nil || child != 3 {
		t.Fatalf("Child(1) = %d, %v; want 3", child, err)
	}

	if err := tbl.RemoveObject(3); err != nil {
		t.Fatalf("RemoveObject: %v", err)
	}
	child, _ = tbl.Child(1)
	if child != 2 {
		t.Fatalf("after removing 3, Child(1) = %d, want 2", child)
	}
	parent, _ := tbl.Parent(3)
	if parent != 0 {
		t.Fatalf("removed object still has parent %d", parent)
	}
}

func TestAttributes(t *testing.T) {
	_, tbl := newV3Fixture()

	if set, _ := tbl.TestAttribute(1, 5); set {
		t.Fatal("attribute 5 should start clear")
	}
	if err := tbl.SetAttribute(1, 5); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}
	if set, _ := tbl.TestAttribute(1, 5); !set {
		t.Fatal("attribute 5 should be set")
	}
	if err := tbl.ClearAttribute(1, 5); err != nil {
		t.Fatalf("ClearAttribute: %v", err)
	}
	if set, _ := tbl.TestAttribute(1, 5); set {
		t.Fatal("attribute 5 should be clear again")
	}
}

func TestGetProperty(t *testing.T) {
	_, tbl := newV3Fixture()

	val, err := tbl.GetProperty(1, 3)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if val != 0x1234 {
		t.Fatalf("GetProperty(1,3) = 0x%x, want 0x1234", val)
	}

	if err := tbl.PutProperty(1, 3, 0xbeef); err != nil {
		t.Fatalf("PutProperty: %v", err)
	}
	val, _ = tbl.GetProperty(1, 3)
	if val != 0xbeef {
		t.Fatalf("after PutProperty, GetProperty(1,3) = 0x%x, want 0xbeef", val)
	}

	next, err := tbl.GetNextProperty(1, 0)
	if err != nil || next != 3 {
		t.Fatalf("GetNextProperty(1, 0) = %d, %v; want 3", next, err)
	}
	next, err = tbl.GetNextProperty(1, 3)
	if err != nil || next != 0 {
		t.Fatalf("GetNextProperty(1, 3) = %d, %v; want 0", next, err)
	}
}
