// Package zobject implements the Z-machine object tree: parent/sibling/
// child links, attribute flags, and the variable-length property table,
// in the two on-disk layouts (V1-3 and V4+).
package zobject

import "fmt"

// MemoryAccessor is the subset of zcore.Memory the object table needs, kept
// as an interface so this package never imports zcore directly.
type MemoryAccessor interface {
	GetByte(addr uint32) (uint8, error)
	SetByte(addr uint32, value uint8) error
	GetWord(addr uint32) (uint16, error)
	SetWord(addr uint32, value uint16) error
}

// Table is a versioned view over the object tree rooted at base.
type Table struct {
	mem     MemoryAccessor
	base    uint32
	version uint8
}

// NewTable constructs a Table over the object table at base for the given
// story version. base is the header's object-table-base field.
func NewTable(mem MemoryAccessor, base uint32, version uint8) *Table {
	return &Table{mem: mem, base: base, version: version}
}

// propertyDefaultsSize is the number of 2-byte property-default entries
// preceding the object records: 31 for V1-3, 63 for V4+.
func (t *Table) propertyDefaultsSize() uint32 {
	if t.version <= 3 {
		return 31 * 2
	}
	return 63 * 2
}

func (t *Table) recordSize() uint32 {
	if t.version <= 3 {
		return 9
	}
	return 14
}

func (t *Table) objectsBase() uint32 {
	return t.base + t.propertyDefaultsSize()
}

func (t *Table) objectAddr(id uint16) uint32 {
	return t.objectsBase() + uint32(id-1)*t.recordSize()
}

// PropertyDefault reads the default value for property n (1-indexed) used
// when an object does not define it.
func (t *Table) PropertyDefault(n uint8) (uint16, error) {
	if n == 0 {
		return 0, fmt.Errorf("property 0 has no default")
	}
	return t.mem.GetWord(t.base + uint32(n-1)*2)
}

// Parent, Sibling and Child return object ids (0 means none).
func (t *Table) Parent(id uint16) (uint16, error)  { return t.relative(id, t.parentOffset()) }
func (t *Table) Sibling(id uint16) (uint16, error) { return t.relative(id, t.siblingOffset()) }
func (t *Table) Child(id uint16) (uint16, error)   { return t.relative(id, t.childOffset()) }

func (t *Table) parentOffset() uint32 {
	if t.version <= 3 {
		return 4
	}
	return 6
}
func (t *Table) siblingOffset() uint32 {
	if t.version <= 3 {
		return 5
	}
	return 8
}
func (t *Table) childOffset() uint32 {
	if t.version <= 3 {
		return 6
	}
	return 10
}
func (t *Table) attributeBytes() uint32 {
	if t.version <= 3 {
		return 4
	}
	return 6
}
func (t *Table) propertyAddrOffset() uint32 {
	if t.version <= 3 {
		return 7
	}
	return 12
}

func (t *Table) relative(id uint16, offset uint32) (uint16, error) {
	addr := t.objectAddr(id) + offset
	if t.version <= 3 {
		b, err := t.mem.GetByte(addr)
		return uint16(b), err
	}
	return t.mem.GetWord(addr)
}

func (t *Table) setRelative(id uint16, offset uint32, value uint16) error {
	addr := t.objectAddr(id) + offset
	if t.version <= 3 {
		return t.mem.SetByte(addr, uint8(value))
	}
	return t.mem.SetWord(addr, value)
}

// SetParent, SetSibling, SetChild update the object tree's link fields
// directly; callers (insert_obj/remove_obj) are responsible for keeping
// the sibling chain consistent.
func (t *Table) SetParent(id, parent uint16) error  { return t.setRelative(id, t.parentOffset(), parent) }
func (t *Table) SetSibling(id, sibling uint16) error { return t.setRelative(id, t.siblingOffset(), sibling) }
func (t *Table) SetChild(id, child uint16) error    { return t.setRelative(id, t.childOffset(), child) }

// PropertyTableAddr returns the address of this object's property table
// header (a text-length byte followed by the short name, then properties).
func (t *Table) PropertyTableAddr(id uint16) (uint32, error) {
	w, err := t.mem.GetWord(t.objectAddr(id) + t.propertyAddrOffset())
	return uint32(w), err
}

// attributeBitAddr returns the byte address and bit index (MSB-first, bit
// 0 = attribute 0) for a given attribute number.
func (t *Table) attributeBitAddr(id uint16, attribute uint8) (uint32, uint8) {
	byteIdx := uint32(attribute) / 8
	bit := 7 - (attribute % 8)
	return t.objectAddr(id) + byteIdx, bit
}

// TestAttribute reports whether the given attribute flag is set.
func (t *Table) TestAttribute(id uint16, attribute uint8) (bool, error) {
	addr, bit := t.attributeBitAddr(id, attribute)
	b, err := t.mem.GetByte(addr)
	if err != nil {
		return false, err
	}
	return b&(1<<bit) != 0, nil
}

// SetAttribute sets the given attribute flag.
func (t *Table) SetAttribute(id uint16, attribute uint8) error {
	addr, bit := t.attributeBitAddr(id, attribute)
	b, err := t.mem.GetByte(addr)
	if err != nil {
		return err
	}
	return t.mem.SetByte(addr, b|(1<<bit))
}

// ClearAttribute clears the given attribute flag.
func (t *Table) ClearAttribute(id uint16, attribute uint8) error {
	addr, bit := t.attributeBitAddr(id, attribute)
	b, err := t.mem.GetByte(addr)
	if err != nil {
		return err
	}
	return t.mem.SetByte(addr, b&^(1<<bit))
}

// AttributeCount is the number of attribute flags this version supports
// (32 for V1-3, 48 for V4+).
func (t *Table) AttributeCount() int {
	if t.version <= 3 {
		return 32
	}
	return 48
}

// RemoveObject detaches id from its parent's child list, relinking the
// sibling chain, per the insert_obj/remove_obj invariant that an object
// has at most one parent and appears once in that parent's sibling chain.
func (t *Table) RemoveObject(id uint16) error {
	parent, err := t.Parent(id)
	if err != nil || parent == 0 {
		return err
	}
	sibling, err := t.Sibling(id)
	if err != nil {
		return err
	}

	firstChild, err := t.Child(parent)
	if err != nil {
		return err
	}
	if firstChild == id {
		if err := t.SetChild(parent, sibling); err != nil {
			return err
		}
	} else {
		cur := firstChild
		for cur != 0 {
			next, err := t.Sibling(cur)
			if err != nil {
				return err
			}
			if next == id {
				if err := t.SetSibling(cur, sibling); err != nil {
					return err
				}
				break
			}
			cur = next
		}
	}

	if err := t.SetParent(id, 0); err != nil {
		return err
	}
	return t.SetSibling(id, 0)
}

// InsertObject moves id to become the first child of dst, per the
// insert_obj opcode: it is first removed from wherever it currently is.
func (t *Table) InsertObject(id, dst uint16) error {
	if err := t.RemoveObject(id); err != nil {
		return err
	}
	oldChild, err := t.Child(dst)
	if err != nil {
		return err
	}
	if err := t.SetSibling(id, oldChild); err != nil {
		return err
	}
	if err := t.SetChild(dst, id); err != nil {
		return err
	}
	return t.SetParent(id, dst)
}
