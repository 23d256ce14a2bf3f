package zobject

import "fmt"

// firstPropertyAddr skips the short-name block (a length byte giving the
// number of 2-byte words, then that many words of Z-string data).
func (t *Table) firstPropertyAddr(id uint16) (uint32, error) {
	tableAddr, err := t.PropertyTableAddr(id)
	if err != nil {
		return 0, err
	}
	nameWords, err := t.mem.GetByte(tableAddr)
	if err != nil {
		return 0, err
	}
	return tableAddr + 1 + uint32(nameWords)*2, nil
}

// ShortNameAddr returns the address of the object's short-name Z-string
// (the length-prefixed block at the head of its property table).
func (t *Table) ShortNameAddr(id uint16) (uint32, error) {
	tableAddr, err := t.PropertyTableAddr(id)
	if err != nil {
		return 0, err
	}
	return tableAddr + 1, nil
}

// propertyHeader decodes the size/number header byte(s) at addr, returning
// the property number, the size of its data in bytes, and the address of
// the data itself.
func (t *Table) propertyHeader(addr uint32) (number uint8, size uint32, dataAddr uint32, err error) {
	b, err := t.mem.GetByte(addr)
	if err != nil {
		return 0, 0, 0, err
	}

	if t.version <= 3 {
		number = b & 0x1f
		size = uint32(b>>5) + 1
		return number, size, addr + 1, nil
	}

	number = b & 0x3f
	if b&0x80 == 0 {
		// single-byte header: bit 6 selects size 1 or 2.
		if b&0x40 != 0 {
			size = 2
		} else {
			size = 1
		}
		return number, size, addr + 1, nil
	}

	b2, err := t.mem.GetByte(addr + 1)
	if err != nil {
		return 0, 0, 0, err
	}
	size = uint32(b2 & 0x3f)
	if size == 0 {
		size = 64
	}
	return number, size, addr + 2, nil
}

// GetPropertyAddr returns the address of property n's data, or 0 if the
// object does not define it.
func (t *Table) GetPropertyAddr(id uint16, n uint8) (uint32, error) {
	addr, err := t.firstPropertyAddr(id)
	if err != nil {
		return 0, err
	}
	for {
		number, size, dataAddr, err := t.propertyHeader(addr)
		if err != nil {
			return 0, err
		}
		if number == 0 {
			return 0, nil
		}
		if number == n {
			return dataAddr, nil
		}
		if number < n {
			// Properties are stored in descending number order.
			return 0, nil
		}
		addr = dataAddr + size
	}
}

// GetPropertyLength returns the byte length of the property whose data
// starts at dataAddr, working backward to read its header. dataAddr of 0
// (as returned for an absent property) yields length 0.
func (t *Table) GetPropertyLength(dataAddr uint32) (uint32, error) {
	if dataAddr == 0 {
		return 0, nil
	}
	if t.version <= 3 {
		b, err := t.mem.GetByte(dataAddr - 1)
		if err != nil {
			return 0, err
		}
		return uint32(b>>5) + 1, nil
	}

	b, err := t.mem.GetByte(dataAddr - 1)
	if err != nil {
		return 0, err
	}
	if b&0x80 == 0 {
		if b&0x40 != 0 {
			return 2, nil
		}
		return 1, nil
	}
	size := uint32(b & 0x3f)
	if size == 0 {
		return 64, nil
	}
	return size, nil
}

// GetProperty reads property n's value as a word (1-byte properties are
// zero-extended), falling back to the default value when the object does
// not define it.
func (t *Table) GetProperty(id uint16, n uint8) (uint16, error) {
	addr, err := t.GetPropertyAddr(id, n)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return t.PropertyDefault(n)
	}
	size, err := t.GetPropertyLength(addr)
	if err != nil {
		return 0, err
	}
	if size == 1 {
		b, err := t.mem.GetByte(addr)
		return uint16(b), err
	}
	return t.mem.GetWord(addr)
}

// PutProperty writes a word-sized value to property n. The property must
// already exist on the object with size 1 or 2; larger properties are a
// fatal error per the put_prop opcode's contract.
func (t *Table) PutProperty(id uint16, n uint8, value uint16) error {
	addr, err := t.GetPropertyAddr(id, n)
	if err != nil {
		return err
	}
	if addr == 0 {
		return fmt.Errorf("put_prop: object %d has no property %d", id, n)
	}
	size, err := t.GetPropertyLength(addr)
	if err != nil {
		return err
	}
	if size == 1 {
		return t.mem.SetByte(addr, uint8(value))
	}
	if size == 2 {
		return t.mem.SetWord(addr, value)
	}
	return fmt.Errorf("put_prop: property %d on object %d has size %d, expected 1 or 2", n, id, size)
}

// GetNextProperty returns the property number following n in the object's
// descending-order property list, or 0 if n was the last. n of 0 returns
// the first property.
func (t *Table) GetNextProperty(id uint16, n uint8) (uint8, error) {
	addr, err := t.firstPropertyAddr(id)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		number, _, _, err := t.propertyHeader(addr)
		return number, err
	}

	for {
		number, size, dataAddr, err := t.propertyHeader(addr)
		if err != nil {
			return 0, err
		}
		if number == 0 {
			return 0, fmt.Errorf("get_next_prop: property %d not found on object %d", n, id)
		}
		if number == n {
			nextNumber, _, _, err := t.propertyHeader(dataAddr + size)
			return nextNumber, err
		}
		addr = dataAddr + size
	}
}
