package machine

func (m *Machine) push(address uint16) error {
	if int(m.sp) >= StackSize {
		return ErrStackOverflow
	}
	m.stack[m.sp] = address
	m.sp++
	return nil
}

func (m *Machine) pop() (uint16, error) {
	if m.sp == 0 {
		return 0, ErrStackUnderflow
	}
	m.sp--
	address := m.stack[m.sp]
	m.stack[m.sp] = 0
	return address, nil
}
