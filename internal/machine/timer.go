package machine

// TickTimers decrements the delay and sound timers by one step and is
// meant to be called at 60 Hz. It returns true when the sound timer
// reached zero during this call, which is the moment to sound the beep.
func (m *Machine) TickTimers() bool {
	if m.delayTimer > 0 {
		m.delayTimer--
	}

	if m.soundTimer == 0 {
		return false
	}
	beep := m.soundTimer == 1
	m.soundTimer--
	return beep
}

// SoundActive returns whether the sound timer is running.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}
