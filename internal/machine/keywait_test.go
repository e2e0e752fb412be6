package machine

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestWaitForKey(t *testing.T) {
	m := newTestMachine(t,
		0xF30A, // ld V3, K
		0x6001, // ld V0, $01
	)

	run(t, m, 1)
	assert.True(t, m.AwaitingKey())
	assert.Equal(t, ProgramStart, m.PC())

	for range 10 {
		run(t, m, 1)
		assert.True(t, m.AwaitingKey())
		assert.Equal(t, ProgramStart, m.PC())
	}
	assert.Equal(t, 0, m.Register(0))

	assert.NoError(t, m.SetKey(0xC, true))
	assert.NoError(t, m.SetKey(0x7, true))
	run(t, m, 1)
	assert.False(t, m.AwaitingKey())
	assert.Equal(t, 0x7, m.Register(3))
	assert.Equal(t, ProgramStart+2, m.PC())

	run(t, m, 1)
	assert.Equal(t, 1, m.Register(0))
}

func TestWaitForKey_KeyHeld(t *testing.T) {
	m := newTestMachine(t, 0xF50A) // ld V5, K
	assert.NoError(t, m.SetKey(0xE, true))

	run(t, m, 1)
	assert.False(t, m.AwaitingKey())
	assert.Equal(t, 0xE, m.Register(5))
	assert.Equal(t, ProgramStart+2, m.PC())
}

func TestWaitForKey_TimersContinue(t *testing.T) {
	m := newTestMachine(t, 0xF00A) // ld V0, K
	m.delayTimer = 2

	run(t, m, 1)
	m.TickTimers()
	run(t, m, 1)
	m.TickTimers()

	assert.True(t, m.AwaitingKey())
	assert.Equal(t, 0, m.DelayTimer())
}

func TestWaitForKey_Reset(t *testing.T) {
	m := newTestMachine(t, 0xF00A) // ld V0, K
	run(t, m, 1)
	assert.True(t, m.AwaitingKey())

	m.Reset()
	assert.False(t, m.AwaitingKey())
	assert.Equal(t, ProgramStart, m.PC())
}
