package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baldhumanity/alife-neat/neat"
)

func TestComputeSumsRecurrentSlotsInOrder(t *testing.T) {
	// 1e17+1 rounds back to 1e17, so only slot order yields exactly 0.
	n := neuron{
		activation: neat.NewActivation(neat.Linear),
		slots: []inputSlot{
			{state: slotFilled, value: 0},
			{state: slotRecurrent, value: 1e17},
			{state: slotRecurrent, value: 1},
			{state: slotRecurrent, value: -1e17},
		},
	}
	for i := 0; i < 50; i++ {
		n.compute()
		assert.Equal(t, 0.0, n.output)
	}
}

func TestResetKeepsRecurrentValues(t *testing.T) {
	n := neuron{
		activation: neat.NewActivation(neat.Linear),
		slots: []inputSlot{
			{state: slotFilled, value: 2},
			{state: slotRecurrent, value: 3},
		},
	}
	n.reset()

	assert.Equal(t, slotEmpty, n.slots[0].state)
	assert.Equal(t, 0.0, n.slots[0].value)
	assert.Equal(t, slotRecurrent, n.slots[1].state)
	assert.Equal(t, 3.0, n.slots[1].value)
}
