package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/domain/transfer"
)

func TestNext_TablaCompleta(t *testing.T) {
	states := []transfer.State{transfer.None, transfer.Reserved, transfer.Shipped, transfer.Received, transfer.Cancelled}
	actions := []transfer.Action{transfer.Initiate, transfer.Ship, transfer.Receive, transfer.Cancel}

	allowed := map[transfer.State]map[transfer.Action]transfer.State{
		transfer.None:     {transfer.Initiate: transfer.Reserved},
		transfer.Reserved: {transfer.Ship: transfer.Shipped, transfer.Cancel: transfer.Cancelled},
		transfer.Shipped:  {transfer.Receive: transfer.Received, transfer.Cancel: transfer.Cancelled},
	}

	for _, from := range states {
		for _, action := range actions {
			to, err := transfer.Next(from, action)
			want, ok := allowed[from][action]
			if ok {
				require.NoError(t, err, "%s desde %s debe permitirse", action, from)
				assert.Equal(t, want, to)
				continue
			}
			var te *transfer.TransitionError
			require.ErrorAs(t, err, &te, "%s desde %s debe rechazarse", action, from)
			assert.Equal(t, from, to, "un rechazo no cambia el estado")
		}
	}
}

func TestState_ActiveYTerminal(t *testing.T) {
	assert.True(t, transfer.Reserved.Active())
	assert.True(t, transfer.Shipped.Active())
	assert.False(t, transfer.Received.Active())
	assert.False(t, transfer.Cancelled.Active())

	assert.True(t, transfer.Received.Terminal())
	assert.True(t, transfer.Cancelled.Terminal())
	assert.False(t, transfer.None.Terminal())
}

func TestParse(t *testing.T) {
	s, err := transfer.Parse("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, transfer.Shipped, s)

	_, err = transfer.Parse("EN_ROUTE")
	assert.Error(t, err)
}
