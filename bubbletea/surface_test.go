package bubbletea_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight"
	bt "github.com/finsight/finsight/bubbletea"
)

func TestSurface_EventsArriveInOrder(t *testing.T) {
	t.Parallel()

	s := bt.NewSurface()
	s.Append(bt.ContainerWidget, finsight.RoleUser, "hi")
	s.Append(bt.ContainerWidget, finsight.RoleAssistant, "hello")
	s.Clear(bt.ContainerWidget)

	msg, ok := bt.Drain(s).(bt.SurfaceEventMsg)
	require.True(t, ok)
	assert.Equal(t, bt.ContainerWidget, msg.Container)
	assert.Equal(t, finsight.RoleUser, msg.Role)
	assert.Equal(t, "hi", msg.Text)
	assert.False(t, msg.Clear)

	msg, ok = bt.Drain(s).(bt.SurfaceEventMsg)
	require.True(t, ok)
	assert.Equal(t, finsight.RoleAssistant, msg.Role)
	assert.Equal(t, "hello", msg.Text)

	msg, ok = bt.Drain(s).(bt.SurfaceEventMsg)
	require.True(t, ok)
	assert.True(t, msg.Clear)
	assert.Equal(t, bt.ContainerWidget, msg.Container)
}
