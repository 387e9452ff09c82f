package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceClass(t *testing.T) {
	c, err := NewDeviceClass("0c", "Serial bus controller", "")
	require.NoError(t, err)

	assert.Equal(t, "0c", c.ID())
	assert.Equal(t, "Serial bus controller", c.Name())
	assert.Equal(t, NoComment, c.Comment())
}

func TestDeviceClassRejectsFourCharID(t *testing.T) {
	// Class ids are two hex characters, not four.
	_, err := NewDeviceClass("0c03", "Serial bus controller", "")
	assert.Error(t, err)
}

func TestClassTreeAssembly(t *testing.T) {
	c, err := NewDeviceClass("0c", "Serial bus controller", "")
	require.NoError(t, err)

	sub, err := NewDeviceSubclass("03", "USB controller", "")
	require.NoError(t, err)

	for _, p := range []struct{ id, name string }{
		{"30", "XHCI"},
		{"00", "UHCI"},
		{"20", "EHCI"},
	} {
		iface, err := NewProgramInterface(p.id, p.name, "")
		require.NoError(t, err)
		sub.AddProgramInterface(iface)
	}
	c.AddSubclass(sub)

	require.Equal(t, sub, c.Subclass("03"))
	assert.Nil(t, c.Subclass("99"))

	ifaces := sub.ProgramInterfaces()
	require.Len(t, ifaces, 3)
	assert.Equal(t, "00", ifaces[0].ID())
	assert.Equal(t, "20", ifaces[1].ID())
	assert.Equal(t, "30", ifaces[2].ID())

	assert.Equal(t, "XHCI", sub.ProgramInterface("30").Name())
	assert.Nil(t, sub.ProgramInterface("ff"))
}

func TestSubclassesSortedByNumericID(t *testing.T) {
	c, err := NewDeviceClass("02", "Network controller", "")
	require.NoError(t, err)

	for _, id := range []string{"80", "00", "07"} {
		s, err := NewDeviceSubclass(id, "subclass "+id, "")
		require.NoError(t, err)
		c.AddSubclass(s)
	}

	subs := c.Subclasses()
	require.Len(t, subs, 3)
	assert.Equal(t, "00", subs[0].ID())
	assert.Equal(t, "07", subs[1].ID())
	assert.Equal(t, "80", subs[2].ID())
}
