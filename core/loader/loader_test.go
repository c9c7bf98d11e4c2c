package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(app fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("Skips Disabled", func(t *testing.T) {
		on := &fakeFeature{name: "equipment", enabled: true}
		off := &fakeFeature{name: "export", enabled: false}

		mgr := NewManager(nil)
		mgr.Register(on)
		mgr.Register(off)

		assert.NoError(t, mgr.LoadAll(fiber.New()))
		assert.True(t, on.loaded)
		assert.False(t, off.loaded)
		assert.Len(t, mgr.Features(), 2)
	})

	t.Run("Stops On Error", func(t *testing.T) {
		bad := &fakeFeature{name: "sync", enabled: true, err: errors.New("boom")}
		after := &fakeFeature{name: "export", enabled: true}

		mgr := NewManager(nil)
		mgr.Register(bad)
		mgr.Register(after)

		err := mgr.LoadAll(fiber.New())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sync")
		assert.False(t, after.loaded)
	})
}
