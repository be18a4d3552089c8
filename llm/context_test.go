package llm

import (
	"path/filepath"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextManagerCreatesOnDemand(t *testing.T) {
	m := ChatContextManager{}
	c := m.addMsg(openai.UserMessage("hello"))
	require.Len(t, c.Messages, 1)
	assert.False(t, c.IsEmpty())
}

func TestContextManagerList(t *testing.T) {
	m := ChatContextManager{}
	m.addMsg(openai.UserMessage("first question"))
	m.New()

	infos := m.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "first question", infos[0].Title)
	assert.False(t, infos[0].Current)
	assert.Equal(t, "New context", infos[1].Title)
	assert.True(t, infos[1].Current)
}

func TestContextManagerSwitchAndDelete(t *testing.T) {
	m := ChatContextManager{}
	m.addMsg(openai.UserMessage("a"))
	m.New()
	m.addMsg(openai.UserMessage("b"))

	require.NoError(t, m.SwitchTo(0))
	assert.True(t, m.List()[0].Current)

	assert.ErrorIs(t, m.SwitchTo(5), ErrInvalidContextIndex)
	assert.ErrorIs(t, m.Delete(-1), ErrInvalidContextIndex)

	require.NoError(t, m.Delete(0))
	infos := m.List()
	require.Len(t, infos, 1)
	assert.Equal(t, "b", infos[0].Title)
	assert.True(t, infos[0].Current)
}

func TestContextManagerClear(t *testing.T) {
	m := ChatContextManager{}
	m.Clear() // no contexts yet, must not panic
	m.addMsg(openai.UserMessage("a"))
	m.Clear()
	assert.True(t, m.currentLocked().IsEmpty())
}

func TestContextManagerSaveLoad(t *testing.T) {
	store := filepath.Join(t.TempDir(), "contexts")

	m := ChatContextManager{}
	m.addMsg(openai.UserMessage("persisted question"))
	m.New()
	require.NoError(t, m.SwitchTo(0))
	require.NoError(t, m.Save(store))

	restored := ChatContextManager{}
	require.NoError(t, restored.Load(store))
	infos := restored.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "persisted question", infos[0].Title)
	assert.True(t, infos[0].Current)
}

func TestContextManagerLoadMissingStore(t *testing.T) {
	m := ChatContextManager{}
	assert.NoError(t, m.Load(filepath.Join(t.TempDir(), "missing")))
}
