package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hookEntry(command string) HookEntry {
	return HookEntry{
		Matcher: "*",
		Hooks:   []HookCommand{{Type: "command", Command: command}},
	}
}

func TestAddHookDedupByCommand(t *testing.T) {
	doc := NewDocument()

	added, err := doc.AddHook("PostToolUse", hookEntry("/hooks/check.sh"))
	require.NoError(t, err)
	assert.True(t, added)

	// Same command again, even with a different matcher, is skipped
	dup := hookEntry("/hooks/check.sh")
	dup.Matcher = "Edit|Write"
	added, err = doc.AddHook("PostToolUse", dup)
	require.NoError(t, err)
	assert.False(t, added)

	commands, err := doc.HookCommands("PostToolUse")
	require.NoError(t, err)
	assert.Equal(t, []string{"/hooks/check.sh"}, commands)
}

func TestAddHookPreservesForeignEntries(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"hooks": {
			"PostToolUse": [
				{"matcher": "*", "hooks": [{"type": "command", "command": "custom-lint", "extra": 42}]}
			]
		}
	}`))
	require.NoError(t, err)

	added, err := doc.AddHook("PostToolUse", hookEntry("/hooks/fmt.sh"))
	require.NoError(t, err)
	assert.True(t, added)

	commands, err := doc.HookCommands("PostToolUse")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"custom-lint", "/hooks/fmt.sh"}, commands)
}

func TestRemoveHooksByPredicate(t *testing.T) {
	doc := NewDocument()
	_, err := doc.AddHook("PostToolUse", hookEntry("/plug/hooks/a.sh"))
	require.NoError(t, err)
	_, err = doc.AddHook("PostToolUse", hookEntry("other-tool --lint"))
	require.NoError(t, err)
	_, err = doc.AddHook("PreToolUse", hookEntry("/plug/hooks/b.sh"))
	require.NoError(t, err)

	removed, err := doc.RemoveHooks(func(cmd string) bool {
		return strings.HasPrefix(cmd, "/plug/")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	commands, err := doc.HookCommands("PostToolUse")
	require.NoError(t, err)
	assert.Equal(t, []string{"other-tool --lint"}, commands)

	// PreToolUse is empty now and its key must be gone
	commands, err = doc.HookCommands("PreToolUse")
	require.NoError(t, err)
	assert.Empty(t, commands)
}

func TestRemoveHooksNoMatchLeavesDocument(t *testing.T) {
	doc := NewDocument()
	_, err := doc.AddHook("Stop", hookEntry("notify.sh"))
	require.NoError(t, err)

	removed, err := doc.RemoveHooks(func(string) bool { return false })
	require.NoError(t, err)
	assert.Zero(t, removed)

	commands, err := doc.HookCommands("Stop")
	require.NoError(t, err)
	assert.Equal(t, []string{"notify.sh"}, commands)
}
