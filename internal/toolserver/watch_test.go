package toolserver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWatchRejectsPathOutsideGate(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	s := New([]string{root}, t.TempDir())

	args, _ := json.Marshal(watchArgs{Path: outside, DurationSeconds: 1})
	result, err := s.handleWatch(t.Context(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: args},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleWatchCapturesCreateEvent(t *testing.T) {
	root := t.TempDir()
	s := New([]string{root}, t.TempDir())

	done := make(chan struct{})
	go func() {
		time.Sleep(200 * time.Millisecond)
		os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0o644)
		close(done)
	}()

	args, _ := json.Marshal(watchArgs{Path: root, DurationSeconds: 2, MaxEvents: 5})
	result, err := s.handleWatch(t.Context(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: args},
	})
	<-done
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := result.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "stream_start")
	assert.Contains(t, text, "stream_complete")
}

func TestWatchArgsDefaults(t *testing.T) {
	a := watchArgs{}
	assert.Equal(t, 5, a.durationOrDefault())
	assert.Equal(t, 100, a.maxEventsOrDefault())
}
