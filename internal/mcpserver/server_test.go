package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/nats"
	"github.com/mark3labs/adspot/internal/orders"
	"github.com/mark3labs/adspot/internal/playback"
	"github.com/mark3labs/adspot/internal/wizard"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv    *Server
	orders *orders.Store
	player *playback.Controller
}

func setupTestServer(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	e, err := nats.Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	store := orders.NewStore(e.JS, e.Stream, "test-session")

	cat, err := catalog.Default()
	require.NoError(t, err)
	ctrl, err := wizard.FromCatalog(cat, "essential-reach", 450, 650)
	require.NoError(t, err)

	player := playback.New(func(playback.Item) (playback.Media, error) {
		return playback.NewClip(time.Hour), nil
	}, playback.WithSwitchDelay(time.Millisecond))
	items := make([]playback.Item, 0, len(cat.Auditions))
	for _, a := range cat.Auditions {
		items = append(items, playback.Item{ID: a.ID, Source: a.Source})
	}
	require.NoError(t, player.Initialize(items))
	t.Cleanup(func() { _ = player.Dispose() })

	return fixture{srv: New(ctrl, cat, store, player), orders: store, player: player}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func decodeView(t *testing.T, result *mcp.CallToolResult) stateView {
	t.Helper()
	require.False(t, result.IsError, extractText(result))
	var v stateView
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &v))
	return v
}

func TestHandleState_Initial(t *testing.T) {
	f := setupTestServer(t)

	v := decodeView(t, call(t, f.srv.handleState, "wizard_state", nil))
	assert.Equal(t, "Create", v.Stage)
	assert.Equal(t, 1, v.Position)
	assert.Empty(t, v.Channels)
	assert.Equal(t, "essential-reach", v.PlanID)
	assert.Equal(t, "$211.93", v.Total)
	assert.Empty(t, v.OrderID)
}

func TestHandleNavigation(t *testing.T) {
	f := setupTestServer(t)

	v := decodeView(t, call(t, f.srv.handleRetreat, "wizard_retreat", nil))
	assert.Equal(t, "Create", v.Stage)

	v = decodeView(t, call(t, f.srv.handleAdvance, "wizard_advance", nil))
	assert.Equal(t, "Preview", v.Stage)

	v = decodeView(t, call(t, f.srv.handleJump, "wizard_jump", map[string]any{"stage": "confirm"}))
	assert.Equal(t, "Confirm", v.Stage)

	v = decodeView(t, call(t, f.srv.handleAdvance, "wizard_advance", nil))
	assert.Equal(t, "Confirm", v.Stage)

	v = decodeView(t, call(t, f.srv.handleJump, "wizard_jump", map[string]any{"stage": "3"}))
	assert.Equal(t, "Schedule", v.Stage)
}

func TestHandleJump_Invalid(t *testing.T) {
	f := setupTestServer(t)

	result := call(t, f.srv.handleJump, "wizard_jump", map[string]any{"stage": "checkout"})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "invalid stage target")

	result = call(t, f.srv.handleJump, "wizard_jump", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "'stage'")
}

func TestHandleToggleChannel(t *testing.T) {
	f := setupTestServer(t)

	v := decodeView(t, call(t, f.srv.handleToggleChannel, "toggle_channel", map[string]any{"id": "shark"}))
	assert.Equal(t, []string{"shark"}, v.Channels)

	v = decodeView(t, call(t, f.srv.handleToggleChannel, "toggle_channel", map[string]any{"id": "shark"}))
	assert.Empty(t, v.Channels)

	result := call(t, f.srv.handleToggleChannel, "toggle_channel", map[string]any{"id": "kroq"})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "unknown station")
}

func TestHandleChoosePlan(t *testing.T) {
	f := setupTestServer(t)

	v := decodeView(t, call(t, f.srv.handleChoosePlan, "choose_plan", map[string]any{"id": "market-impact"}))
	assert.Equal(t, "market-impact", v.PlanID)
	assert.Equal(t, "$531.43", v.Total)

	result := call(t, f.srv.handleChoosePlan, "choose_plan", map[string]any{"id": "gold"})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "invalid plan selection")

	v = decodeView(t, call(t, f.srv.handleState, "wizard_state", nil))
	assert.Equal(t, "market-impact", v.PlanID)
}

func TestHandleSetScript(t *testing.T) {
	f := setupTestServer(t)

	v := decodeView(t, call(t, f.srv.handleSetScript, "set_script", map[string]any{"text": "Short and sweet."}))
	assert.Equal(t, "Short and sweet.", v.Script)
	assert.Equal(t, 450-len("Short and sweet."), v.Remaining)

	result := call(t, f.srv.handleSetScript, "set_script", map[string]any{"text": strings.Repeat("x", 451)})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "script too long")

	v = decodeView(t, call(t, f.srv.handleSetScript, "set_script", map[string]any{"text": ""}))
	assert.Equal(t, "", v.Script)
	assert.Equal(t, 450, v.Remaining)
}

func TestHandleTogglePreview(t *testing.T) {
	f := setupTestServer(t)

	result := call(t, f.srv.handleTogglePreview, "toggle_preview", map[string]any{"id": "1"})
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, "playing 1", extractText(result))

	result = call(t, f.srv.handleTogglePreview, "toggle_preview", map[string]any{"id": "2"})
	assert.Equal(t, "playing 2", extractText(result))
	assert.Equal(t, "2", f.player.State().ActiveID)

	result = call(t, f.srv.handleTogglePreview, "toggle_preview", map[string]any{"id": "2"})
	assert.Equal(t, "stopped", extractText(result))

	result = call(t, f.srv.handleTogglePreview, "toggle_preview", map[string]any{"id": "9"})
	assert.True(t, result.IsError)
}

func TestHandleSubmit(t *testing.T) {
	f := setupTestServer(t)
	ctx := context.Background()

	result := call(t, f.srv.handleSubmit, "submit_order", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "confirm")

	call(t, f.srv.handleJump, "wizard_jump", map[string]any{"stage": "confirm"})
	result = call(t, f.srv.handleSubmit, "submit_order", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "station")

	call(t, f.srv.handleToggleChannel, "toggle_channel", map[string]any{"id": "usfm"})
	v := decodeView(t, call(t, f.srv.handleSubmit, "submit_order", nil))
	require.NotEmpty(t, v.OrderID)

	again := decodeView(t, call(t, f.srv.handleSubmit, "submit_order", nil))
	assert.Equal(t, v.OrderID, again.OrderID)

	list, err := f.orders.List(ctx, "test-session")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, v.OrderID, list[0].ID)
	assert.Equal(t, []string{"usfm"}, list[0].Stations)
}

func TestServer_StartStop(t *testing.T) {
	f := setupTestServer(t)
	ctx := context.Background()

	port, err := f.srv.Start(ctx, "")
	require.NoError(t, err)
	assert.Greater(t, port, 0)
	assert.Contains(t, f.srv.URL(), "/mcp")

	_, err = f.srv.Start(ctx, "")
	assert.Error(t, err)

	require.NoError(t, f.srv.Stop(ctx))
	require.NoError(t, f.srv.Stop(ctx))
}

func TestServer_RegistersTools(t *testing.T) {
	f := setupTestServer(t)
	tools := f.srv.MCP().ListTools()
	for _, name := range []string{
		"wizard_state", "wizard_advance", "wizard_retreat", "wizard_jump",
		"toggle_channel", "choose_plan", "set_script", "toggle_preview", "submit_order",
	} {
		assert.Contains(t, tools, name)
	}
}
