package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/wizard"
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard_state",
			mcp.WithDescription("Show the current stage, selections, remaining script budget and price quote"),
		),
		s.handleState,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("wizard_advance",
			mcp.WithDescription("Move to the next stage. Does nothing at the Confirm stage"),
		),
		s.handleAdvance,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("wizard_retreat",
			mcp.WithDescription("Move to the previous stage. Does nothing at the Create stage"),
		),
		s.handleRetreat,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("wizard_jump",
			mcp.WithDescription("Jump directly to a stage"),
			mcp.WithString("stage", mcp.Required(),
				mcp.Description("Stage name (create, preview, schedule, confirm) or 1-based position"),
			),
		),
		s.handleJump,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("toggle_channel",
			mcp.WithDescription("Select or deselect a radio station"),
			mcp.WithString("id", mcp.Required(),
				mcp.Description("Station id, for example 'shark'"),
			),
		),
		s.handleToggleChannel,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("choose_plan",
			mcp.WithDescription("Choose the airtime plan"),
			mcp.WithString("id", mcp.Required(),
				mcp.Description("Plan id, for example 'market-impact'"),
			),
		),
		s.handleChoosePlan,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("set_script",
			mcp.WithDescription("Replace the ad script. Rejected when longer than the character budget"),
			mcp.WithString("text", mcp.Required(),
				mcp.Description("Full script text"),
			),
		),
		s.handleSetScript,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("toggle_preview",
			mcp.WithDescription("Start or stop an audition preview. Starting one stops any other"),
			mcp.WithString("id", mcp.Required(),
				mcp.Description("Audition id"),
			),
		),
		s.handleTogglePreview,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("submit_order",
			mcp.WithDescription("Place the order. Only allowed at the Confirm stage with at least one station"),
		),
		s.handleSubmit,
	)
}

// stateView is what every wizard tool returns.
type stateView struct {
	Stage     string       `json:"stage"`
	Position  int          `json:"position"`
	Channels  []string     `json:"channels"`
	PlanID    string       `json:"plan_id"`
	Script    string       `json:"script"`
	Remaining int          `json:"remaining"`
	Quote     wizard.Quote `json:"quote"`
	Total     string       `json:"total"`
	OrderID   string       `json:"order_id,omitempty"`
}

// viewLocked renders the wizard. Callers hold wizMu.
func (s *Server) viewLocked() *mcp.CallToolResult {
	snap := s.wizard.Snapshot()
	q := s.wizard.Quote()
	v := stateView{
		Stage:     snap.Stage.String(),
		Position:  snap.Stage.Index() + 1,
		Channels:  snap.Channels,
		PlanID:    snap.PlanID,
		Script:    snap.Script,
		Remaining: s.wizard.Remaining(),
		Quote:     q,
		Total:     catalog.FormatCents(q.TotalCents),
	}
	if r, ok := s.wizard.Submitted(); ok {
		v.OrderID = r.OrderID
	}
	return jsonResult(v)
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func stringArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return "", mcp.NewToolResultError("no arguments provided")
	}
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("missing or empty '%s' parameter", name))
	}
	return v, nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	return s.viewLocked(), nil
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	s.wizard.Advance()
	return s.viewLocked(), nil
}

func (s *Server) handleRetreat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	s.wizard.Retreat()
	return s.viewLocked(), nil
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, bad := stringArg(request, "stage")
	if bad != nil {
		return bad, nil
	}
	stage, err := wizard.ParseStage(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	if err := s.wizard.JumpTo(stage); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewLocked(), nil
}

func (s *Server) handleToggleChannel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := stringArg(request, "id")
	if bad != nil {
		return bad, nil
	}
	if _, ok := s.catalog.Station(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown station %q", id)), nil
	}

	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	if _, err := s.wizard.ToggleChannel(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewLocked(), nil
}

func (s *Server) handleChoosePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := stringArg(request, "id")
	if bad != nil {
		return bad, nil
	}

	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	if err := s.wizard.ChoosePlan(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewLocked(), nil
}

func (s *Server) handleSetScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return mcp.NewToolResultError("missing 'text' parameter"), nil
	}

	s.wizMu.Lock()
	defer s.wizMu.Unlock()
	if err := s.wizard.SetScriptText(text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewLocked(), nil
}

func (s *Server) handleTogglePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := stringArg(request, "id")
	if bad != nil {
		return bad, nil
	}
	if s.player == nil {
		return mcp.NewToolResultError("audio preview is not available"), nil
	}

	st, err := s.player.Toggle(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if st.Playing() {
		return mcp.NewToolResultText(fmt.Sprintf("playing %s", st.ActiveID)), nil
	}
	return mcp.NewToolResultText("stopped"), nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.wizMu.Lock()
	defer s.wizMu.Unlock()

	if _, err := s.wizard.Submit(ctx, s.submitter); err != nil {
		if errors.Is(err, wizard.ErrAlreadySubmitted) {
			return s.viewLocked(), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewLocked(), nil
}
