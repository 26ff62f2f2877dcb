package mcp

import "github.com/mark3labs/mcp-go/mcp"

func indexParam() mcp.ToolOption {
	return mcp.WithNumber("index",
		mcp.Required(),
		mcp.Description("Zero-based position of the effect in the effect list"),
	)
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check whether lightd is accepting color data and has a synchronized clock"),
		),
		s.handleGetHealth,
	)

	// Effect list
	s.mcpServer.AddTool(
		mcp.NewTool("list_effects",
			mcp.WithDescription("List all effects with the current effect and the time it has left"),
		),
		s.handleListEffects,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("next_effect",
			mcp.WithDescription("Advance to the next enabled effect"),
		),
		s.handleNextEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("previous_effect",
			mcp.WithDescription("Go back to the previous enabled effect"),
		),
		s.handlePreviousEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_current_effect",
			mcp.WithDescription("Show the effect at the given index and restart its timer"),
			indexParam(),
		),
		s.handleSetCurrentEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("enable_effect",
			mcp.WithDescription("Enable an effect so it takes part in rotation"),
			indexParam(),
		),
		s.handleEnableEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("disable_effect",
			mcp.WithDescription("Disable an effect; disabling the current effect moves on to the next enabled one"),
			indexParam(),
		),
		s.handleDisableEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("move_effect",
			mcp.WithDescription("Move an effect to a new position in the list"),
			indexParam(),
			mcp.WithNumber("new_index",
				mcp.Required(),
				mcp.Description("Target position"),
			),
		),
		s.handleMoveEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("copy_effect",
			mcp.WithDescription("Append a disabled copy of an effect, optionally changing its settings"),
			indexParam(),
			mcp.WithObject("settings",
				mcp.Description("Settings for the copy (e.g. {\"friendlyName\": \"Green\", \"color\": \"#00FF00\"})"),
			),
		),
		s.handleCopyEffect,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_effect",
			mcp.WithDescription("Delete an effect; core effects cannot be deleted"),
			indexParam(),
		),
		s.handleDeleteEffect,
	)

	// Effect settings
	s.mcpServer.AddTool(
		mcp.NewTool("get_effect_settings",
			mcp.WithDescription("Get the settings of an effect and a description of each"),
			indexParam(),
		),
		s.handleGetEffectSettings,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_effect_settings",
			mcp.WithDescription("Change settings of an effect. Use get_effect_settings to see which settings exist."),
			indexParam(),
			mcp.WithObject("settings",
				mcp.Required(),
				mcp.Description("Setting values keyed by name"),
			),
		),
		s.handleSetEffectSettings,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_interval",
			mcp.WithDescription("Set how long each effect is shown before moving on; 0 keeps the current effect forever"),
			mcp.WithNumber("seconds",
				mcp.Required(),
				mcp.Description("Interval in seconds"),
			),
		),
		s.handleSetInterval,
	)

	// Device settings
	s.mcpServer.AddTool(
		mcp.NewTool("get_settings",
			mcp.WithDescription("Get the device settings such as brightness, power limit and global colors"),
		),
		s.handleGetSettings,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_settings",
			mcp.WithDescription("Change device settings. Nothing changes when any value is invalid."),
			mcp.WithObject("settings",
				mcp.Required(),
				mcp.Description("Setting values keyed by name (e.g. {\"brightness\": 128})"),
			),
		),
		s.handleSetSettings,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_global_color",
			mcp.WithDescription("Show a solid color and derive the palette of palette effects from it"),
			mcp.WithString("color",
				mcp.Required(),
				mcp.Description("Color as \"#RRGGBB\" or a decimal RGB integer"),
			),
		),
		s.handleSetGlobalColor,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_global_color",
			mcp.WithDescription("Remove the global color and restore the effect list"),
		),
		s.handleClearGlobalColor,
	)
}
