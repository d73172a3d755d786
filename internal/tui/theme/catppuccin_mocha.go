package theme

// NewCatppuccinMocha creates the default Catppuccin Mocha theme.
func NewCatppuccinMocha() *Theme {
	return &Theme{
		Name:   "catppuccin-mocha",
		IsDark: true,

		Primary:   "#cba6f7", // Mauve
		Secondary: "#b4befe", // Lavender
		Tertiary:  "#f9e2af", // Yellow

		BgBase:     "#1e1e2e",
		BgMantle:   "#181825",
		BgSurface0: "#313244",
		BgSurface1: "#45475a",

		FgMuted:  "#6c7086", // Overlay0
		FgSubtle: "#bac2de", // Subtext1
		FgBase:   "#cdd6f4",

		Success: "#a6e3a1",
		Warning: "#fab387",
		Error:   "#f38ba8",
		Info:    "#89b4fa",

		DiffInsert: "#a6e3a1",
		DiffDelete: "#f38ba8",
	}
}
