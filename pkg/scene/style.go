package scene

import "github.com/matzehuels/stargraph/pkg/graph"

// Style holds the visual constants of the scene.
type Style struct {
	UserFill         string  `toml:"user_fill" json:"userFill"`
	OrgRepoFill      string  `toml:"org_repo_fill" json:"orgRepoFill"`
	PersonalRepoFill string  `toml:"personal_repo_fill" json:"personalRepoFill"`
	TextFill         string  `toml:"text_fill" json:"textFill"`
	LineStroke       string  `toml:"line_stroke" json:"lineStroke"`
	LineWidth        float64 `toml:"line_width" json:"lineWidth"`
	LineOpacity      float64 `toml:"line_opacity" json:"lineOpacity"`
	PadX             float64 `toml:"pad_x" json:"padX"`
	PadY             float64 `toml:"pad_y" json:"padY"`
	UserLabelOffset  float64 `toml:"user_label_offset" json:"userLabelOffset"`
	SkeletonRadius   float64 `toml:"skeleton_radius" json:"skeletonRadius"`
	SkeletonFill     string  `toml:"skeleton_fill" json:"skeletonFill"`
	AvatarSize       float64 `toml:"avatar_size" json:"avatarSize"`
	FontSize         float64 `toml:"font_size" json:"fontSize"`
}

// DefaultStyle returns the reference look: purple user pills, blue
// organization repositories, near-black personal repositories.
func DefaultStyle() Style {
	return Style{
		UserFill:         "#800080",
		OrgRepoFill:      "#1f6feb",
		PersonalRepoFill: "#222222",
		TextFill:         "#ffffff",
		LineStroke:       "#999999",
		LineWidth:        1,
		LineOpacity:      0.8,
		PadX:             10,
		PadY:             5,
		UserLabelOffset:  40,
		SkeletonRadius:   30,
		SkeletonFill:     "#cccccc",
		AvatarSize:       50,
		FontSize:         16,
	}
}

// FillFor returns the pill colour for a role.
func (s Style) FillFor(r graph.Role) string {
	switch r {
	case graph.RoleUser:
		return s.UserFill
	case graph.RoleOrgRepo:
		return s.OrgRepoFill
	default:
		return s.PersonalRepoFill
	}
}
