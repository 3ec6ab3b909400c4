package model

// ColorOrder is the canonical ordering of primary colors used when
// sorting meta-timeline series, so related archetypes group together
// before popularity ordering kicks in.
var ColorOrder = []string{"Red", "Blue", "Yellow", "Green", "Purple", "Black", "White", "Multi", "Other"}

// ColorHex maps primary color names to chart hex values.
var ColorHex = map[string]string{
	"Red":    "#E5383B",
	"Blue":   "#2D7DD2",
	"Yellow": "#F5B700",
	"Green":  "#38A169",
	"Black":  "#2D3748",
	"Purple": "#805AD5",
	"White":  "#A0AEC0",
	"Multi":  "#EC4899",
	"Other":  "#9CA3AF",
}

// FallbackColorHex is used for colors missing from ColorHex.
const FallbackColorHex = "#6B7280"

// ColorRank returns the position of color in ColorOrder, or a rank
// past the end for colors not listed.
func ColorRank(color string) int {
	for i, c := range ColorOrder {
		if c == color {
			return i
		}
	}
	return len(ColorOrder)
}
