package tiering

import "fmt"

// Theme values accepted for tier naming.
const (
	ThemePlain      = "plain"
	ThemeGuitarHero = "guitar-hero"
)

// guitarHeroNames is the classic career ladder. Tiers beyond the list get a
// numbered encore.
var guitarHeroNames = []string{
	"Local Gig",
	"Small Club",
	"Battle of the Bands",
	"Tour Bus",
	"Arena Show",
	"Stadium Rock",
	"Legends Set",
	"Encore Nights",
	"World Tour",
	"Finale",
	"Hall of Fame",
}

// TierName returns the display name for a zero-based tier index under the
// given theme. Unknown themes fall back to plain.
func TierName(theme string, index int) string {
	if theme == ThemeGuitarHero {
		if index < len(guitarHeroNames) {
			return guitarHeroNames[index]
		}
		return fmt.Sprintf("Hall of Fame %d", index-len(guitarHeroNames)+2)
	}
	return fmt.Sprintf("Tier %d", index+1)
}
