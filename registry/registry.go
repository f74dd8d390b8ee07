// Package registry holds the static catalog of known theme repositories
// and the light/dark classification used across the service.
package registry

import (
	"sort"
	"strings"
)

// Official maps theme names to their source repositories. The catalog is
// immutable at runtime; themes not listed here can still be installed by
// passing an explicit URL.
var Official = map[string]string{
	"amberbyte":          "https://github.com/tahfizhabib/omarchy-amberbyte-theme",
	"arc-blueberry":      "https://github.com/vale-c/omarchy-arc-blueberry",
	"archwave":           "https://github.com/davidguttman/archwave",
	"ash":                "https://github.com/bjarneo/omarchy-ash-theme",
	"artzen":             "https://github.com/tahfizhabib/omarchy-artzen-theme",
	"aura":               "https://github.com/bjarneo/omarchy-aura-theme",
	"all-hallows-eve":    "https://github.com/guilhermetk/omarchy-all-hallows-eve-theme",
	"ayaka":              "https://github.com/abhijeet-swami/omarchy-ayaka-theme",
	"azure-glow":         "https://github.com/Hydradevx/omarchy-azure-glow-theme",
	"bauhaus":            "https://github.com/somerocketeer/omarchy-bauhaus-theme",
	"black_arch":         "https://github.com/ankur311sudo/black_arch",
	"blackgold":          "https://github.com/HANCORE-linux/omarchy-blackgold-theme",
	"blackturq":          "https://github.com/HANCORE-linux/omarchy-blackturq-theme",
	"bliss":              "https://github.com/mishonki3/omarchy-bliss-theme",
	"bluedotrb":          "https://github.com/dotsilva/omarchy-bluedotrb-theme",
	"blueridge-dark":     "https://github.com/hipsterusername/omarchy-blueridge-dark-theme",
	"catppuccin-dark":    "https://github.com/Luquatic/omarchy-catppuccin-dark",
	"citrus-cynapse":     "https://github.com/Grey-007/citrus-cynapse",
	"cobalt2":            "https://github.com/hoblin/omarchy-cobalt2-theme",
	"darcula":            "https://github.com/noahljungberg/omarchy-darcula-theme",
	"demon":              "https://github.com/HANCORE-linux/omarchy-demon-theme",
	"dotrb":              "https://github.com/dotsilva/omarchy-dotrb-theme",
	"drac":               "https://github.com/ShehabShaef/omarchy-drac-theme",
	"dracula":            "https://github.com/catlee/omarchy-dracula-theme",
	"eldritch":           "https://github.com/eldritch-theme/omarchy",
	"evergarden":         "https://github.com/celsobenedetti/omarchy-evergarden",
	"felix":              "https://github.com/TyRichards/omarchy-felix-theme",
	"fireside":           "https://github.com/bjarneo/omarchy-fireside-theme",
	"flexoki-dark":       "https://github.com/euandeas/omarchy-flexoki-dark-theme",
	"forest-green":       "https://github.com/abhijeet-swami/omarchy-forest-green-theme",
	"frost":              "https://github.com/bjarneo/omarchy-frost-theme",
	"futurism":           "https://github.com/bjarneo/omarchy-futurism-theme",
	"gold-rush":          "https://github.com/tahayvr/omarchy-gold-rush-theme",
	"thegreek":           "https://github.com/HANCORE-linux/omarchy-thegreek-theme",
	"green-garden":       "https://github.com/kalk-ak/omarchy-green-garden-theme",
	"gruvu":              "https://github.com/ankur311sudo/gruvu",
	"infernium-dark":     "https://github.com/RiO7MAKK3R/omarchy-infernium-dark-theme",
	"mapquest":           "https://github.com/ItsABigIgloo/omarchy-mapquest-theme",
	"mars":               "https://github.com/steve-lohmeyer/omarchy-mars-theme",
	"mechanoonna":        "https://github.com/HANCORE-linux/omarchy-mechanoonna-theme",
	"miasma":             "https://github.com/OldJobobo/omarchy-miasma-theme",
	"midnight":           "https://github.com/JaxonWright/omarchy-midnight-theme",
	"milkmatcha-light":   "https://github.com/hipsterusername/omarchy-milkmatcha-light-theme",
	"monochrome":         "https://github.com/Swarnim114/omarchy-monochrome-theme",
	"monokai":            "https://github.com/bjarneo/omarchy-monokai-theme",
	"nagai-poolside":     "https://github.com/somerocketeer/omarchy-nagai-poolside-theme",
	"neo-sploosh":        "https://github.com/monoooki/omarchy-neo-sploosh-theme",
	"neovoid":            "https://github.com/RiO7MAKK3R/omarchy-neovoid-theme",
	"nes":                "https://github.com/bjarneo/omarchy-nes-theme",
	"omacarchy":          "https://github.com/RiO7MAKK3R/omarchy-omacarchy-theme",
	"one-dark-pro":       "https://github.com/sc0ttman/omarchy-one-dark-pro-theme",
	"pandora":            "https://github.com/imbypass/omarchy-pandora-theme",
	"pina":               "https://github.com/bjarneo/omarchy-pina-theme",
	"pink-blood-omarchy": "https://github.com/ITSZXY/pink-blood-omarchy-theme",
	"pulsar":             "https://github.com/bjarneo/omarchy-pulsar-theme",
	"purple-moon":        "https://github.com/Grey-007/purple-moon",
	"purplewave":         "https://github.com/dotsilva/omarchy-purplewave-theme",
	"rainynight":         "https://github.com/atif-1402/omarchy-rainynight-theme",
	"retropc":            "https://github.com/rondilley/omarchy-retropc-theme",
	"rose-pine-dark":     "https://github.com/guilhermetk/omarchy-rose-pine-dark",
	"roseofdune":         "https://github.com/HANCORE-linux/omarchy-roseofdune-theme",
	"sakura":             "https://github.com/bjarneo/omarchy-sakura-theme",
	"sapphire":           "https://github.com/HANCORE-linux/omarchy-sapphire-theme",
	"shadesofjade":       "https://github.com/HANCORE-linux/omarchy-shadesofjade-theme",
	"space-monkey":       "https://github.com/TyRichards/omarchy-space-monkey-theme",
	"snow":               "https://github.com/bjarneo/omarchy-snow-theme",
	"solarized":          "https://github.com/Gazler/omarchy-solarized-theme",
	"solarized-light":    "https://github.com/dfrico/omarchy-solarized-light-theme",
	"solarizedosaka":     "https://github.com/motorsss/omarchy-solarizedosaka-theme",
	"sunset":             "https://github.com/rondilley/omarchy-sunset-theme",
	"sunset-drive":       "https://github.com/tahayvr/omarchy-sunset-drive-theme",
	"super-game-bro":     "https://github.com/TyRichards/omarchy-super-game-bro-theme",
	"synthwave84":        "https://github.com/omacom-io/omarchy-synthwave84-theme",
	"temerald":           "https://github.com/Ahmad-Mtr/omarchy-temerald-theme",
	"tokyoled":           "https://github.com/Justin-De-Sio/omarchy-tokyoled-theme",
	"tycho":              "https://github.com/leonardobetti/omarchy-tycho",
	"waveform-dark":      "https://github.com/hipsterusername/omarchy-waveform-dark-theme",
	"whitegold":          "https://github.com/HANCORE-linux/omarchy-whitegold-theme",
	"van-gogh":           "https://github.com/Nirmal314/omarchy-van-gogh-theme",
	"vesper":             "https://github.com/thmoee/omarchy-vesper-theme",
	"vhs80":              "https://github.com/tahayvr/omarchy-vhs80-theme",
	"void":               "https://github.com/vyrx-dev/omarchy-void-theme",
}

// lightThemes are the known light themes; everything else is dark unless
// its name says otherwise.
var lightThemes = map[string]bool{
	"catppuccin-latte": true,
	"flexoki-light":    true,
	"milkmatcha-light": true,
	"snow":             true,
	"snow_black":       true,
	"solarized-light":  true,
	"whitegold":        true,
	"frost":            true,
	"bliss":            true,
}

// Mode reports whether a theme is "light" or "dark".
func Mode(name string) string {
	if lightThemes[name] || strings.Contains(strings.ToLower(name), "light") {
		return "light"
	}
	return "dark"
}

// URL returns the source repository for a registry theme, or "" when the
// name is unknown.
func URL(name string) string {
	return Official[name]
}

// Names returns all registry theme names in sorted order. Bulk runs iterate
// this slice so their processing order is deterministic.
func Names() []string {
	names := make([]string, 0, len(Official))
	for name := range Official {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
