package intents

import (
	"regexp"
	"strconv"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/internal/utils"
)

// Ordinals outside this range are rejected so stray numbers in speech
// ("son las 11 y media") don't get mistaken for picks.
const (
	minOrdinal = 1
	maxOrdinal = 20
)

// sourceAlias maps the surface forms of one paper to its canonical name.
// Table order is the tiebreak: when an utterance names two papers, the first
// entry that matches wins.
type sourceAlias struct {
	canonical string
	pattern   *regexp.Regexp
}

// All patterns run against folded text (lowercased, diacritics stripped).
var sourceAliases = []sourceAlias{
	{canonical: "La Nación", pattern: regexp.MustCompile(`la\s*nacion|\bnacion\b`)},
	{canonical: "Clarín", pattern: regexp.MustCompile(`\bclarin\b`)},
	{canonical: "Ámbito", pattern: regexp.MustCompile(`\bambito\b`)},
	{canonical: "El Cronista", pattern: regexp.MustCompile(`\bel\s*cronista\b|\bcronista\b`)},
	{canonical: "Infobae", pattern: regexp.MustCompile(`\binfobae\b`)},
	{canonical: "Página 12", pattern: regexp.MustCompile(`pagina\s*12|pagina12|\bp12\b`)},
}

// CanonicalSources lists the six fixed papers in table order.
func CanonicalSources() []string {
	sources := make([]string, len(sourceAliases))
	for i, alias := range sourceAliases {
		sources[i] = alias.canonical
	}
	return sources
}

var (
	changeSourcePattern = regexp.MustCompile(`otro\s*diario|cambiar\s*diario|cambia\s*de\s*diario|cambiemos\s*de\s*diario|probemos\s*otro|\bninguno\b|no\s*me\s*gusta`)
	topPattern          = regexp.MustCompile(`\bprincipales\b|\btop\b|mas\s*importantes|lo\s*mas\s*importante|titulares\s*principales`)
	refreshPattern      = regexp.MustCompile(`\bactualiza|\brefresca|\brecarga|descarga\s+de\s+nuevo|nuevas\s+noticias`)

	modePodcastPattern      = regexp.MustCompile(`modo\s*podcast`)
	modeConversationPattern = regexp.MustCompile(`modo\s*(conversacion|conversacional)`)

	presetProPattern      = regexp.MustCompile(`(voz|estilo)\s*(pro|seria|serio|premium)|modo\s*(serio|premium)`)
	presetCancheroPattern = regexp.MustCompile(`(voz|estilo)\s*(canchero|canchera|amigable)|modo\s*canchero`)
	presetStoryPattern    = regexp.MustCompile(`(voz|estilo)\s*(story|narrativo|narrativa|historia)|modo\s*(narrativo|story)`)

	ordinalPattern = regexp.MustCompile(`\b(?:la|el|titular|opcion|numero)\s+(\d{1,2})\b`)
	idPattern      = regexp.MustCompile(`\bid\s*[:#]?\s*(\d+)\b`)
)

// rule pairs a predicate with its intent constructor. Rules are evaluated in
// slice order; the first one that matches ends resolution.
type rule struct {
	name  string
	match func(folded string) (Intent, bool)
}

var rules = []rule{
	{name: "change_source", match: matchChangeSource},
	{name: "pick_source", match: matchPickSource},
	{name: "top_without_source", match: matchTopWithoutSource},
	{name: "refresh", match: matchRefresh},
	{name: "set_mode", match: matchSetMode},
	{name: "set_voice_preset", match: matchSetVoicePreset},
	{name: "pick_item", match: matchPickItem},
}

// Resolve classifies one utterance. It is accent- and case-insensitive and
// returns nil when no rule matches.
func Resolve(utterance string) Intent {
	folded := utils.Fold(utterance)
	if folded == "" {
		return nil
	}

	for _, r := range rules {
		if intent, ok := r.match(folded); ok {
			return intent
		}
	}
	return nil
}

func matchChangeSource(folded string) (Intent, bool) {
	if changeSourcePattern.MatchString(folded) {
		return ChangeSource{}, true
	}
	return nil, false
}

func matchPickSource(folded string) (Intent, bool) {
	for _, alias := range sourceAliases {
		if alias.pattern.MatchString(folded) {
			return PickSource{Source: alias.canonical}, true
		}
	}
	return nil, false
}

func matchTopWithoutSource(folded string) (Intent, bool) {
	// Reached only when no source matched above, so "principales de Clarín"
	// resolves to the source, not to the mixed top list.
	if topPattern.MatchString(folded) {
		return TopWithoutSource{}, true
	}
	return nil, false
}

func matchRefresh(folded string) (Intent, bool) {
	if refreshPattern.MatchString(folded) {
		return Refresh{}, true
	}
	return nil, false
}

func matchSetMode(folded string) (Intent, bool) {
	if modePodcastPattern.MatchString(folded) {
		return SetMode{Mode: conversations.ModePodcast}, true
	}
	if modeConversationPattern.MatchString(folded) {
		return SetMode{Mode: conversations.ModeConversation}, true
	}
	return nil, false
}

func matchSetVoicePreset(folded string) (Intent, bool) {
	switch {
	case presetCancheroPattern.MatchString(folded):
		return SetVoicePreset{Preset: conversations.PresetRadioCanchero}, true
	case presetStoryPattern.MatchString(folded):
		return SetVoicePreset{Preset: conversations.PresetPodcastStory}, true
	case presetProPattern.MatchString(folded):
		return SetVoicePreset{Preset: conversations.PresetRadioPro}, true
	}
	return nil, false
}

func matchPickItem(folded string) (Intent, bool) {
	ordinalLoc := ordinalPattern.FindStringSubmatchIndex(folded)
	idLoc := idPattern.FindStringSubmatchIndex(folded)

	var ordinal *int
	if ordinalLoc != nil {
		n, err := strconv.Atoi(folded[ordinalLoc[2]:ordinalLoc[3]])
		if err == nil && n >= minOrdinal && n <= maxOrdinal {
			ordinal = utils.Ptr(n - 1)
		}
	}

	var id *int64
	if idLoc != nil {
		n, err := strconv.ParseInt(folded[idLoc[2]:idLoc[3]], 10, 64)
		if err == nil {
			id = utils.Ptr(n)
		}
	}

	switch {
	case ordinal == nil && id == nil:
		return nil, false
	case ordinal == nil:
		return PickItem{ID: id}, true
	case id == nil:
		return PickItem{Index: ordinal}, true
	case idLoc[0] < ordinalLoc[0]:
		// The ordinal normally wins, unless the explicit id appears first in
		// the utterance.
		return PickItem{ID: id}, true
	default:
		return PickItem{Index: ordinal}, true
	}
}
