package narration

import (
	"fmt"

	"github.com/voyceradio/voyce-core/core/conversations"
)

// Per-request prompts. Each narration request carries one of these on top of
// the session instructions; they tell the narrator what to do with the
// context that was just injected, never what facts to say.

// OpeningPrompt asks the standing source question. The greeting happens at
// most once per app session, on the very first live turn.
func OpeningPrompt(greet bool) string {
	lead := "Sin saludar. Preguntá textual:\n"
	if greet {
		lead = "Saludá UNA sola vez, muy breve, y preguntá textual:\n"
	}
	return lead + SourceQuestion + "\n" +
		`Si responde "principales" sin elegir diario: leé TOP 5 (con diario) y preguntá si elige un diario o un titular.` + "\n"
}

// SourceQuestionPrompt re-asks the standing question verbatim, e.g. after
// "otro diario" or a refresh.
func SourceQuestionPrompt() string {
	return "Sin saludar. Volvé a preguntar:\n" + SourceQuestion
}

// NoHeadlinesPrompt is the terminal branch for an empty corpus: say it
// plainly and offer to refresh. No source question is asked.
func NoHeadlinesPrompt() string {
	return `Decí directo: "Todavía no tengo titulares cargados para hoy. ¿Querés que intente actualizar ahora?"`
}

// TopFivePrompt reads the injected mixed top-5 and asks for a source or a
// pick.
func TopFivePrompt(mode conversations.Mode) string {
	ask := `al final preguntá: "¿Querés elegir un diario o amplío uno de estos? Decime número o id."`
	if conversations.NormalizeMode(string(mode)) == conversations.ModePodcast {
		return "Leé estos 5 como monólogo corto y " + ask
	}
	return "Leé estos 5 y " + ask
}

// SourceReadPrompt reads n headlines of the chosen paper and asks for a pick.
func SourceReadPrompt(mode conversations.Mode, source string, n int) string {
	ask := `al final: "¿Cuál querés que amplíe? Decime número o id."`
	if conversations.NormalizeMode(string(mode)) == conversations.ModePodcast {
		return fmt.Sprintf("Sin saludar. Leé %d titulares de %s (por importancia) como monólogo breve y %s", n, source, ask)
	}
	return fmt.Sprintf("Sin saludar. Leé %d titulares de %s (por importancia) y %s", n, source, ask)
}

// RefreshDonePrompt reports whether anything changed and re-asks the
// standing question.
func RefreshDonePrompt() string {
	return "Sin saludar. Decí si hay novedades y volvé a preguntar:\n" + SourceQuestion
}

// ArticleExpansionPrompt narrates the injected article within the mode's
// length bounds and closes with the continue-or-switch question.
func ArticleExpansionPrompt(mode conversations.Mode) string {
	min, max := ExpansionSeconds(mode)
	closing := `Al final: "¿Amplío otro titular o cambiamos de diario?"`
	if conversations.NormalizeMode(string(mode)) == conversations.ModePodcast {
		return fmt.Sprintf("Modo podcast: contá la nota casi completa con hilo conductor, sin inventar, %d-%ds. %s", min, max, closing)
	}
	return fmt.Sprintf("Modo conversación: ampliá %d-%ds, directo, sin inventar. %s", min, max, closing)
}

// RepeatPickPrompt recovers from an unresolvable pick by asking the user to
// repeat the number; it is never surfaced as an error.
func RepeatPickPrompt() string {
	return `Sin saludar. Decí: "No encontré ese titular. ¿Me repetís el número o el id?"`
}

// ArticleUnavailablePrompt is the recovery for a failed article fetch: no
// content was injected, so the narrator must steer to a different pick
// instead of improvising.
func ArticleUnavailablePrompt() string {
	return `Sin saludar. Decí: "No pude traer esa nota completa. ¿Querés que amplíe otro titular?"`
}

// SettingsChangedPrompt acknowledges a spoken mode or voice change and
// returns to wherever the flow was.
func SettingsChangedPrompt() string {
	return "Sin saludar. Confirmá el cambio en una frase corta y seguí donde estabas."
}

// NoHeadlinesFact is the context block injected when the corpus is empty.
const NoHeadlinesFact = "NO HAY TITULARES CARGADOS EN DB PARA HOY."
