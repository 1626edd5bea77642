// Package narration encodes the narrator's behavioral policy: the invariant
// rule set, the voice-preset vocabulary layer and the mode structure layer.
// It never consults live data; every function here is a pure value from a
// closed (mode × preset) set and is snapshot-tested as such.
package narration

import (
	"strings"

	"github.com/voyceradio/voyce-core/core/conversations"
)

// SourceQuestion is the standing question the whole flow returns to. The
// wording is fixed; tests and re-asks rely on it verbatim.
const SourceQuestion = `"¿De qué diarios querés los principales titulares hoy? La Nación, Clarín, Ámbito, Cronista, Infobae, Página 12."`

const baseRules = `Sos VOYCE, locutor argentino de noticias.
Usás SOLO titulares de HOY que vienen de las listas inyectadas. NO inventes.
Reglas duras:
- Nombrá SIEMPRE el diario al citar un titular.
- NO hagas charla social. NO "hola, ¿cómo estás?". Empezá directo.
- Frases cortas, nada de párrafos largos.
- Si piden algo fuera de la lista/artículo: decí "No lo tengo en los titulares de hoy" y volvé a la elección.
Flujo obligatorio:
1) Preguntá: ` + SourceQuestion + `
2) Si el usuario dice "principales" sin diario: listá TOP 5 por importancia y nombrá el diario en cada uno.
3) Si elige diario: listá titulares de ESE diario (ordenados por importancia) y pedí elegir por número o id.
4) Si dice "otro diario"/"ninguno": volvé a la pregunta 1.
`

var presetLayers = map[conversations.VoicePreset]string{
	conversations.PresetRadioPro: `Estilo RADIO PRO: registro formal de noticiero, vocabulario preciso, conectores sobrios ("además", "en paralelo", "por otro lado").
`,
	conversations.PresetRadioCanchero: `Estilo RADIO CANCHERO: registro relajado y cercano, vocabulario coloquial rioplatense, conectores informales ("che, mirá", "ojo con esto", "y encima").
`,
	conversations.PresetPodcastStory: `Estilo PODCAST STORY: registro narrativo, arma escena antes del dato, conectores de relato ("todo empezó cuando", "acá viene el giro", "y entonces").
`,
}

var modeLayers = map[conversations.Mode]string{
	conversations.ModeConversation: `Modo CONVERSACIÓN: ida y vuelta. Sin saludos.
Por cada titular ampliado: resumen de 2-3 frases, máximo dos datos de contexto, y cerrá con UNA sola pregunta concreta. Preguntá y esperá.
`,
	conversations.ModePodcast: `Modo PODCAST: lectura corrida estilo radio. Sin saludos. Con hilo conductor.
Por cada nota ampliada seguí cuatro pasos: qué pasó, contexto, por qué importa, qué mirar. Cerrá con UNA pregunta para continuar.
Cuando listás titulares: hacelo como monólogo breve y al final pedí elegir uno para ampliar.
`,
}

// Build composes the instruction payload for a (mode, preset) pair. Unknown
// values are normalized into the closed sets first, so the result is always
// one of six fixed strings.
func Build(mode conversations.Mode, preset conversations.VoicePreset) string {
	mode = conversations.NormalizeMode(string(mode))
	preset = conversations.NormalizePreset(string(preset))

	var b strings.Builder
	b.WriteString(baseRules)
	b.WriteString(presetLayers[preset])
	b.WriteString(modeLayers[mode])
	return b.String()
}

// HeadlinesPerRead is how many headlines a per-source read covers.
func HeadlinesPerRead(mode conversations.Mode) int {
	if conversations.NormalizeMode(string(mode)) == conversations.ModePodcast {
		return 7
	}
	return 5
}

// ExpansionSeconds bounds the narrated length of a single-article expansion.
func ExpansionSeconds(mode conversations.Mode) (min, max int) {
	if conversations.NormalizeMode(string(mode)) == conversations.ModePodcast {
		return 60, 120
	}
	return 30, 60
}
