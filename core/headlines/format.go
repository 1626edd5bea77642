package headlines

import (
	"fmt"
	"strings"

	"github.com/voyceradio/voyce-core/core/conversations"
)

// FormatList renders a numbered context block for injection:
//
//	1) [id:42] Title — Source (score:7)
//
// The narrator refers to items by the printed number or id, so the rendering
// must stay byte-stable for a given list.
func FormatList(list []Headline, max int) string {
	if max > 0 && len(list) > max {
		list = list[:max]
	}
	if len(list) == 0 {
		return ""
	}

	var b strings.Builder
	for i, h := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d) [id:%d] %s — %s (score:%d)", i+1, h.ID, h.Title, h.Source, h.ImportanceScore)
	}
	return b.String()
}

// FormatArticle renders the single-article context block. This is the only
// content injected for an expansion, so everything the narrator may say has
// to be in here.
func FormatArticle(a Article) string {
	var b strings.Builder
	b.WriteString("ARTÍCULO SELECCIONADO (HOY - DB). Usá SOLO esto.\n")
	fmt.Fprintf(&b, "Título: %s\nFuente: %s\n", a.Title, a.Source)
	if a.PublishedAt != nil {
		fmt.Fprintf(&b, "Fecha: %s\n", a.PublishedAt.In(CivilZone).Format("2006-01-02 15:04"))
	}
	if a.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", a.Link)
	}
	fmt.Fprintf(&b, "\nResumen: %s\n\nContenido:\n%s", a.Summary, a.FullBody)
	return b.String()
}

// Refs projects a headline list into the durable references stored on the
// conversation state document.
func Refs(list []Headline) []conversations.HeadlineRef {
	if len(list) == 0 {
		return nil
	}
	refs := make([]conversations.HeadlineRef, len(list))
	for i, h := range list {
		refs[i] = conversations.HeadlineRef{ID: h.ID, Source: h.Source, Title: h.Title}
	}
	return refs
}
