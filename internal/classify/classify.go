package classify

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/catalog"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text and strips diacritics, producing the comparison
// form used for keyword matching.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Classify resolves an inbound message to a catalog service.
//
// Attachment presence always wins over text: any message carrying a file is
// a print order, with the description rewritten to embed the file name.
// Otherwise catalog keys are scanned in catalog order and the first key found
// as a substring of the normalized body matches.
func Classify(cat *catalog.Catalog, msg models.InboundMessage) (models.Service, bool) {
	if msg.AttachmentCount > 0 {
		svc := cat.PrintService()
		svc.Description = fmt.Sprintf("Impressão do arquivo '%s'", AttachmentFileName(msg.AttachmentURL))
		return svc, true
	}

	body := Normalize(msg.RawBody)
	for _, svc := range cat.All() {
		if strings.Contains(body, svc.Key) {
			return svc, true
		}
	}
	return models.Service{}, false
}

// AttachmentFileName derives the original file name from the last path
// segment of the attachment URL.
func AttachmentFileName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	parts := strings.Split(rawURL, "/")
	return parts[len(parts)-1]
}
