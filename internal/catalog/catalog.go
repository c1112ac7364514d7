package catalog

import (
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

// printServiceKey is the catalog entry used for every order that arrives as
// a file attachment.
const printServiceKey = "impressao"

// Catalog is an ordered, immutable set of services. Insertion order is
// significant: it drives both keyword classification (first match wins) and
// help-menu rendering.
type Catalog struct {
	services []models.Service
	index    map[string]int
	printKey string
}

// New builds a catalog from an ordered list of services. printKey selects
// the entry used for attachment orders.
func New(services []models.Service, printKey string) *Catalog {
	c := &Catalog{
		services: make([]models.Service, len(services)),
		index:    make(map[string]int, len(services)),
		printKey: printKey,
	}
	copy(c.services, services)
	for i, svc := range c.services {
		c.index[svc.Key] = i
	}
	return c
}

// Default returns the shop's service table. Two keys alias the same print
// service so the help menu deduplicates by description.
func Default() *Catalog {
	return New([]models.Service{
		{Key: "impressao", Description: "Impressão P&B", PriceCents: 150, Instructions: "Envie o arquivo."},
		{Key: "imprimir", Description: "Impressão P&B", PriceCents: 150, Instructions: "Envie o arquivo."},
		{Key: "curriculo", Description: "Criação de Currículo", PriceCents: 1500, Instructions: "Envie 'quero um currículo'."},
		{Key: "certidao", Description: "Emissão de Certidão", PriceCents: 1000, Instructions: "Envie 'preciso da certidão'."},
		{Key: "foto", Description: "Impressão de Foto 3x4", PriceCents: 800, Instructions: "Envie 'imprimir foto 3x4'."},
	}, printServiceKey)
}

// Lookup returns the service registered under key.
func (c *Catalog) Lookup(key string) (models.Service, bool) {
	i, ok := c.index[key]
	if !ok {
		return models.Service{}, false
	}
	return c.services[i], true
}

// All returns the services in insertion order. The slice is a copy; callers
// may not mutate the catalog through it.
func (c *Catalog) All() []models.Service {
	out := make([]models.Service, len(c.services))
	copy(out, c.services)
	return out
}

// PrintService returns the entry used for attachment orders.
func (c *Catalog) PrintService() models.Service {
	svc, _ := c.Lookup(c.printKey)
	return svc
}

// Len returns the number of entries, aliases included.
func (c *Catalog) Len() int {
	return len(c.services)
}
