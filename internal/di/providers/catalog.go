package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/catalog/googlebooks"
	"github.com/shelfmark/shelfmark-server/internal/catalog/openlibrary"
	"github.com/shelfmark/shelfmark-server/internal/config"
	"github.com/shelfmark/shelfmark-server/internal/logger"
)

// ProvideGoogleBooksClient provides the Google Books catalog source.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return googlebooks.New(
		cfg.Catalog.GoogleBooksBaseURL,
		cfg.Catalog.GoogleBooksAPIKey,
		log.Logger,
		googlebooks.WithRate(cfg.Catalog.OutboundRPS, cfg.Catalog.OutboundBurst),
	), nil
}

// ProvideOpenLibraryClient provides the Open Library catalog source.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return openlibrary.New(
		cfg.Catalog.OpenLibraryBaseURL,
		log.Logger,
		openlibrary.WithRate(cfg.Catalog.OutboundRPS, cfg.Catalog.OutboundBurst),
	), nil
}

// ProvideResolver provides the catalog resolver. Source order is priority
// order: Google Books answers first when both succeed.
func ProvideResolver(i do.Injector) (*catalog.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	google := do.MustInvoke[*googlebooks.Client](i)
	openLib := do.MustInvoke[*openlibrary.Client](i)

	sources := []catalog.Source{google, openLib}

	return catalog.NewResolver(
		sources,
		cfg.Resolver.SourceTimeout,
		cfg.Resolver.TotalBudget,
		log.Logger,
	), nil
}
