package commands

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/dispatch"
)

const (
	noRepositoriesWithFilterTemplateConstant = "No repositories found with %s"
	noRepositoriesInCatalogTemplateConstant  = "No repositories found in %s"
	tagFilterTemplateConstant                = "tag '%s'"
	namesFilterTemplateConstant              = "repositories %s"
	tagAndNamesFilterTemplateConstant        = "tag '%s' and repositories %s"
	namesSeparatorConstant                   = ", "
	plainMessageTemplateConstant             = "%s"
	doneTemplateConstant                     = "%s (%d succeeded, %d failed)"
	unknownRepositoryLogMessageConstant      = "repository name not found in catalog"
	unknownTagLogMessageConstant             = "tag not carried by any repository"
	batchSelectedLogMessageConstant          = "repositories selected"
	logFieldNameConstant                     = "name"
	logFieldTagConstant                      = "tag"
	logFieldReasonConstant                   = "reason"
	logFieldSuggestionsConstant              = "suggestions"
	logFieldCatalogConstant                  = "catalog"
	logFieldSelectedConstant                 = "selected"
	maximumSuggestionsConstant               = 3
)

// batchPlan describes one catalog-driven batch.
type batchPlan struct {
	operation dispatch.Operation
	// banner receives the number of selected repositories.
	banner      func(repositoryCount int) string
	doneMessage string
	executors   func(sink *console.Console) (dispatch.Executors, error)
}

// runBatch loads the catalog, applies the selectors and dispatches plan.
// Catalog errors are fatal; per-repository failures are only counted.
func (dependencies Dependencies) runBatch(command *cobra.Command, plan batchPlan) error {
	logger := dependencies.logger()
	sink := dependencies.console()
	selection := dependencies.selection()
	repositoryCatalogPath := catalogPath(command)

	repositoryCatalog, loadError := catalog.Load(repositoryCatalogPath)
	if loadError != nil {
		return loadError
	}

	repositories := selectRepositories(logger, repositoryCatalog, selection)
	logger.Debug(
		batchSelectedLogMessageConstant,
		zap.String(logFieldCatalogConstant, repositoryCatalogPath),
		zap.Int(logFieldSelectedConstant, len(repositories)),
	)
	if len(repositories) == 0 {
		sink.Notice(plainMessageTemplateConstant, describeEmptySelection(selection, repositoryCatalogPath))
		return nil
	}

	executors, executorsError := plan.executors(sink)
	if executorsError != nil {
		return executorsError
	}
	dispatcher, dispatcherError := dependencies.dispatcher(sink, logger, executors)
	if dispatcherError != nil {
		return dispatcherError
	}

	sink.Banner(plainMessageTemplateConstant, plan.banner(len(repositories)))
	result, executeError := dispatcher.Execute(command.Context(), repositories, plan.operation, selection.Concurrent)
	if executeError != nil {
		return executeError
	}
	sink.Banner(doneTemplateConstant, plan.doneMessage, result.Succeeded, result.Failed)
	return nil
}

// selectRepositories filters the catalog and logs close matches for names and tags it does not know.
func selectRepositories(logger *zap.Logger, repositoryCatalog *catalog.Catalog, selection Selection) []catalog.Repository {
	knownNames := repositoryCatalog.Names()
	for _, unknownName := range repositoryCatalog.UnknownNames(selection.Names) {
		logger.Debug(
			unknownRepositoryLogMessageConstant,
			zap.String(logFieldNameConstant, unknownName),
			zap.Strings(logFieldSuggestionsConstant, suggestNames(unknownName, knownNames)),
		)
	}
	if len(selection.Tag) > 0 {
		if tagError := catalog.ValidateTagExists(repositoryCatalog.Repositories, selection.Tag); tagError != nil {
			logger.Debug(
				unknownTagLogMessageConstant,
				zap.String(logFieldTagConstant, selection.Tag),
				zap.String(logFieldReasonConstant, tagError.Error()),
				zap.Strings(logFieldSuggestionsConstant, suggestNames(selection.Tag, repositoryCatalog.Tags())),
			)
		}
	}
	return repositoryCatalog.Filter(selection.Tag, selection.Names)
}

func suggestNames(unknownName string, knownNames []string) []string {
	matches := fuzzy.Find(unknownName, knownNames)
	suggestions := make([]string, 0, maximumSuggestionsConstant)
	for _, match := range matches {
		if len(suggestions) == maximumSuggestionsConstant {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}

func describeEmptySelection(selection Selection, repositoryCatalogPath string) string {
	names := strings.Join(selection.Names, namesSeparatorConstant)
	switch {
	case len(selection.Tag) > 0 && len(selection.Names) > 0:
		return fmt.Sprintf(noRepositoriesWithFilterTemplateConstant, fmt.Sprintf(tagAndNamesFilterTemplateConstant, selection.Tag, names))
	case len(selection.Tag) > 0:
		return fmt.Sprintf(noRepositoriesWithFilterTemplateConstant, fmt.Sprintf(tagFilterTemplateConstant, selection.Tag))
	case len(selection.Names) > 0:
		return fmt.Sprintf(noRepositoriesWithFilterTemplateConstant, fmt.Sprintf(namesFilterTemplateConstant, names))
	default:
		return fmt.Sprintf(noRepositoriesInCatalogTemplateConstant, repositoryCatalogPath)
	}
}
