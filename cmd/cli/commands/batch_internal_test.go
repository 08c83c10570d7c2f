package commands

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repofleet/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Repository{
		catalog.NewRepositoryBuilder("billing-service", "git@github.com:octo/billing-service.git").WithTags("backend").Build(),
		catalog.NewRepositoryBuilder("billing-ui", "git@github.com:octo/billing-ui.git").WithTags("frontend").Build(),
		catalog.NewRepositoryBuilder("ledger", "git@github.com:octo/ledger.git").WithTags("backend").Build(),
	})
}

func TestSelectRepositoriesLogsSuggestionsForUnknownNames(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)

	selected := selectRepositories(zap.New(observerCore), testCatalog(), Selection{Names: []string{"ledger", "biling"}})
	require.Len(testInstance, selected, 1)
	require.Equal(testInstance, "ledger", selected[0].Name)

	entries := observedLogs.FilterMessage(unknownRepositoryLogMessageConstant).All()
	require.Len(testInstance, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(testInstance, "biling", fields[logFieldNameConstant])
	require.ElementsMatch(testInstance, []any{"billing-service", "billing-ui"}, fields[logFieldSuggestionsConstant])
}

func TestSelectRepositoriesLogsSuggestionsForUnknownTag(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)

	selected := selectRepositories(zap.New(observerCore), testCatalog(), Selection{Tag: "backed"})
	require.Empty(testInstance, selected)

	entries := observedLogs.FilterMessage(unknownTagLogMessageConstant).All()
	require.Len(testInstance, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(testInstance, "backed", fields[logFieldTagConstant])
	require.Equal(testInstance, "No repositories found with tag: backed", fields[logFieldReasonConstant])
	require.Equal(testInstance, []any{"backend"}, fields[logFieldSuggestionsConstant])

	_ = selectRepositories(zap.New(observerCore), testCatalog(), Selection{Tag: "frontend"})
	require.Len(testInstance, observedLogs.FilterMessage(unknownTagLogMessageConstant).All(), 1)
}

func TestSuggestNamesCapsResults(testInstance *testing.T) {
	knownNames := []string{"api-a", "api-b", "api-c", "api-d", "worker"}
	require.Len(testInstance, suggestNames("api", knownNames), maximumSuggestionsConstant)
	require.Empty(testInstance, suggestNames("zzz", knownNames))
}

func TestDescribeEmptySelection(testInstance *testing.T) {
	testCases := []struct {
		name            string
		selection       Selection
		expectedMessage string
	}{
		{
			name:            "tag_only",
			selection:       Selection{Tag: "mobile"},
			expectedMessage: "No repositories found with tag 'mobile'",
		},
		{
			name:            "names_only",
			selection:       Selection{Names: []string{"a", "b"}},
			expectedMessage: "No repositories found with repositories a, b",
		},
		{
			name:            "tag_and_names",
			selection:       Selection{Tag: "web", Names: []string{"a"}},
			expectedMessage: "No repositories found with tag 'web' and repositories a",
		},
		{
			name:            "empty_catalog",
			selection:       Selection{},
			expectedMessage: "No repositories found in fleet.yaml",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, describeEmptySelection(testCase.selection, "fleet.yaml"))
		})
	}
}
