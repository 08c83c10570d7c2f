package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/cmd/cli/commands"
	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	snippetFileNameConstant          = "config.yaml"
	configurationTypeConstant        = "yaml"
	environmentPrefixConstant        = "REPOFLEET_DOCS"
	toolsConfigurationKeyConstant    = "tools"
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeConfiguration struct {
	Tools commands.ToolsConfiguration `mapstructure:"tools"`
}

func readCatalogSnippet(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func TestReadmeCatalogParses(testInstance *testing.T) {
	snippet := readCatalogSnippet(testInstance)
	catalogDirectory := testInstance.TempDir()

	loaded, parseError := catalog.Parse([]byte(snippet), catalogDirectory, readmeFileNameConstant)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, []string{"billing-service", "web-portal"}, loaded.Names())

	portal, exists := loaded.Repository("web-portal")
	require.True(testInstance, exists)
	require.Equal(testInstance, "develop", portal.Branch)
	require.Equal(testInstance, filepath.Join(catalogDirectory, "apps", "web-portal"), catalog.ResolveTargetDirectory(portal))

	billing, exists := loaded.Repository("billing-service")
	require.True(testInstance, exists)
	require.Equal(testInstance, filepath.Join(catalogDirectory, "cloned_repos", "billing-service"), catalog.ResolveTargetDirectory(billing))
}

func TestReadmeToolSettingsMatchDefaults(testInstance *testing.T) {
	snippetPath := filepath.Join(testInstance.TempDir(), snippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(snippetPath, []byte(readCatalogSnippet(testInstance)), 0o644))

	configurationLoader := utils.NewConfigurationLoader(configurationTypeConstant, environmentPrefixConstant)
	loadedConfiguration := readmeConfiguration{}
	_, loadError := configurationLoader.LoadConfiguration(snippetPath, commands.DefaultConfigurationValues(toolsConfigurationKeyConstant), &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, commands.DefaultToolsConfiguration(), loadedConfiguration.Tools)
}
