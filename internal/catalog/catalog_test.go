package catalog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/internal/catalog"
)

const (
	testFrontendRepositoryNameConstant = "repo1"
	testBackendRepositoryNameConstant  = "repo2"
	testFrontendTagConstant            = "frontend"
	testBackendTagConstant             = "backend"
	testSharedTagConstant              = "shared"
	testCatalogFileNameConstant        = "config.yaml"
	testCatalogDirectoryConstant       = "/a/b"
	testValidCatalogContentConstant    = `repositories:
  - name: repo1
    url: git@github.com:owner/repo1.git
    tags: [frontend, shared]
  - name: repo2
    url: https://github.com/owner/repo2.git
    tags: [backend]
    path: checkouts/repo2
    branch: develop
`
	testInvalidCatalogContentConstant = `repositories:
  - name: repo1
    url: ftp://example.com/repo1
    tags: []
  - name: repo1
    url: git@github.com:owner/repo1.git
    tags: []
  - name: ""
    url: git@github.com:owner/unnamed.git
    tags: []
`
)

func buildTestCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Repository{
		catalog.NewRepositoryBuilder(testFrontendRepositoryNameConstant, "git@github.com:owner/repo1.git").WithTags(testFrontendTagConstant, testSharedTagConstant).Build(),
		catalog.NewRepositoryBuilder(testBackendRepositoryNameConstant, "https://github.com/owner/repo2.git").WithTags(testBackendTagConstant, testSharedTagConstant).Build(),
		catalog.NewRepositoryBuilder("repo3", "http://git.example.com/owner/repo3.git").Build(),
	})
}

func repositoryNames(repositories []catalog.Repository) []string {
	names := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		names = append(names, repository.Name)
	}
	return names
}

func TestCatalogFilterSelection(testInstance *testing.T) {
	testCases := []struct {
		name          string
		tag           string
		names         []string
		expectedNames []string
	}{
		{
			name:          "no_selectors_returns_all",
			expectedNames: []string{testFrontendRepositoryNameConstant, testBackendRepositoryNameConstant, "repo3"},
		},
		{
			name:          "tag_only",
			tag:           testFrontendTagConstant,
			expectedNames: []string{testFrontendRepositoryNameConstant},
		},
		{
			name:          "names_only",
			names:         []string{testBackendRepositoryNameConstant},
			expectedNames: []string{testBackendRepositoryNameConstant},
		},
		{
			name:          "tag_and_names_disjoint",
			tag:           testFrontendTagConstant,
			names:         []string{testBackendRepositoryNameConstant},
			expectedNames: []string{},
		},
		{
			name:          "tag_and_names_intersect",
			tag:           testSharedTagConstant,
			names:         []string{testBackendRepositoryNameConstant, "repo3"},
			expectedNames: []string{testBackendRepositoryNameConstant},
		},
		{
			name:          "unknown_names_dropped",
			names:         []string{"missing", testFrontendRepositoryNameConstant},
			expectedNames: []string{testFrontendRepositoryNameConstant},
		},
		{
			name:          "catalog_order_preserved",
			names:         []string{"repo3", testFrontendRepositoryNameConstant},
			expectedNames: []string{testFrontendRepositoryNameConstant, "repo3"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			filtered := buildTestCatalog().Filter(testCase.tag, testCase.names)
			require.Equal(testInstance, testCase.expectedNames, repositoryNames(filtered))
		})
	}
}

func TestResolveTargetDirectory(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	testCases := []struct {
		name              string
		repository        catalog.Repository
		expectedDirectory string
	}{
		{
			name:              "relative_path_joins_catalog_directory",
			repository:        catalog.Repository{Name: "x-repo", Path: "x", CatalogDirectory: testCatalogDirectoryConstant},
			expectedDirectory: filepath.Join(testCatalogDirectoryConstant, "x"),
		},
		{
			name:              "absolute_path_unchanged",
			repository:        catalog.Repository{Name: "abs", Path: "/srv/abs", CatalogDirectory: testCatalogDirectoryConstant},
			expectedDirectory: "/srv/abs",
		},
		{
			name:              "default_clone_directory",
			repository:        catalog.Repository{Name: "service", CatalogDirectory: testCatalogDirectoryConstant},
			expectedDirectory: filepath.Join(testCatalogDirectoryConstant, "cloned_repos", "service"),
		},
		{
			name:              "relative_path_without_catalog_directory",
			repository:        catalog.Repository{Name: "x-repo", Path: "x"},
			expectedDirectory: filepath.Join(workingDirectory, "x"),
		},
		{
			name:              "default_without_catalog_directory",
			repository:        catalog.Repository{Name: "service"},
			expectedDirectory: filepath.Join(workingDirectory, "cloned_repos", "service"),
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedDirectory, catalog.ResolveTargetDirectory(testCase.repository))
		})
	}
}

func TestLoadAssignsCatalogDirectory(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	catalogPath := filepath.Join(temporaryDirectory, testCatalogFileNameConstant)
	require.NoError(testInstance, os.WriteFile(catalogPath, []byte(testValidCatalogContentConstant), 0o644))

	loaded, loadError := catalog.Load(catalogPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, loaded.Repositories, 2)

	for _, repository := range loaded.Repositories {
		require.Equal(testInstance, temporaryDirectory, repository.CatalogDirectory)
	}

	backendRepository, found := loaded.Repository(testBackendRepositoryNameConstant)
	require.True(testInstance, found)
	require.Equal(testInstance, "develop", backendRepository.Branch)
	require.Equal(testInstance, filepath.Join(temporaryDirectory, "checkouts", "repo2"), catalog.ResolveTargetDirectory(backendRepository))
	require.Equal(testInstance, []string{testBackendTagConstant, testFrontendTagConstant, testSharedTagConstant}, loaded.Tags())
}

func TestLoadReportsCatalogErrors(testInstance *testing.T) {
	testCases := []struct {
		name             string
		content          *string
		expectedKind     catalog.ErrorKind
		expectedMessages []string
	}{
		{
			name:         "missing_file",
			expectedKind: catalog.ErrorKindRead,
		},
		{
			name:             "malformed_yaml",
			content:          stringPointer("repositories: [\n"),
			expectedKind:     catalog.ErrorKindParse,
			expectedMessages: []string{"unable to parse catalog"},
		},
		{
			name:         "validation_failures_joined",
			content:      stringPointer(testInvalidCatalogContentConstant),
			expectedKind: catalog.ErrorKindValidation,
			expectedMessages: []string{
				"Validation errors: ",
				"Duplicate repository name: repo1",
				"Repository 'repo1': Invalid repository URL: ftp://example.com/repo1",
				"Repository '': Repository name cannot be empty",
				"; ",
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			catalogPath := filepath.Join(testInstance.TempDir(), testCatalogFileNameConstant)
			if testCase.content != nil {
				require.NoError(testInstance, os.WriteFile(catalogPath, []byte(*testCase.content), 0o644))
			}

			loaded, loadError := catalog.Load(catalogPath)
			require.Nil(testInstance, loaded)
			require.Error(testInstance, loadError)

			var catalogError *catalog.CatalogError
			require.ErrorAs(testInstance, loadError, &catalogError)
			require.Equal(testInstance, testCase.expectedKind, catalogError.Kind)
			for _, expectedMessage := range testCase.expectedMessages {
				require.Contains(testInstance, loadError.Error(), expectedMessage)
			}
		})
	}
}

func TestSavePersistsCatalog(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	catalogPath := filepath.Join(temporaryDirectory, testCatalogFileNameConstant)

	original := buildTestCatalog()
	require.NoError(testInstance, original.Save(catalogPath))

	savedContent, readError := os.ReadFile(catalogPath)
	require.NoError(testInstance, readError)
	require.NotContains(testInstance, string(savedContent), "path:")
	require.NotContains(testInstance, string(savedContent), "branch:")
	require.Contains(testInstance, string(savedContent), "tags: []")

	reloaded, loadError := catalog.Load(catalogPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, original.Names(), reloaded.Names())
}

func TestCatalogLookups(testInstance *testing.T) {
	testCatalog := buildTestCatalog()

	repository, found := testCatalog.Repository(testBackendRepositoryNameConstant)
	require.True(testInstance, found)
	require.True(testInstance, repository.HasTag(testSharedTagConstant))

	_, found = testCatalog.Repository("missing")
	require.False(testInstance, found)
	require.Equal(testInstance, []string{"missing"}, testCatalog.UnknownNames([]string{"repo3", "missing"}))
}

func TestTagValidation(testInstance *testing.T) {
	testCatalog := buildTestCatalog()

	require.ErrorIs(testInstance, catalog.ValidateTagFilter("  "), catalog.ErrEmptyTagFilter)
	require.NoError(testInstance, catalog.ValidateTagFilter(testFrontendTagConstant))
	require.NoError(testInstance, catalog.ValidateTagExists(testCatalog.Repositories, testSharedTagConstant))
	require.EqualError(testInstance, catalog.ValidateTagExists(testCatalog.Repositories, "mobile"), "No repositories found with tag: mobile")
}

func stringPointer(value string) *string {
	return &value
}
