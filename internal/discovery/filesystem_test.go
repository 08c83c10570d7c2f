package discovery_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/internal/discovery"
)

const (
	developerDirectoryName             = "Dev"
	engineeringGroupDirectoryName      = "Group1"
	applicationRepositoryDirectoryName = "Repo1"
	serviceRepositoryDirectoryName     = "Repo2"
	toolsRepositoryDirectoryName       = "Repo3"
	deepRepositoryDirectoryName        = "Deep"
	gitMetadataDirectoryName           = ".git"
	unlimitedDepthSubtestTitle         = "discoversRepositoriesWithoutDepthLimit"
	deeperDepthSubtestTitle            = "includesMetadataAtDepthFour"
	defaultDepthSubtestTitle           = "stopsAtDefaultInitDepth"
	repositoryDirectoryPermissions     = 0o755
)

type repositoryDefinition struct {
	directorySegments []string
}

func (definition repositoryDefinition) repositoryPath(rootDirectory string) string {
	segments := append([]string{rootDirectory}, definition.directorySegments...)
	return filepath.Join(segments...)
}

func (definition repositoryDefinition) gitMetadataPath(rootDirectory string) string {
	return filepath.Join(definition.repositoryPath(rootDirectory), gitMetadataDirectoryName)
}

func TestFilesystemRepositoryDiscovererHonorsDepth(testFramework *testing.T) {
	applicationRepository := repositoryDefinition{directorySegments: []string{developerDirectoryName, engineeringGroupDirectoryName, applicationRepositoryDirectoryName}}
	serviceRepository := repositoryDefinition{directorySegments: []string{developerDirectoryName, engineeringGroupDirectoryName, serviceRepositoryDirectoryName}}
	toolsRepository := repositoryDefinition{directorySegments: []string{developerDirectoryName, toolsRepositoryDirectoryName}}
	deepRepository := repositoryDefinition{directorySegments: []string{developerDirectoryName, engineeringGroupDirectoryName, applicationRepositoryDirectoryName, "vendor", deepRepositoryDirectoryName}}
	allRepositories := []repositoryDefinition{applicationRepository, serviceRepository, toolsRepository, deepRepository}

	testScenarios := []struct {
		title                string
		maxDepth             int
		expectedRepositories []repositoryDefinition
	}{
		{
			title:                unlimitedDepthSubtestTitle,
			maxDepth:             0,
			expectedRepositories: []repositoryDefinition{applicationRepository, deepRepository, serviceRepository, toolsRepository},
		},
		{
			title:                deeperDepthSubtestTitle,
			maxDepth:             4,
			expectedRepositories: []repositoryDefinition{applicationRepository, serviceRepository, toolsRepository},
		},
		{
			title:                defaultDepthSubtestTitle,
			maxDepth:             3,
			expectedRepositories: []repositoryDefinition{toolsRepository},
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.title, func(testFramework *testing.T) {
			temporaryRootDirectory := testFramework.TempDir()
			for _, definition := range allRepositories {
				require.NoError(testFramework, os.MkdirAll(definition.gitMetadataPath(temporaryRootDirectory), repositoryDirectoryPermissions))
			}

			discoveredRepositories, discoveryError := discovery.NewFilesystemRepositoryDiscoverer().DiscoverRepositories(temporaryRootDirectory, testScenario.maxDepth)
			require.NoError(testFramework, discoveryError)

			expectedPaths := make([]string, 0, len(testScenario.expectedRepositories))
			for _, definition := range testScenario.expectedRepositories {
				expectedPaths = append(expectedPaths, definition.repositoryPath(temporaryRootDirectory))
			}
			require.Equal(testFramework, expectedPaths, discoveredRepositories)
		})
	}
}

func TestFilesystemRepositoryDiscovererFindsRootRepository(testFramework *testing.T) {
	temporaryRootDirectory := testFramework.TempDir()
	require.NoError(testFramework, os.MkdirAll(filepath.Join(temporaryRootDirectory, gitMetadataDirectoryName), repositoryDirectoryPermissions))

	discoveredRepositories, discoveryError := discovery.NewFilesystemRepositoryDiscoverer().DiscoverRepositories(temporaryRootDirectory, 3)
	require.NoError(testFramework, discoveryError)
	require.Equal(testFramework, []string{temporaryRootDirectory}, discoveredRepositories)
}

func TestFilesystemRepositoryDiscovererIgnoresGitFiles(testFramework *testing.T) {
	temporaryRootDirectory := testFramework.TempDir()
	submodulePath := filepath.Join(temporaryRootDirectory, "module")
	require.NoError(testFramework, os.MkdirAll(submodulePath, repositoryDirectoryPermissions))
	require.NoError(testFramework, os.WriteFile(filepath.Join(submodulePath, gitMetadataDirectoryName), []byte("gitdir: ../.git/modules/module\n"), 0o644))

	discoveredRepositories, discoveryError := discovery.NewFilesystemRepositoryDiscoverer().DiscoverRepositories(temporaryRootDirectory, 3)
	require.NoError(testFramework, discoveryError)
	require.Empty(testFramework, discoveredRepositories)
}

func TestFilesystemRepositoryDiscovererReportsUnreadableRoot(testFramework *testing.T) {
	missingRootDirectory := filepath.Join(testFramework.TempDir(), "absent")

	discoveredRepositories, discoveryError := discovery.NewFilesystemRepositoryDiscoverer().DiscoverRepositories(missingRootDirectory, 3)
	require.ErrorIs(testFramework, discoveryError, fs.ErrNotExist)
	require.Nil(testFramework, discoveredRepositories)
}
