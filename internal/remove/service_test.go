package remove_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/remove"
)

func TestNewServiceRequiresConsole(testInstance *testing.T) {
	service, creationError := remove.NewService(nil)
	require.ErrorIs(testInstance, creationError, remove.ErrConsoleNotConfigured)
	require.Nil(testInstance, service)
}

func TestRemoveDeletesCheckout(testInstance *testing.T) {
	catalogDirectory := testInstance.TempDir()
	checkout := filepath.Join(catalogDirectory, "cloned_repos", "service-a")
	require.NoError(testInstance, os.MkdirAll(filepath.Join(checkout, ".git"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(checkout, "README.md"), []byte("readme"), 0o644))

	standardOutput := &bytes.Buffer{}
	service, creationError := remove.NewService(console.New(standardOutput, &bytes.Buffer{}, console.WithColor(false)))
	require.NoError(testInstance, creationError)

	repository := catalog.NewRepositoryBuilder("service-a", "https://github.com/example/service-a").WithCatalogDirectory(catalogDirectory).Build()
	require.NoError(testInstance, service.Remove(context.Background(), repository))

	require.NoDirExists(testInstance, checkout)
	require.Equal(testInstance, "service-a | Successfully removed\n", standardOutput.String())
}

func TestRemoveMissingDirectoryIsNotAnError(testInstance *testing.T) {
	missing := filepath.Join(testInstance.TempDir(), "absent")

	standardOutput := &bytes.Buffer{}
	service, creationError := remove.NewService(console.New(standardOutput, &bytes.Buffer{}, console.WithColor(false)))
	require.NoError(testInstance, creationError)

	repository := catalog.NewRepositoryBuilder("service-b", "https://github.com/example/service-b").WithPath(missing).Build()
	require.NoError(testInstance, service.Remove(context.Background(), repository))
	require.Equal(testInstance, "service-b | Directory does not exist: "+missing+"\n", standardOutput.String())
}
