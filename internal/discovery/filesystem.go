package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	currentDirectoryConstant         = "."
)

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct{}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{}
}

// DiscoverRepositories walks root and returns every directory holding a .git directory
// no deeper than maxDepth levels below root. A non-positive maxDepth means no limit.
// Unreadable directories below root are skipped; an unreadable root is an error. The result is sorted.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(root string, maxDepth int) ([]string, error) {
	seen := make(map[string]struct{})
	var repositories []string

	walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if path == root {
				return walkError
			}
			if directoryEntry != nil && directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}

		depth := depthBelow(root, path)
		if directoryEntry.Name() == gitMetadataDirectoryNameConstant {
			repositoryPath := filepath.Dir(path)
			if _, alreadySeen := seen[repositoryPath]; !alreadySeen {
				seen[repositoryPath] = struct{}{}
				repositories = append(repositories, repositoryPath)
			}
			return fs.SkipDir
		}

		if maxDepth > 0 && depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Strings(repositories)
	return repositories, nil
}

func depthBelow(root string, path string) int {
	relativePath, relativeError := filepath.Rel(root, path)
	if relativeError != nil || relativePath == currentDirectoryConstant {
		return 0
	}
	return strings.Count(relativePath, string(filepath.Separator)) + 1
}
