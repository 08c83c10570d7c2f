package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	catalogFilePermissionsConstant = 0o644
	catalogIndentationConstant     = 2
)

// Catalog holds the repositories declared in a catalog file.
type Catalog struct {
	Repositories []Repository `yaml:"repositories"`
}

// New constructs a catalog from the provided repositories.
func New(repositories []Repository) *Catalog {
	duplicated := make([]Repository, len(repositories))
	copy(duplicated, repositories)
	return &Catalog{Repositories: duplicated}
}

// Load reads, decodes and validates the catalog stored at catalogPath.
func Load(catalogPath string) (*Catalog, error) {
	contents, readError := os.ReadFile(catalogPath)
	if readError != nil {
		return nil, &CatalogError{Kind: ErrorKindRead, Path: catalogPath, Cause: readError}
	}

	return Parse(contents, catalogDirectory(catalogPath), catalogPath)
}

// Parse decodes catalog contents and assigns directory to every repository.
func Parse(contents []byte, directory string, sourceName string) (*Catalog, error) {
	loaded := &Catalog{}
	if decodeError := yaml.Unmarshal(contents, loaded); decodeError != nil {
		return nil, &CatalogError{Kind: ErrorKindParse, Path: sourceName, Cause: decodeError}
	}

	for repositoryIndex := range loaded.Repositories {
		loaded.Repositories[repositoryIndex].CatalogDirectory = directory
	}

	if validationError := ValidateRepositories(loaded.Repositories); validationError != nil {
		if catalogError, isCatalogError := validationError.(*CatalogError); isCatalogError {
			catalogError.Path = sourceName
		}
		return nil, validationError
	}

	return loaded, nil
}

// Save writes the catalog as YAML to catalogPath.
func (catalog *Catalog) Save(catalogPath string) error {
	encoded, encodeError := catalog.Marshal()
	if encodeError != nil {
		return &CatalogError{Kind: ErrorKindWrite, Path: catalogPath, Cause: encodeError}
	}
	if writeError := os.WriteFile(catalogPath, encoded, catalogFilePermissionsConstant); writeError != nil {
		return &CatalogError{Kind: ErrorKindWrite, Path: catalogPath, Cause: writeError}
	}
	return nil
}

// Marshal encodes the catalog as YAML.
func (catalog *Catalog) Marshal() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(catalogIndentationConstant)

	persisted := Catalog{Repositories: make([]Repository, 0, len(catalog.Repositories))}
	for _, repository := range catalog.Repositories {
		if repository.Tags == nil {
			repository.Tags = []string{}
		}
		persisted.Repositories = append(persisted.Repositories, repository)
	}

	if encodeError := encoder.Encode(persisted); encodeError != nil {
		return nil, encodeError
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, closeError
	}
	return buffer.Bytes(), nil
}

// Filter returns repositories matching the tag and name selectors in catalog order.
//
// An empty tag and an empty name list select everything. When both are set,
// the name list is applied first and the result is narrowed to the tag.
// Names absent from the catalog are ignored.
func (catalog *Catalog) Filter(tag string, names []string) []Repository {
	selected := catalog.FilterByNames(names)
	if len(tag) == 0 {
		return selected
	}

	tagged := make([]Repository, 0, len(selected))
	for _, repository := range selected {
		if repository.HasTag(tag) {
			tagged = append(tagged, repository)
		}
	}
	return tagged
}

// FilterByNames returns repositories whose names appear in names, or all repositories when names is empty.
func (catalog *Catalog) FilterByNames(names []string) []Repository {
	if len(names) == 0 {
		return catalog.All()
	}

	requested := make(map[string]struct{}, len(names))
	for _, name := range names {
		requested[name] = struct{}{}
	}

	selected := make([]Repository, 0, len(names))
	for _, repository := range catalog.Repositories {
		if _, wanted := requested[repository.Name]; wanted {
			selected = append(selected, repository)
		}
	}
	return selected
}

// All returns a copy of every repository in catalog order.
func (catalog *Catalog) All() []Repository {
	duplicated := make([]Repository, len(catalog.Repositories))
	copy(duplicated, catalog.Repositories)
	return duplicated
}

// UnknownNames returns the requested names that no repository in the catalog carries.
func (catalog *Catalog) UnknownNames(names []string) []string {
	var unknown []string
	for _, name := range names {
		if _, found := catalog.Repository(name); !found {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Names lists repository names in catalog order.
func (catalog *Catalog) Names() []string {
	names := make([]string, 0, len(catalog.Repositories))
	for _, repository := range catalog.Repositories {
		names = append(names, repository.Name)
	}
	return names
}

// Repository looks up a repository by name.
func (catalog *Catalog) Repository(name string) (Repository, bool) {
	for _, repository := range catalog.Repositories {
		if repository.Name == name {
			return repository, true
		}
	}
	return Repository{}, false
}

// Tags lists every distinct tag across the catalog in sorted order.
func (catalog *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, repository := range catalog.Repositories {
		for _, tag := range repository.Tags {
			if _, duplicate := seen[tag]; duplicate {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func catalogDirectory(catalogPath string) string {
	directory := filepath.Dir(catalogPath)
	absoluteDirectory, absoluteError := filepath.Abs(directory)
	if absoluteError != nil {
		return directory
	}
	return absoluteDirectory
}
