package catalog

// RepositoryBuilder assembles Repository values fluently.
type RepositoryBuilder struct {
	repository Repository
}

// NewRepositoryBuilder starts a builder for the named repository.
func NewRepositoryBuilder(name string, url string) *RepositoryBuilder {
	return &RepositoryBuilder{repository: Repository{Name: name, URL: url, Tags: []string{}}}
}

// WithTags replaces the tag list.
func (builder *RepositoryBuilder) WithTags(tags ...string) *RepositoryBuilder {
	builder.repository.Tags = append([]string{}, tags...)
	return builder
}

// WithPath sets the clone path.
func (builder *RepositoryBuilder) WithPath(path string) *RepositoryBuilder {
	builder.repository.Path = path
	return builder
}

// WithBranch sets the branch cloned by default.
func (builder *RepositoryBuilder) WithBranch(branch string) *RepositoryBuilder {
	builder.repository.Branch = branch
	return builder
}

// WithCatalogDirectory sets the directory relative paths resolve against.
func (builder *RepositoryBuilder) WithCatalogDirectory(directory string) *RepositoryBuilder {
	builder.repository.CatalogDirectory = directory
	return builder
}

// Build returns the assembled repository.
func (builder *RepositoryBuilder) Build() Repository {
	built := builder.repository
	built.Tags = append([]string{}, builder.repository.Tags...)
	return built
}
