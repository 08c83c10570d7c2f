package catalog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	duplicateRepositoryNameTemplateConstant = "Duplicate repository name: %s"
	repositoryValidationTemplateConstant    = "Repository '%s': %v"
	validationErrorsTemplateConstant        = "Validation errors: %s"
	validationErrorsSeparatorConstant       = "; "
	emptyTagFilterTemplateConstant          = "Tag filter cannot be empty: %q"
	missingTagTemplateConstant              = "No repositories found with tag: %s"
)

// ErrEmptyTagFilter indicates a blank tag filter.
var ErrEmptyTagFilter = errors.New("empty tag filter")

// ValidateRepositories checks every repository entry and name uniqueness, joining all problems into one CatalogError.
func ValidateRepositories(repositories []Repository) error {
	var problems []string

	seenNames := make(map[string]struct{}, len(repositories))
	for _, repository := range repositories {
		if _, duplicate := seenNames[repository.Name]; duplicate {
			problems = append(problems, fmt.Sprintf(duplicateRepositoryNameTemplateConstant, repository.Name))
			continue
		}
		seenNames[repository.Name] = struct{}{}
	}

	for _, repository := range repositories {
		if validationError := repository.Validate(); validationError != nil {
			problems = append(problems, fmt.Sprintf(repositoryValidationTemplateConstant, repository.Name, validationError))
		}
	}

	if len(problems) == 0 {
		return nil
	}

	return &CatalogError{
		Kind:    ErrorKindValidation,
		Message: fmt.Sprintf(validationErrorsTemplateConstant, strings.Join(problems, validationErrorsSeparatorConstant)),
	}
}

// ValidateTagFilter rejects blank tag filters.
func ValidateTagFilter(tag string) error {
	if len(strings.TrimSpace(tag)) == 0 {
		return fmt.Errorf(emptyTagFilterTemplateConstant+": %w", tag, ErrEmptyTagFilter)
	}
	return nil
}

// ValidateTagExists fails when no repository carries the tag.
func ValidateTagExists(repositories []Repository, tag string) error {
	for _, repository := range repositories {
		if repository.HasTag(tag) {
			return nil
		}
	}
	return fmt.Errorf(missingTagTemplateConstant, tag)
}
