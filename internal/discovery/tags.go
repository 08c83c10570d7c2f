package discovery

import (
	"os"
	"path/filepath"
	"strings"
)

type markerRule struct {
	files []string
	tags  []string
}

type keywordRule struct {
	keywords []string
	tag      string
}

var markerRules = []markerRule{
	{files: []string{"go.mod", "main.go"}, tags: []string{"go"}},
	{files: []string{"package.json"}, tags: []string{"javascript", "node"}},
	{files: []string{"requirements.txt", "setup.py", "pyproject.toml"}, tags: []string{"python"}},
	{files: []string{"pom.xml", "build.gradle"}, tags: []string{"java"}},
	{files: []string{"Cargo.toml"}, tags: []string{"rust"}},
}

var keywordRules = []keywordRule{
	{keywords: []string{"frontend", "ui", "web"}, tag: "frontend"},
	{keywords: []string{"backend", "api", "server"}, tag: "backend"},
	{keywords: []string{"mobile", "android", "ios"}, tag: "mobile"},
}

// DetectTags derives tags from marker files in repositoryPath and from keywords in relativePath.
// Language tags come first, followed by role tags, without duplicates.
func DetectTags(repositoryPath string, relativePath string) []string {
	tags := []string{}
	seen := map[string]struct{}{}
	appendTag := func(tag string) {
		if _, exists := seen[tag]; exists {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, rule := range markerRules {
		if anyFileExists(repositoryPath, rule.files) {
			for _, tag := range rule.tags {
				appendTag(tag)
			}
		}
	}

	loweredPath := strings.ToLower(filepath.ToSlash(relativePath))
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(loweredPath, keyword) {
				appendTag(rule.tag)
				break
			}
		}
	}

	return tags
}

func anyFileExists(directory string, fileNames []string) bool {
	for _, fileName := range fileNames {
		if _, statError := os.Stat(filepath.Join(directory, fileName)); statError == nil {
			return true
		}
	}
	return false
}
