package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitUserPrefixConstant               = "git@"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "Failed to parse GitHub URL: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
	minimumPathSegmentsConstant         = 2
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL is a parsed GitHub-style remote.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// FullName returns owner/repository.
func (remote RemoteURL) FullName() string {
	return remote.Owner + pathSeparatorConstant + remote.Repository
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input  string
	Reason string
}

// Error describes the parse failure.
func (parseError *RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input)
}

// ParseRemoteURL extracts host, owner and repository from an SSH or HTTPS remote.
//
// Accepted shapes are git@host:owner/repo, ssh://git@host/owner/repo and
// https://host/owner/repo, each with an optional .git suffix and trailing slash.
// HTTPS remotes may carry extra path segments after the repository.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSuffix(strings.TrimSpace(remote), pathSeparatorConstant)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, &RemoteURLParseError{Input: remote, Reason: requiredValueMessageConstant}
	}

	var parsed RemoteURL
	var parsedOK bool
	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		parsed, parsedOK = parseSchemeSSHRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		parsed, parsedOK = parseSCPStyleRemote(strings.TrimPrefix(trimmedRemote, gitUserPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		parsed, parsedOK = parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		parsed, parsedOK = parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	default:
		return RemoteURL{}, &RemoteURLParseError{Input: remote, Reason: unknownProtocolMessageConstant}
	}

	if !parsedOK {
		return RemoteURL{}, &RemoteURLParseError{Input: remote, Reason: invalidRemoteURLMessageConstant}
	}
	return parsed, nil
}

// git@host:owner/repo
func parseSCPStyleRemote(hostAndPath string) (RemoteURL, bool) {
	host, path, found := strings.Cut(hostAndPath, sshPathDelimiterConstant)
	if !found || len(host) == 0 {
		return RemoteURL{}, false
	}
	owner, repository, split := splitOwnerAndRepository(path, true)
	if !split {
		return RemoteURL{}, false
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, true
}

// [user@]host[:port]/owner/repo
func parseSchemeSSHRemote(authorityAndPath string) (RemoteURL, bool) {
	authority, path, found := strings.Cut(authorityAndPath, pathSeparatorConstant)
	if !found {
		return RemoteURL{}, false
	}
	if userIndex := strings.Index(authority, sshUserDelimiterConstant); userIndex >= 0 {
		authority = authority[userIndex+1:]
	}
	host, _, _ := strings.Cut(authority, sshPathDelimiterConstant)
	if len(host) == 0 {
		return RemoteURL{}, false
	}
	owner, repository, split := splitOwnerAndRepository(path, true)
	if !split {
		return RemoteURL{}, false
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, true
}

// host/owner/repo[/...]
func parseHTTPSRemote(hostAndPath string) (RemoteURL, bool) {
	host, path, found := strings.Cut(hostAndPath, pathSeparatorConstant)
	if !found || len(host) == 0 {
		return RemoteURL{}, false
	}
	owner, repository, split := splitOwnerAndRepository(path, false)
	if !split {
		return RemoteURL{}, false
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, true
}

func splitOwnerAndRepository(path string, exact bool) (string, string, bool) {
	segments := strings.Split(path, pathSeparatorConstant)
	if len(segments) < minimumPathSegmentsConstant || (exact && len(segments) != minimumPathSegmentsConstant) {
		return "", "", false
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return "", "", false
	}
	return owner, repository, true
}
