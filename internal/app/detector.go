package app

import (
	"github.com/quantmind-br/manifestctl/internal/config"
	"github.com/quantmind-br/manifestctl/internal/git"
	"github.com/quantmind-br/manifestctl/internal/manifest"
)

// SourceType identifies where manifests are read from
type SourceType string

const (
	SourceDir SourceType = "dir"
	SourceGit SourceType = "git"
)

// DetectSource picks the source type for the configuration. A configured git
// revision selects the git source.
func DetectSource(cfg *config.Config) SourceType {
	if cfg.UseGit() {
		return SourceGit
	}
	return SourceDir
}

// CreateSource builds the manifest source of the given type. client is only
// used by the git source; nil means the go-git client.
func CreateSource(st SourceType, cfg *config.Config, client git.Client) manifest.Source {
	switch st {
	case SourceGit:
		if client == nil {
			client = git.NewClient()
		}
		return manifest.NewGitSource(client, cfg.Manifests.Directory, cfg.Manifests.GitRev)
	default:
		return manifest.NewDirSource(cfg.Manifests.Directory)
	}
}
