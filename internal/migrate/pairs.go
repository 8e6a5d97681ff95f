package migrate

import "strings"

// RefLayout builds the source and destination references for a migration.
// Source references follow {registry}/{namespace}/{image}:{tag}; destination
// references put everything under a single group on the target registry,
// {registry}/{group}/{namespace}/{image}:{tag}.
type RefLayout struct {
	SrcRegistry string
	DstRegistry string
	DstGroup    string
}

// Pair returns the migration pair for one tag of an image.
func (l RefLayout) Pair(namespace, image, tag string) Pair {
	return Pair{
		Src: l.SrcRegistry + "/" + namespace + "/" + image + ":" + tag,
		Dst: l.DstRegistry + "/" + l.DstGroup + "/" + namespace + "/" + image + ":" + tag,
	}
}

// SourceRepo returns the tagless source repository reference, used to record
// images that produced no migratable tags.
func (l RefLayout) SourceRepo(namespace, image string) string {
	return l.SrcRegistry + "/" + namespace + "/" + image
}

// DestinationRepoPath strips the registry host and tag from a destination
// reference, leaving the repository path the provisioning API expects,
// e.g. "group/namespace/image".
func DestinationRepoPath(ref string) string {
	path := ref
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndexByte(path, ':'); i >= 0 {
		path = path[:i]
	}
	return path
}
