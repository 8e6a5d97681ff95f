package migrate

import (
	"sort"
	"strconv"
	"strings"
)

// TagMode controls which tags of an image enter the migration plan. Exactly
// one of All or Latest is effective: All copies every tag, otherwise Latest
// holds the number of most recent tags to keep.
type TagMode struct {
	All    bool
	Latest int
}

// ParseTagMode parses the user-facing tag mode value. Accepted forms are
// "all" (case insensitive) and a positive integer.
func ParseTagMode(value string) (TagMode, error) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "all") {
		return TagMode{All: true}, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return TagMode{}, pipelineError(ErrInvalidTagMode,
			"tag mode must be \"all\" or a positive integer",
			map[string]any{"value": value})
	}
	return TagMode{Latest: n}, nil
}

// SelectTags applies mode to an image's tags and returns the tags to
// migrate. In All mode every tag is kept in its reported order. In Latest
// mode tags without a creation timestamp are excluded from ranking, the
// remainder is ordered newest first, and the first Latest entries are
// returned. Asking for more tags than exist returns all ranked tags.
func SelectTags(tags []Tag, mode TagMode) []Tag {
	if mode.All {
		out := make([]Tag, len(tags))
		copy(out, tags)
		return out
	}
	ranked := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.Created.IsZero() {
			continue
		}
		ranked = append(ranked, t)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Created.After(ranked[j].Created)
	})
	if mode.Latest < len(ranked) {
		ranked = ranked[:mode.Latest]
	}
	return ranked
}
