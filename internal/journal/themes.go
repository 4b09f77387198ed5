package journal

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/julianstephens/ledger/internal/constants"
	"github.com/julianstephens/ledger/internal/storage"
)

// NormalizeThemes NFC-normalizes and trims each theme, dropping blanks and
// case-insensitive duplicates. The first spelling seen wins.
func NormalizeThemes(themes []string) []string {
	return MergeThemes(nil, themes)
}

// MergeThemes appends the themes in add that known lacks, compared case-insensitively.
func MergeThemes(known, add []string) []string {
	out := make([]string, 0, len(known)+len(add))
	seen := make(map[string]struct{}, len(known)+len(add))
	for _, list := range [][]string{known, add} {
		for _, t := range list {
			t = strings.TrimSpace(norm.NFC.String(t))
			if t == "" {
				continue
			}
			key := strings.ToLower(t)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) loadUserThemes(ctx context.Context) []string {
	return storage.LoadCollection[string](ctx, s.store, constants.SlotUserThemes)
}

// UserThemes returns every theme the user has tagged an entry with, in first-use order.
func (s *Service) UserThemes(ctx context.Context) []string {
	return s.loadUserThemes(ctx)
}

// SuggestThemes returns known themes starting with prefix, ignoring case.
// An empty prefix returns them all.
func (s *Service) SuggestThemes(ctx context.Context, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(norm.NFC.String(prefix)))
	out := []string{}
	for _, t := range s.loadUserThemes(ctx) {
		if strings.HasPrefix(strings.ToLower(t), prefix) {
			out = append(out, t)
		}
	}
	return out
}
