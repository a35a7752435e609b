// Package tags derives the tag index from directory names. It is a
// materialized view over the entries table, dropped and rebuilt wholesale
// after every crawl.
package tags

import (
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kpetrov/mediadex/internal/db"
	"github.com/kpetrov/mediadex/internal/entry"
)

const minTokenLen = 2

// Tokenize extracts the maximal runs of ASCII letters and digits from a
// directory name, lowercased, dropping tokens shorter than two characters.
func Tokenize(name string) []string {
	var tokens []string
	var run []byte
	flush := func() {
		if len(run) >= minTokenLen {
			tokens = append(tokens, strings.ToLower(string(run)))
		}
		run = run[:0]
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isASCIIAlnum(c) {
			run = append(run, c)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// DisplayName humanizes a token: capitalized when purely alphabetic,
// otherwise unchanged so numeric tokens (years, season numbers) keep
// their form.
func DisplayName(token string) string {
	for i := 0; i < len(token); i++ {
		if token[i] < 'a' || token[i] > 'z' {
			return token
		}
	}
	return strings.ToUpper(token[:1]) + token[1:]
}

// Builder recomputes the tag tables from the indexed directories.
type Builder struct {
	store *db.Store
	log   zerolog.Logger
}

// NewBuilder creates a builder over the given store.
func NewBuilder(store *db.Store, log zerolog.Logger) *Builder {
	return &Builder{store: store, log: log}
}

// Rebuild tokenizes every indexed directory name (the root excluded),
// keeps tokens matched by at least minFrequency distinct directories, and
// replaces the tag tables with the result. Tags and each tag's directories
// are sorted for deterministic output.
func (b *Builder) Rebuild(minFrequency int) error {
	dirs, err := b.store.ListDirectories()
	if err != nil {
		return err
	}

	byToken := make(map[string]map[string]struct{})
	for _, dir := range dirs {
		if dir == "." {
			continue
		}
		for _, token := range Tokenize(path.Base(dir)) {
			set, ok := byToken[token]
			if !ok {
				set = make(map[string]struct{})
				byToken[token] = set
			}
			set[dir] = struct{}{}
		}
	}

	var names []string
	for token, set := range byToken {
		if len(set) >= minFrequency {
			names = append(names, token)
		}
	}
	sort.Strings(names)

	tags := make([]entry.Tag, 0, len(names))
	var assocs []entry.TagAssoc
	for _, name := range names {
		tags = append(tags, entry.Tag{Name: name, DisplayName: DisplayName(name)})

		matched := make([]string, 0, len(byToken[name]))
		for dir := range byToken[name] {
			matched = append(matched, dir)
		}
		sort.Strings(matched)
		for _, dir := range matched {
			assocs = append(assocs, entry.TagAssoc{TagName: name, DirPath: dir})
		}
	}

	if err := b.store.ReplaceTags(tags, assocs); err != nil {
		return err
	}

	b.log.Debug().Int("tags", len(tags)).Int("associations", len(assocs)).Msg("tag index rebuilt")
	return nil
}

func isASCIIAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
