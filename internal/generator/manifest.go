package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".bower-manifest.json"
	manifestFileVersion = 1
)

// buildManifest remembers what produced each output so unchanged posts can
// be skipped by incremental builds.
type buildManifest struct {
	Version     int                     `json:"version"`
	BuildID     string                  `json:"build_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Posts       map[string]manifestPost `json:"-"`
}

type manifestPost struct {
	PostID     string    `json:"post_id"`
	Source     string    `json:"source"`
	Output     string    `json:"output"`
	Hash       string    `json:"hash"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

// manifestFile is the on-disk shape, with posts ordered by ID.
type manifestFile struct {
	Version     int            `json:"version"`
	BuildID     string         `json:"build_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Posts       []manifestPost `json:"posts"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Posts:   map[string]manifestPost{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	manifest := newBuildManifest()
	if len(data) == 0 {
		return manifest, nil
	}
	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if file.Version != 0 && file.Version != manifestFileVersion {
		// Unknown layouts are ignored and the next build starts fresh.
		return manifest, nil
	}
	manifest.BuildID = file.BuildID
	manifest.GeneratedAt = file.GeneratedAt
	for _, entry := range file.Posts {
		manifest.setPost(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	file := manifestFile{
		Version:     manifestFileVersion,
		BuildID:     m.BuildID,
		GeneratedAt: m.GeneratedAt,
		Posts:       make([]manifestPost, 0, len(m.Posts)),
	}
	for _, entry := range m.Posts {
		file.Posts = append(file.Posts, entry)
	}
	sort.Slice(file.Posts, func(i, j int) bool {
		return file.Posts[i].PostID < file.Posts[j].PostID
	})
	return json.MarshalIndent(file, "", "  ")
}

func (m *buildManifest) setPost(entry manifestPost) {
	key := strings.TrimSpace(entry.PostID)
	if key == "" {
		return
	}
	m.Posts[key] = entry
}

func (m *buildManifest) shouldSkipPost(postID, hash, output string) bool {
	entry, ok := m.Posts[postID]
	if !ok {
		return false
	}
	return entry.Hash == hash && entry.Output == output
}

// clone copies the entries so the result can be written while the original
// is read concurrently.
func (m *buildManifest) clone() *buildManifest {
	out := newBuildManifest()
	out.BuildID = m.BuildID
	out.GeneratedAt = m.GeneratedAt
	for key, entry := range m.Posts {
		out.Posts[key] = entry
	}
	return out
}

// prunePosts drops entries for posts that no longer exist.
func (m *buildManifest) prunePosts(keep map[string]struct{}) {
	for key := range m.Posts {
		if _, ok := keep[key]; !ok {
			delete(m.Posts, key)
		}
	}
}
