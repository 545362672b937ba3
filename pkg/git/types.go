package git

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

const (
	remoteName    = "origin"
	tempDirPrefix = "gitsummary-"

	// UnknownAuthor is tallied for commits without an author name.
	UnknownAuthor = "Unknown"
)

type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceRemote
)

func (k SourceKind) String() string {
	if k == SourceLocal {
		return "local"
	}
	return "remote"
}

// Source is where a repository comes from. It is decided once by ParseSource.
type Source struct {
	Kind     SourceKind
	Location string
}

type Tally map[string]int

type Contributor struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

// Total is the sum of all per-author counts.
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Sorted orders contributors by commit count, busiest first, ties by name.
func (t Tally) Sorted() []Contributor {
	contributors := make([]Contributor, 0, len(t))
	for name, n := range t {
		contributors = append(contributors, Contributor{Name: name, Commits: n})
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Commits != contributors[j].Commits {
			return contributors[i].Commits > contributors[j].Commits
		}
		return contributors[i].Name < contributors[j].Name
	})
	return contributors
}

func (t Tally) clone() Tally {
	c := make(Tally, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// CommitRecord is a single visited commit.
type CommitRecord struct {
	Hash   plumbing.Hash
	Author string
}

type History struct {
	Head         plumbing.Hash
	Commits      int
	Contributors Tally
	Skipped      int
}

type Report struct {
	RepositoryPath string   `json:"repository"`
	Head           string   `json:"head,omitempty"`
	Branches       []string `json:"branches"`
	CommitCount    int      `json:"commits"`
	Contributors   Tally    `json:"contributors"`
	FileCount      int      `json:"files"`
}

type Result struct {
	Input  string
	RunID  string
	Report Report
	Error  error
}
