package pullrequest

import "time"

type State string

const (
	StateOpen       State = "OPEN"
	StateMerged     State = "MERGED"
	StateDeclined   State = "DECLINED"
	StateSuperseded State = "SUPERSEDED"
)

// Site identifies the Bitbucket instance a pull request lives on.
type Site struct {
	BaseURL string `json:"baseUrl"`
	IsCloud bool   `json:"isCloud"`
}

type Repo struct {
	Workspace string `json:"workspace"`
	Slug      string `json:"slug"`
	URL       string `json:"url"`
}

// FullName returns the repository in the form of workspace/slug.
func (r Repo) FullName() string {
	return r.Workspace + "/" + r.Slug
}

type Branch struct {
	Name       string
	CommitHash string
	Repo       Repo
}

type EntityID string

type Entity struct {
	ID          EntityID
	Title       string
	Description string
	State       State
	Site        Site
	Source      Branch
	Destination Branch
	// URL is the pull request href. It doubles as the key of the
	// comment thread cache.
	URL     string
	Created time.Time
	Updated time.Time
	// LocalRepo is nil when the repository is not checked out locally.
	LocalRepo LocalRepo
}

type FileStatus string

const (
	FileStatusAdded    FileStatus = "A"
	FileStatusDeleted  FileStatus = "D"
	FileStatusModified FileStatus = "M"
	FileStatusRenamed  FileStatus = "R"
	FileStatusCopied   FileStatus = "C"
	FileStatusConflict FileStatus = "CONFLICT"
	FileStatusUnknown  FileStatus = "X"
)

// ParseFileStatus maps a Bitbucket diffstat status onto a FileStatus.
func ParseFileStatus(s string) FileStatus {
	switch s {
	case "added":
		return FileStatusAdded
	case "removed", "local deleted", "remote deleted":
		return FileStatusDeleted
	case "modified":
		return FileStatusModified
	case "renamed":
		return FileStatusRenamed
	case "copied":
		return FileStatusCopied
	case "merge conflict":
		return FileStatusConflict
	default:
		return FileStatusUnknown
	}
}

// HunkMeta holds the line numbers touched by a file diff on each side.
type HunkMeta struct {
	OldPathAdditions []int
	OldPathDeletions []int
	NewPathAdditions []int
	NewPathDeletions []int
	// NewPathContextMap maps a new-side line number of an unchanged
	// context line to its old-side line number.
	NewPathContextMap map[int]int
}

// FileDiff is one changed file between the two revisions of a pull request.
// An empty OldPath or NewPath means the file is absent on that side.
type FileDiff struct {
	Status       FileStatus
	OldPath      string
	NewPath      string
	LinesAdded   int
	LinesRemoved int
	HunkMeta     HunkMeta
}

type Inline struct {
	Path string `json:"path"`
	From *int   `json:"from,omitempty"`
	To   *int   `json:"to,omitempty"`
}

type Task struct {
	ID         string    `json:"id"`
	CommentID  string    `json:"commentId,omitempty"`
	Content    string    `json:"content"`
	IsComplete bool      `json:"isComplete"`
	Creator    string    `json:"creator,omitempty"`
	Created    time.Time `json:"created"`
}

type Comment struct {
	ID       string     `json:"id"`
	ParentID string     `json:"parentId,omitempty"`
	Content  string     `json:"content"`
	User     string     `json:"user"`
	Created  time.Time  `json:"created"`
	Updated  time.Time  `json:"updated"`
	Deleted  bool       `json:"deleted,omitempty"`
	Inline   *Inline    `json:"inline,omitempty"`
	Children []*Comment `json:"children,omitempty"`
	Tasks    []*Task    `json:"tasks,omitempty"`
}

// PaginatedComments is the result of a comments fetch. A non-empty Next
// means more pages exist than were fetched.
type PaginatedComments struct {
	Data []*Comment
	Next string
}

type Commit struct {
	Hash    string
	Message string
	Author  string
	Date    time.Time
}

// Int returns a pointer to v, for building Inline anchors.
func Int(v int) *int {
	return &v
}
