package bitbucket

type bbError struct {
	Error struct {
		Message string
	}
}

type bbContent struct {
	Raw string `json:"raw"`
}

type bbRef struct {
	ID int `json:"id"`
}

type bbInline struct {
	Path string `json:"path"`
	From *int   `json:"from,omitempty"`
	To   *int   `json:"to,omitempty"`
}

type bbCommentBody struct {
	Content bbContent `json:"content"`
	Parent  *bbRef    `json:"parent,omitempty"`
	Inline  *bbInline `json:"inline,omitempty"`
}

type bbTaskBody struct {
	Content bbContent `json:"content"`
	Comment *bbRef    `json:"comment,omitempty"`
	State   string    `json:"state,omitempty"`
}

const (
	taskStateResolved   = "RESOLVED"
	taskStateUnresolved = "UNRESOLVED"
)
