package model

const (
	DocumentStatusDraft   = "draft"
	DocumentStatusPending = "pending"
	DocumentStatusFuture  = "future"
	DocumentStatusPrivate = "private"
	DocumentStatusPublish = "publish"
)

type Document struct {
	ID      int64  `json:"id"`
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Ctime   int64  `json:"ctime"`
	Mtime   int64  `json:"mtime"`
}

func (d *Document) Published() bool {
	return d != nil && d.Status == DocumentStatusPublish
}

func ValidDocumentStatus(status string) bool {
	switch status {
	case DocumentStatusDraft, DocumentStatusPending, DocumentStatusFuture, DocumentStatusPrivate, DocumentStatusPublish:
		return true
	}
	return false
}
