package model

import (
	"net/url"
	"strconv"
)

// ShareLink grants anonymous read access to one unpublished document.
// ExpiresAt is a unix timestamp; 0 means the link never expires.
type ShareLink struct {
	DocumentID int64  `json:"document_id"`
	Token      string `json:"token"`
	ExpiresAt  int64  `json:"expires_at"`
	Ctime      int64  `json:"ctime"`
	Mtime      int64  `json:"mtime"`
}

// Expired is evaluated against the caller's clock on every read; nothing
// flips a stored flag when the deadline passes.
func (l *ShareLink) Expired(now int64) bool {
	return l.ExpiresAt != 0 && now > l.ExpiresAt
}

func (l *ShareLink) Live(now int64) bool {
	return l != nil && l.Token != "" && !l.Expired(now)
}

// SharePathPrefix is the path every share URL lives under.
const SharePathPrefix = "/pds/"

func SharePath(docID int64, token string) string {
	return SharePathPrefix + strconv.FormatInt(docID, 10) + "/" + url.PathEscape(token)
}
