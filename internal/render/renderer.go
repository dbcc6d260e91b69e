package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/gate"
	"github.com/xxxsen/draftshare/internal/model"
	"github.com/xxxsen/draftshare/internal/pkg/timeutil"
)

type DocumentViewer interface {
	GetForViewer(ctx context.Context, viewerID string, docID int64, preAuthorized int64) (*model.Document, error)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex, nofollow">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
{{if .Preview}}<div class="pds-banner" role="note">Preview of unpublished content ({{.Status}}). Last updated {{.Updated}}.</div>
{{end}}<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
</body>
</html>
`

type pageData struct {
	Title   string
	Status  string
	Updated string
	Preview bool
	Body    template.HTML
}

type Renderer struct {
	docs  DocumentViewer
	cache *PageCache
	md    goldmark.Markdown
	tmpl  *template.Template
}

func NewRenderer(docs DocumentViewer, cache *PageCache) *Renderer {
	return &Renderer{
		docs:  docs,
		cache: cache,
		md:    goldmark.New(),
		tmpl:  template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// RenderShared renders the document a grant was issued for. The grant is
// passed to the document fetch as its pre-authorized id.
func (r *Renderer) RenderShared(ctx context.Context, grant gate.Grant) ([]byte, error) {
	if page, ok := r.cache.Get(grant.DocumentID); ok {
		logutil.GetLogger(ctx).Debug("share page cache hit", zap.Int64("document_id", grant.DocumentID))
		return page, nil
	}
	doc, err := r.docs.GetForViewer(ctx, "", grant.DocumentID, grant.DocumentID)
	if err != nil {
		return nil, err
	}
	page, err := r.Render(doc)
	if err != nil {
		return nil, err
	}
	r.cache.Add(grant.DocumentID, page)
	return page, nil
}

func (r *Renderer) Render(doc *model.Document) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(doc.Content), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	data := pageData{
		Title:   doc.Title,
		Status:  doc.Status,
		Updated: timeutil.FormatUnix(doc.Mtime),
		Preview: !doc.Published(),
		Body:    template.HTML(body.String()),
	}
	var out bytes.Buffer
	if err := r.tmpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}
