package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// ErrNoURLs is returned by NewWeb when there is nothing to load.
var ErrNoURLs = errors.New("no urls to load")

// WebConfig controls how pages are fetched. MaxDepth 0 loads only the given
// pages; higher values follow links on the same host. Readability extracts
// the main article text instead of all visible text.
type WebConfig struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxDepth          int
	IgnorePatterns    []string
	AllowedExtensions []string
	ContinueOnFailure bool
	Readability       bool
	MaxBodyBytes      int64
	OnProgress        func(url string)
	Client            *http.Client
}

// Web loads web pages, one document per page.
type Web struct {
	urls    []string
	config  WebConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWeb(urls []string, config WebConfig) (*Web, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", u, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("invalid url %q: scheme must be http or https", u)
		}
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}
	if len(config.AllowedExtensions) == 0 {
		config.AllowedExtensions = []string{".html", ".htm", ".php", ".asp", ".aspx"}
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 10 * 1024 * 1024
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &Web{
		urls:    urls,
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}, nil
}

// Load fetches every URL in order. A failing URL aborts the load unless
// ContinueOnFailure is set, in which case it is logged and skipped.
func (w *Web) Load(ctx context.Context) ([]schema.Document, error) {
	var documents []schema.Document
	visited := make(map[string]bool)

	for _, u := range w.urls {
		parsed, _ := url.Parse(u)
		err := w.loadRecursive(ctx, u, parsed.Host, 0, visited, &documents)
		if err == nil {
			continue
		}
		if !w.config.ContinueOnFailure || ctx.Err() != nil {
			return nil, err
		}
		log.Printf("Skipping %s: %v", u, err)
	}

	return documents, nil
}

func (w *Web) LoadAndSplit(ctx context.Context, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	docs, err := w.Load(ctx)
	if err != nil {
		return nil, err
	}
	return splitDocuments(splitter, docs)
}

func (w *Web) loadRecursive(ctx context.Context, urlStr, host string, depth int, visited map[string]bool, documents *[]schema.Document) error {
	if depth > w.config.MaxDepth || visited[urlStr] {
		return nil
	}
	visited[urlStr] = true

	if w.config.OnProgress != nil {
		w.config.OnProgress(urlStr)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	doc, page, err := w.fetch(ctx, urlStr)
	if err != nil {
		return err
	}
	doc.Metadata[models.MetaDepth] = depth
	*documents = append(*documents, doc)

	if depth == w.config.MaxDepth {
		return nil
	}

	base, err := url.Parse(urlStr)
	if err != nil {
		return err
	}

	for _, link := range w.links(page, base, host) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.loadRecursive(ctx, link, host, depth+1, visited, documents); err != nil {
			log.Printf("Error loading linked page %s: %v", link, err)
		}
	}

	return nil
}

func (w *Web) fetch(ctx context.Context, urlStr string) (schema.Document, *goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return schema.Document{}, nil, err
	}
	req.Header.Set("User-Agent", w.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := w.client.Do(req)
	if err != nil {
		return schema.Document{}, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return schema.Document{}, nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	body, truncated, err := w.readBody(resp)
	if err != nil {
		return schema.Document{}, nil, fmt.Errorf("failed to read body of %s: %w", urlStr, err)
	}
	if truncated {
		log.Printf("Page %s exceeds %d bytes, content truncated", urlStr, w.config.MaxBodyBytes)
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return schema.Document{}, nil, fmt.Errorf("failed to parse %s: %w", urlStr, err)
	}

	metadata := pageMetadata(page)
	metadata[models.MetaSource] = urlStr
	if truncated {
		metadata[models.MetaTruncated] = true
	}

	var content string
	if w.config.Readability {
		content = w.articleText(body, urlStr, metadata)
	}
	if content == "" {
		content = visibleText(page.Find("body"))
	}
	if content == "" {
		content = visibleText(page.Selection)
	}

	return schema.Document{PageContent: content, Metadata: metadata}, page, nil
}

// readBody reads at most MaxBodyBytes of the response and decodes it to
// UTF-8 using the charset from the Content-Type header or the page's own
// <meta> declaration.
func (w *Web) readBody(resp *http.Response) ([]byte, bool, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, w.config.MaxBodyBytes+1))
	if err != nil {
		return nil, false, err
	}

	truncated := int64(len(raw)) > w.config.MaxBodyBytes
	if truncated {
		raw = raw[:w.config.MaxBodyBytes]
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, false, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	return body, truncated, nil
}

// articleText runs readability over body. Returns "" when no article could
// be extracted so the caller falls back to the visible text.
func (w *Web) articleText(body []byte, urlStr string, metadata map[string]interface{}) string {
	pageURL, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		log.Printf("Readability failed for %s: %v", urlStr, err)
		return ""
	}

	if article.Title != "" {
		metadata[models.MetaTitle] = article.Title
	}
	if _, ok := metadata[models.MetaDescription]; !ok && article.Excerpt != "" {
		metadata[models.MetaDescription] = article.Excerpt
	}

	return collapseSpace(article.TextContent)
}

func pageMetadata(page *goquery.Document) map[string]interface{} {
	metadata := map[string]interface{}{}

	if title := strings.TrimSpace(page.Find("title").First().Text()); title != "" {
		metadata[models.MetaTitle] = title
	}
	if desc, ok := page.Find(`meta[name="description"]`).First().Attr("content"); ok {
		metadata[models.MetaDescription] = strings.TrimSpace(desc)
	}
	if lang, ok := page.Find("html").First().Attr("lang"); ok {
		metadata[models.MetaLanguage] = lang
	}

	return metadata
}

// links returns the absolute same-host links of page worth following.
func (w *Web) links(page *goquery.Document, base *url.URL, host string) []string {
	var links []string
	seen := make(map[string]bool)

	page.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			log.Printf("Error parsing URL: %v", err)
			return
		}

		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		link := abs.String()

		if seen[link] || !w.shouldFollow(abs, host) {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links
}

func (w *Web) shouldFollow(u *url.URL, host string) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host != host {
		return false
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		allowed := false
		for _, a := range w.config.AllowedExtensions {
			if ext == a {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	for _, pattern := range w.config.IgnorePatterns {
		if strings.Contains(u.String(), pattern) {
			return false
		}
	}

	return true
}

// Elements whose text is never shown to a reader.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"svg":      true,
	"head":     true,
}

// Elements rendered inline; every other element separates words.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "i": true, "kbd": true,
	"label": true, "mark": true, "q": true, "s": true, "samp": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "time": true, "u": true,
	"var": true,
}

func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(n, &b)
	}
	return collapseSpace(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
	}

	block := n.Type == html.ElementNode && !inlineElements[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if block {
		b.WriteByte(' ')
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
