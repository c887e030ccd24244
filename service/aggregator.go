package service

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"cognify/decoder"
	"cognify/domain"
	"cognify/extract"
	"cognify/repository"
)

// Fan-out caps. Canvas has no SLA; these bound the worst-case request
// volume of one aggregation.
const (
	moduleFileCap    = 200
	htmlFileCap      = 200
	pageFollowCap    = 50
	embeddedPageCap  = 3
	fetchConcurrency = 8
)

type aggregatorService struct {
	canvas   CanvasAPI
	fetcher  Fetcher
	uploads  repository.UploadRepository
	decoders *decoder.Registry
	logger   *slog.Logger
}

// NewAggregatorService creates the corpus-building service.
func NewAggregatorService(canvas CanvasAPI, fetcher Fetcher, uploads repository.UploadRepository,
	decoders *decoder.Registry, logger *slog.Logger) AggregatorService {
	return &aggregatorService{
		canvas:   canvas,
		fetcher:  fetcher,
		uploads:  uploads,
		decoders: decoders,
		logger:   logger,
	}
}

// BuildCorpus runs the tiered discovery pipeline:
//
//	tier 0  the explicit selection (syllabus, pages, assignments, files,
//	        external links, uploads)
//	tier 1  File/ExternalUrl siblings from the course's module structure
//	tier 2  references extracted from every HTML body obtained in tier 0
//	tier 3  one extra hop through embedded pages and discovered Canvas pages
//
// Every candidate is fetched at most once; any individual failure degrades
// to "no contribution". The only errors surfaced are authentication
// failures and an entirely empty corpus.
func (s *aggregatorService) BuildCorpus(ctx context.Context, token string, courseID int, sel domain.ContentSelection) (string, error) {
	if sel.Empty() {
		return "", domain.ErrNoReadableContent
	}

	agg := newAggregation(sel)

	// Tier 0: HTML-bearing sources first; their bodies seed tier 2.
	seeds := s.fetchHTMLSeeds(ctx, token, courseID, sel)
	var docs []domain.Document
	for _, seed := range seeds {
		docs = append(docs, domain.Document{Label: seed.label, Text: decoder.HTMLToText(seed.html)})
	}

	// Tier 0: explicitly selected files and external links.
	var candidates []candidate
	for _, id := range sel.FileIDs {
		candidates = append(candidates, agg.fileCandidate(id, ""))
	}
	for _, u := range sel.ExternalLinkURLs {
		candidates = append(candidates, agg.linkCandidate(u, ""))
	}

	// Tier 1: module siblings, only when the selection touches course
	// content at all.
	if touchesCourseContent(sel) {
		candidates = append(candidates, s.moduleCandidates(ctx, token, courseID, agg)...)
	}

	// Tier 2: scan tier-0 HTML for embedded pages, page links, file ids,
	// and external file links.
	var embedded []candidate
	var pageFollows []candidate
	for _, seed := range seeds {
		e, p, c := agg.scanHTML(seed.html, courseID, "")
		embedded = append(embedded, e...)
		pageFollows = append(pageFollows, p...)
		candidates = append(candidates, c...)
	}

	// Tier 3: one hop. Embedded pages and discovered Canvas pages are
	// fetched now because their bodies yield further file candidates.
	embeddedDocs, moreFromEmbedded := s.followEmbeddedPages(ctx, embedded, agg)
	pageDocs, moreFromPages := s.followCanvasPages(ctx, token, courseID, pageFollows, agg)
	candidates = append(candidates, moreFromEmbedded...)
	candidates = append(candidates, moreFromPages...)

	// Fetch and decode every remaining candidate concurrently, keeping
	// discovery order.
	candidateDocs := s.fetchCandidates(ctx, token, candidates)

	docs = append(docs, candidateDocs...)
	docs = append(docs, embeddedDocs...)
	docs = append(docs, pageDocs...)

	for _, entry := range s.uploads.GetMany(sel.UploadIDs) {
		docs = append(docs, domain.Document{Label: entry.Name, Text: entry.Text})
	}

	corpus := domain.JoinDocuments(docs)
	if corpus == "" {
		return "", domain.ErrNoReadableContent
	}

	s.logger.InfoContext(ctx, "corpus assembled",
		"course_id", courseID, "documents", len(docs), "chars", len(corpus))
	return corpus, nil
}

// touchesCourseContent reports whether the selection references any Canvas
// entity. A selection of only uploads or external links makes no Canvas
// calls at all.
func touchesCourseContent(sel domain.ContentSelection) bool {
	return len(sel.FileIDs) > 0 || len(sel.PageSlugs) > 0 ||
		len(sel.AssignmentIDs) > 0 || sel.IncludeSyllabus
}

// candidateKind tags what a discovered candidate is; fetch strategy
// depends on it.
type candidateKind int

const (
	kindCanvasFile candidateKind = iota
	kindExternalLink
)

type candidate struct {
	kind   candidateKind
	fileID int
	url    string
	label  string
}

// aggregation tracks per-invocation dedup state. Not safe for concurrent
// mutation; all discovery happens on the calling goroutine.
type aggregation struct {
	seenFileIDs map[int]struct{}
	seenSlugs   map[string]struct{}
	seenURLs    map[string]struct{}
	// Embedded-page candidates are deduplicated separately: only the ones
	// actually fetched enter seenURLs, so a candidate dropped by the cap
	// can still be claimed later as a direct file link.
	seenEmbeds map[string]struct{}
	htmlFiles  int
}

func newAggregation(sel domain.ContentSelection) *aggregation {
	a := &aggregation{
		seenFileIDs: make(map[int]struct{}),
		seenSlugs:   make(map[string]struct{}),
		seenURLs:    make(map[string]struct{}),
		seenEmbeds:  make(map[string]struct{}),
	}
	for _, slug := range sel.PageSlugs {
		a.seenSlugs[slug] = struct{}{}
	}
	return a
}

func (a *aggregation) fileCandidate(id int, label string) candidate {
	a.seenFileIDs[id] = struct{}{}
	return candidate{kind: kindCanvasFile, fileID: id, label: label}
}

func (a *aggregation) linkCandidate(url, label string) candidate {
	a.seenURLs[url] = struct{}{}
	return candidate{kind: kindExternalLink, url: url, label: label}
}

// scanHTML extracts tier-2 references from one HTML body: embedded page
// candidates, Canvas page follows, and file/link candidates, all
// deduplicated against everything discovered so far.
func (a *aggregation) scanHTML(html string, courseID int, baseURL string) (embedded, pages, files []candidate) {
	for _, u := range extract.ExtractEmbeddedHTMLURLs(html) {
		if _, ok := a.seenURLs[u]; ok {
			continue
		}
		if _, ok := a.seenEmbeds[u]; ok {
			continue
		}
		a.seenEmbeds[u] = struct{}{}
		embedded = append(embedded, candidate{kind: kindExternalLink, url: u})
	}

	for _, link := range extract.ExtractCanvasPageSlugs(html, courseID) {
		if _, ok := a.seenSlugs[link.Slug]; ok {
			continue
		}
		a.seenSlugs[link.Slug] = struct{}{}
		pages = append(pages, candidate{url: link.Slug, label: link.Title})
	}

	for _, id := range extract.ExtractCanvasFileIDs(html) {
		if _, ok := a.seenFileIDs[id]; ok {
			continue
		}
		if a.htmlFiles >= htmlFileCap {
			break
		}
		a.htmlFiles++
		files = append(files, a.fileCandidate(id, ""))
	}

	for _, link := range extract.ExtractExternalFileLinks(html, baseURL) {
		if _, ok := a.seenURLs[link.URL]; ok {
			continue
		}
		files = append(files, a.linkCandidate(link.URL, link.Title))
	}

	return embedded, pages, files
}

// htmlSeed is one tier-0 HTML body plus its document label.
type htmlSeed struct {
	label string
	html  string
}

// fetchHTMLSeeds pulls the syllabus, selected pages, and selected
// assignments concurrently, preserving selection order. Failures
// contribute nothing.
func (s *aggregatorService) fetchHTMLSeeds(ctx context.Context, token string, courseID int, sel domain.ContentSelection) []htmlSeed {
	type job func() *htmlSeed

	var jobs []job
	if sel.IncludeSyllabus {
		jobs = append(jobs, func() *htmlSeed {
			course, err := s.canvas.CourseWithSyllabus(ctx, token, courseID)
			if err != nil {
				s.logger.WarnContext(ctx, "syllabus fetch failed", "course_id", courseID, "error", err)
				return nil
			}
			return &htmlSeed{label: "Syllabus", html: course.SyllabusBody}
		})
	}
	for _, slug := range sel.PageSlugs {
		slug := slug
		jobs = append(jobs, func() *htmlSeed {
			page, err := s.canvas.Page(ctx, token, courseID, slug)
			if err != nil {
				s.logger.WarnContext(ctx, "page fetch failed", "slug", slug, "error", err)
				return nil
			}
			return &htmlSeed{label: page.Title, html: page.Body}
		})
	}
	for _, id := range sel.AssignmentIDs {
		id := id
		jobs = append(jobs, func() *htmlSeed {
			assignment, err := s.canvas.Assignment(ctx, token, courseID, id)
			if err != nil {
				s.logger.WarnContext(ctx, "assignment fetch failed", "assignment_id", id, "error", err)
				return nil
			}
			return &htmlSeed{label: assignment.Name, html: assignment.Description}
		})
	}

	results := make([]*htmlSeed, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(fetchConcurrency)
	for i, run := range jobs {
		i, run := i, run
		g.Go(func() error {
			results[i] = run()
			return nil
		})
	}
	g.Wait()

	var seeds []htmlSeed
	for _, r := range results {
		if r != nil && r.html != "" {
			seeds = append(seeds, *r)
		}
	}
	return seeds
}

// moduleCandidates walks the course's module structure for File and
// ExternalUrl items not already covered by the selection.
func (s *aggregatorService) moduleCandidates(ctx context.Context, token string, courseID int, agg *aggregation) []candidate {
	modules, err := s.canvas.ModulesWithItems(ctx, token, courseID)
	if err != nil {
		s.logger.WarnContext(ctx, "module listing failed, skipping sibling discovery",
			"course_id", courseID, "error", err)
		return nil
	}

	var candidates []candidate
	moduleFiles := 0
	for _, module := range modules {
		for _, item := range module.Items {
			switch item.Type {
			case domain.ModuleItemFile:
				if _, ok := agg.seenFileIDs[item.ContentID]; ok {
					continue
				}
				if moduleFiles >= moduleFileCap {
					continue
				}
				moduleFiles++
				candidates = append(candidates, agg.fileCandidate(item.ContentID, item.Title))
			case domain.ModuleItemExternalURL:
				if item.ExternalURL == "" {
					continue
				}
				if _, ok := agg.seenURLs[item.ExternalURL]; ok {
					continue
				}
				candidates = append(candidates, agg.linkCandidate(item.ExternalURL, item.Title))
			}
		}
	}
	return candidates
}

// followEmbeddedPages fetches up to embeddedPageCap externally hosted
// pages, contributing their text as documents and scanning them for
// further external file links resolved against the fetched page's URL.
func (s *aggregatorService) followEmbeddedPages(ctx context.Context, embedded []candidate, agg *aggregation) ([]domain.Document, []candidate) {
	// Commit only the candidates actually fetched to the URL dedup set.
	// Anything past the cap, or since claimed as a direct link, stays
	// eligible for discovery elsewhere.
	kept := embedded[:0]
	for _, cand := range embedded {
		if len(kept) == embeddedPageCap {
			break
		}
		if _, ok := agg.seenURLs[cand.url]; ok {
			continue
		}
		agg.seenURLs[cand.url] = struct{}{}
		kept = append(kept, cand)
	}
	embedded = kept

	type pageResult struct {
		doc  *domain.Document
		html string
		base string
	}
	results := make([]pageResult, len(embedded))

	g := new(errgroup.Group)
	g.SetLimit(fetchConcurrency)
	for i, cand := range embedded {
		i, cand := i, cand
		g.Go(func() error {
			res, err := s.fetcher.Fetch(ctx, cand.url)
			if err != nil {
				s.logger.WarnContext(ctx, "embedded page fetch failed", "url", cand.url, "error", err)
				return nil
			}
			text := decoder.HTMLToText(string(res.Body))
			results[i] = pageResult{
				doc:  &domain.Document{Label: extract.URLToLabel(res.FinalURL), Text: text},
				html: string(res.Body),
				base: res.FinalURL,
			}
			return nil
		})
	}
	g.Wait()

	var docs []domain.Document
	var more []candidate
	for _, r := range results {
		if r.doc == nil {
			continue
		}
		docs = append(docs, *r.doc)
		for _, link := range extract.ExtractExternalFileLinks(r.html, r.base) {
			if _, ok := agg.seenURLs[link.URL]; ok {
				continue
			}
			more = append(more, agg.linkCandidate(link.URL, link.Title))
		}
	}
	return docs, more
}

// followCanvasPages fetches up to pageFollowCap discovered wiki pages,
// contributing their text and scanning their bodies for nested file ids
// and external links. One hop only: pages found here are not followed.
func (s *aggregatorService) followCanvasPages(ctx context.Context, token string, courseID int, pages []candidate, agg *aggregation) ([]domain.Document, []candidate) {
	if len(pages) > pageFollowCap {
		pages = pages[:pageFollowCap]
	}

	type pageResult struct {
		doc  *domain.Document
		html string
	}
	results := make([]pageResult, len(pages))

	g := new(errgroup.Group)
	g.SetLimit(fetchConcurrency)
	for i, cand := range pages {
		i, cand := i, cand
		g.Go(func() error {
			page, err := s.canvas.Page(ctx, token, courseID, cand.url)
			if err != nil {
				s.logger.WarnContext(ctx, "discovered page fetch failed", "slug", cand.url, "error", err)
				return nil
			}
			label := page.Title
			if label == "" {
				label = cand.label
			}
			results[i] = pageResult{
				doc:  &domain.Document{Label: label, Text: decoder.HTMLToText(page.Body)},
				html: page.Body,
			}
			return nil
		})
	}
	g.Wait()

	var docs []domain.Document
	var more []candidate
	for _, r := range results {
		if r.doc == nil {
			continue
		}
		docs = append(docs, *r.doc)
		for _, id := range extract.ExtractCanvasFileIDs(r.html) {
			if _, ok := agg.seenFileIDs[id]; ok {
				continue
			}
			if agg.htmlFiles >= htmlFileCap {
				break
			}
			agg.htmlFiles++
			more = append(more, agg.fileCandidate(id, ""))
		}
		for _, link := range extract.ExtractExternalFileLinks(r.html, "") {
			if _, ok := agg.seenURLs[link.URL]; ok {
				continue
			}
			more = append(more, agg.linkCandidate(link.URL, link.Title))
		}
	}
	return docs, more
}

// fetchCandidates downloads and decodes file and link candidates
// concurrently, returning documents in discovery order. Failures and
// unsupported formats contribute nothing.
func (s *aggregatorService) fetchCandidates(ctx context.Context, token string, candidates []candidate) []domain.Document {
	results := make([]*domain.Document, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(fetchConcurrency)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			switch cand.kind {
			case kindCanvasFile:
				results[i] = s.fetchCanvasFile(ctx, token, cand)
			case kindExternalLink:
				results[i] = s.fetchExternalLink(ctx, cand)
			}
			return nil
		})
	}
	g.Wait()

	var docs []domain.Document
	for _, r := range results {
		if r != nil {
			docs = append(docs, *r)
		}
	}
	return docs
}

func (s *aggregatorService) fetchCanvasFile(ctx context.Context, token string, cand candidate) *domain.Document {
	file, err := s.canvas.File(ctx, token, cand.fileID)
	if err != nil {
		s.logger.WarnContext(ctx, "file metadata fetch failed", "file_id", cand.fileID, "error", err)
		return nil
	}

	body, contentType, err := s.canvas.DownloadFile(ctx, token, file.URL)
	if err != nil {
		s.logger.WarnContext(ctx, "file download failed", "file_id", cand.fileID, "error", err)
		return nil
	}
	if contentType == "" {
		contentType = file.ContentType
	}

	text, err := s.decoders.ExtractText(contentType, file.Filename, body)
	if err != nil {
		s.logger.DebugContext(ctx, "file not decodable",
			"file_id", cand.fileID, "content_type", contentType, "error", err)
		return nil
	}

	label := cand.label
	if file.DisplayName != "" {
		label = file.DisplayName
	}
	if label == "" {
		label = "File " + strconv.Itoa(cand.fileID)
	}
	return &domain.Document{Label: label, Text: text}
}

func (s *aggregatorService) fetchExternalLink(ctx context.Context, cand candidate) *domain.Document {
	url := cand.url
	if rewritten, ok := extract.GoogleDriveDownloadURL(url); ok {
		url = rewritten
	}

	res, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.WarnContext(ctx, "external link fetch failed", "url", url, "error", err)
		return nil
	}

	// The advertised content type wins over whatever the URL looks like;
	// the path extension is only a hint when the server sends a generic
	// type. A Drive export serving text/plain at a .pdf URL must not hit
	// the PDF decoder.
	nameHint := res.FinalURL
	if !decoder.GenericContentType(res.ContentType) {
		nameHint = ""
	}

	text, err := s.decoders.ExtractText(res.ContentType, nameHint, res.Body)
	if err != nil {
		s.logger.DebugContext(ctx, "external document not decodable",
			"url", url, "content_type", res.ContentType, "error", err)
		return nil
	}

	label := cand.label
	if label == "" {
		label = extract.URLToLabel(cand.url)
	}
	return &domain.Document{Label: label, Text: text}
}
