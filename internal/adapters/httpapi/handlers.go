package httpapi

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"strings"

	"mdoc/internal/application"
	"mdoc/internal/application/commands"
	"mdoc/internal/domain"
)

// DataResponse wraps successful payloads
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse carries a failure message
type ErrorResponse struct {
	Error string `json:"error"`
}

// PageResponse is a document with everything needed to render it
type PageResponse struct {
	*domain.Page
	Breadcrumbs  []domain.Breadcrumb  `json:"breadcrumbs"`
	Navigation   domain.Navigation    `json:"navigation"`
	Subdocuments []domain.Document    `json:"subdocuments,omitempty"`
	LastUpdated  string               `json:"last_updated,omitempty"`
	Author       string               `json:"author,omitempty"`
	Contributors []domain.Contributor `json:"contributors,omitempty"`
	EditURL      string               `json:"edit_url,omitempty"`
}

// NavResponse holds the navigation around a document
type NavResponse struct {
	Path         string              `json:"path"`
	Breadcrumbs  []domain.Breadcrumb `json:"breadcrumbs"`
	Navigation   domain.Navigation   `json:"navigation"`
	Subdocuments []domain.Document   `json:"subdocuments,omitempty"`
}

// HistoryResponse lists the commits touching a document
type HistoryResponse struct {
	Path         string               `json:"path"`
	Status       string               `json:"status"`
	Commits      []domain.Commit      `json:"commits"`
	Contributors []domain.Contributor `json:"contributors"`
	Author       string               `json:"author,omitempty"`
}

// VersionResponse is a document source at a past revision
type VersionResponse struct {
	Path     string         `json:"path"`
	Revision string         `json:"revision"`
	Format   domain.Format  `json:"format"`
	Content  string         `json:"content"`
	Commit   *domain.Commit `json:"commit,omitempty"`
	EditURL  string         `json:"edit_url,omitempty"`
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/docs", s.handleDocList)
	mux.HandleFunc("GET /api/docs/{path...}", s.handleDoc)
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("GET /api/recent", s.handleRecent)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/nav/{path...}", s.handleNav)
	mux.HandleFunc("GET /api/history/{path...}", s.handleHistory)
	mux.HandleFunc("GET /api/version/{path...}", s.handleVersion)

	mux.HandleFunc("GET /docs", s.handleDocsRedirect)
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics.Handler())
	}
}

// --- Format helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

// respondFailure maps application errors to status codes
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var validation *application.ValidationError
	switch {
	case errors.Is(err, application.ErrInvalidPath), errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, application.ErrDisabled):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- Handlers ---

func (s *Server) handleDocList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	section := r.URL.Query().Get("section")

	docs, err := commands.NewListDocumentsCommand(s.opts.Catalog, section).Execute(ctx)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, err := s.opts.Catalog.Resolve(ctx, r.PathValue("path"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	page, err := s.opts.Catalog.Page(ctx, path)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	resp := PageResponse{
		Page:         page,
		Breadcrumbs:  application.Breadcrumbs(path),
		Navigation:   s.opts.Catalog.SiblingNavigation(ctx, path),
		Subdocuments: s.opts.Catalog.Subdocuments(ctx, path),
		EditURL:      domain.EditURL(s.opts.EditBaseURL, page.SourceFile),
	}
	if s.opts.Freshness != nil {
		resp.LastUpdated, _ = s.opts.Freshness.LastUpdatedLabel(ctx, path)
	}
	if s.opts.History != nil && s.opts.History.Enabled() {
		resp.Contributors = s.opts.History.Contributors(ctx, path)
		resp.Author = s.opts.History.Author(ctx, path)
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	sections, err := commands.NewListSectionsCommand(s.opts.Catalog).Execute(r.Context())
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sections)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.opts.Catalog.RecentlyUpdated(r.Context()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	searcher := s.opts.Searcher
	if searcher == nil {
		searcher = commands.CatalogSearcher{Docs: s.opts.Catalog.Documents(ctx)}
	}

	results, err := commands.NewSearchCommand(searcher, r.URL.Query().Get("q")).Execute(ctx)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if results == nil {
		results = []commands.SearchResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, err := application.SanitizePath(r.PathValue("path"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if _, ok := s.opts.Catalog.Document(ctx, path); !ok {
		s.respondFailure(w, r, application.ErrNotFound)
		return
	}

	respondJSON(w, http.StatusOK, NavResponse{
		Path:         path,
		Breadcrumbs:  application.Breadcrumbs(path),
		Navigation:   s.opts.Catalog.SiblingNavigation(ctx, path),
		Subdocuments: s.opts.Catalog.Subdocuments(ctx, path),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, err := application.SanitizePath(r.PathValue("path"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if s.opts.History == nil || !s.opts.History.Enabled() {
		s.respondFailure(w, r, application.ErrDisabled)
		return
	}

	result := s.opts.History.DocumentHistory(ctx, path)
	commits := result.Value
	if commits == nil {
		commits = []domain.Commit{}
	}
	resp := HistoryResponse{
		Path:         path,
		Status:       result.Status.String(),
		Commits:      commits,
		Contributors: domain.ContributorsOf(commits),
	}
	if len(commits) > 0 {
		resp.Author = commits[len(commits)-1].AuthorUsername
	}
	if resp.Contributors == nil {
		resp.Contributors = []domain.Contributor{}
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleVersion serves /api/version/{path}/{rev}, the revision being the
// last path segment
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSuffix(r.PathValue("path"), "/")
	i := strings.LastIndex(raw, "/")
	if i <= 0 {
		respondError(w, http.StatusBadRequest, "expected /api/version/{path}/{revision}")
		return
	}
	revision := raw[i+1:]

	path, err := application.SanitizePath(raw[:i])
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	if s.opts.History == nil {
		s.respondFailure(w, r, application.ErrDisabled)
		return
	}

	content, format, err := s.opts.History.DocumentAtRevision(ctx, path, revision)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	resp := VersionResponse{
		Path:     path,
		Revision: revision,
		Format:   format,
		Content:  content,
		EditURL:  domain.EditURL(s.opts.EditBaseURL, path+format.Extension()),
	}
	if commit, ok := application.FindCommit(s.opts.History.DocumentHistory(ctx, path).Value, revision); ok {
		resp.Commit = &commit
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocsRedirect(w http.ResponseWriter, r *http.Request) {
	first, ok := s.opts.Catalog.FirstDocument(r.Context())
	if !ok {
		http.Redirect(w, r, "/api/docs", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/api/docs/"+first.Path, http.StatusFound)
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	base := strings.TrimSuffix(s.opts.BaseURL, "/")

	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: base + "/"}},
	}
	for _, doc := range s.opts.Catalog.Documents(ctx) {
		if doc.IsVirtual {
			continue
		}
		u := sitemapURL{Loc: base + "/" + doc.Path}
		if s.opts.Freshness != nil {
			if updated, ok := s.opts.Freshness.LastUpdated(ctx, doc.Path); ok {
				u.LastMod = updated.UTC().Format("2006-01-02")
			}
		}
		set.URLs = append(set.URLs, u)
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(set)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"documents": len(s.opts.Catalog.Documents(r.Context()))})
}
