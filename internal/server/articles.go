package server

import (
	"net/http"
	"strings"
	"time"

	"speed/internal/app"
)

type articleCreateRequest struct {
	Title       string     `json:"title"`
	Authors     string     `json:"authors"`
	Journal     string     `json:"journal"`
	Volume      int        `json:"volume"`
	Pages       string     `json:"pages"`
	PubYear     int        `json:"pubYear"`
	DOI         string     `json:"doi"`
	SubmittedAt *time.Time `json:"submittedAt"`
	// Status is accepted but ignored: submissions always enter moderation.
	Status string `json:"status"`
}

type articleUpdateRequest struct {
	Title      *string `json:"title"`
	Authors    *string `json:"authors"`
	Journal    *string `json:"journal"`
	Volume     *int    `json:"volume"`
	Pages      *string `json:"pages"`
	PubYear    *int    `json:"pubYear"`
	DOI        *string `json:"doi"`
	Status     *string `json:"status"`
	SeMethodID *string `json:"seMethod"`
	Claim      *string `json:"claim"`
	Evidence   *string `json:"evidence"`
}

type rateRequest struct {
	Rating float64 `json:"rating"`
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitArticle(w, r)
	case http.MethodGet:
		articles, err := s.app.ListArticles()
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, articles)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSubmitArticle(w http.ResponseWriter, r *http.Request) {
	var req articleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	in := app.ArticleInput{
		Title:   req.Title,
		Authors: req.Authors,
		Journal: req.Journal,
		Volume:  req.Volume,
		Pages:   req.Pages,
		PubYear: req.PubYear,
		DOI:     req.DOI,
	}
	if req.SubmittedAt != nil {
		in.SubmittedAt = *req.SubmittedAt
	}
	article, err := s.app.SubmitArticle(in)
	if err != nil {
		s.appError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// /api/articles/status, /api/articles/status/ordered, /api/articles/duplicates,
// /api/articles/{id}, /api/articles/{id}/rate
func (s *Server) handleArticleSubpath(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/articles/")
	switch path {
	case "status":
		s.handleArticlesByStatus(w, r)
		return
	case "status/ordered":
		s.handleArticlesByStatusOrdered(w, r)
		return
	case "duplicates":
		s.handleDuplicates(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(parts) == 2 {
		if parts[1] == "rate" {
			s.handleRateArticle(w, r, id)
			return
		}
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.handleArticleByID(w, r, id)
}

func (s *Server) handleArticleByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		article, err := s.app.GetArticle(id)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, article)
	case http.MethodPut:
		var req articleUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		article, err := s.app.UpdateArticle(id, app.ArticleUpdateRequest{
			Title:      req.Title,
			Authors:    req.Authors,
			Journal:    req.Journal,
			Volume:     req.Volume,
			Pages:      req.Pages,
			PubYear:    req.PubYear,
			DOI:        req.DOI,
			Status:     req.Status,
			SeMethodID: req.SeMethodID,
			Claim:      req.Claim,
			Evidence:   req.Evidence,
		})
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, article)
	case http.MethodDelete:
		if err := s.app.DeleteArticle(id); err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleArticlesByStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	articles, err := s.app.ListArticlesByStatus(r.URL.Query().Get("status"))
	if err != nil {
		s.appError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleArticlesByStatusOrdered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	articles, err := s.app.ListArticlesByStatusOrdered(q.Get("status"), q.Get("sortOrder"))
	if err != nil {
		s.appError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	duplicates, err := s.app.FindDuplicates(q.Get("title"), q.Get("doi"))
	if err != nil {
		s.appError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, duplicates)
}

func (s *Server) handleRateArticle(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allow(s.ratingLimiter, r) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	article, err := s.app.RateArticle(id, req.Rating)
	if err != nil {
		s.appError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"article":       article,
		"averageRating": article.AverageRating(),
	})
}
