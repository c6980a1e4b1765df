package server

import (
	"net/http"
	"strconv"
	"strings"
)

type seMethodRequest struct {
	Name   string   `json:"name"`
	Claims []string `json:"claims"`
}

type claimRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSeMethods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req seMethodRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		method, err := s.app.CreateSeMethod(req.Name, req.Claims)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, method)
	case http.MethodGet:
		methods, err := s.app.ListSeMethods()
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, methods)
	default:
		methodNotAllowed(w)
	}
}

// /api/semethods/{id}, /api/semethods/{id}/claims, /api/semethods/{id}/claims/{index}
func (s *Server) handleSeMethodSubpath(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/semethods/")
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch {
	case len(parts) == 1:
		s.handleSeMethodByID(w, r, id)
	case len(parts) == 2 && parts[1] == "claims":
		s.handleClaims(w, r, id)
	case len(parts) == 3 && parts[1] == "claims":
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, "claim index must be an integer")
			return
		}
		s.handleClaimByIndex(w, r, id, index)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleSeMethodByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		method, err := s.app.GetSeMethod(id)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, method)
	case http.MethodPut:
		var req seMethodRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		method, err := s.app.RenameSeMethod(id, req.Name)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, method)
	case http.MethodDelete:
		if err := s.app.DeleteSeMethod(id); err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request, methodID string) {
	switch r.Method {
	case http.MethodPost:
		var req claimRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		method, err := s.app.AddClaim(methodID, req.Name)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, method)
	case http.MethodGet:
		claims, err := s.app.GetClaims(methodID)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, claims)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleClaimByIndex(w http.ResponseWriter, r *http.Request, methodID string, index int) {
	switch r.Method {
	case http.MethodGet:
		claim, err := s.app.GetClaim(methodID, index)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, claim)
	case http.MethodPut:
		var req claimRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		method, err := s.app.UpdateClaim(methodID, index, req.Name)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, method)
	case http.MethodDelete:
		method, err := s.app.DeleteClaim(methodID, index)
		if err != nil {
			s.appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, method)
	default:
		methodNotAllowed(w)
	}
}
