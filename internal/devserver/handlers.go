package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"path"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/devserver/auth"
	"github.com/go-chi/chi/v5"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 32 << 20

	// googleDevPrefix marks the id tokens the dev server accepts in place of
	// real Google-signed ones.
	googleDevPrefix = "dev:"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return errors.Join(common.ErrValidation, err)
	}
	return nil
}

// issue mints a new access token and a new refresh token for userID.
func (s *Server) issue(w http.ResponseWriter, r *http.Request, userID string, status int) {
	access, err := auth.GenerateToken(userID, s.secret, s.cfg.AccessTokenTTL)
	if err != nil {
		s.logger.Error(r.Context(), "sign access token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	refresh, err := s.accounts.issueRefresh(userID, s.cfg.RefreshTokenTTL)
	if err != nil {
		s.logger.Error(r.Context(), "issue refresh token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, models.TokenPair{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if _, err := mail.ParseAddress(in.Email); err != nil || in.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := s.accounts.register(in.Email, in.Password, in.DisplayName)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", u.ID)
	s.issue(w, r, u.ID, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	u, err := s.accounts.authenticate(in.Email, in.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	s.issue(w, r, u.ID, http.StatusOK)
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var in models.GoogleLoginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	email, ok := strings.CutPrefix(in.IDToken, googleDevPrefix)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid id token")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid id token")
		return
	}

	u := s.accounts.federated(email)
	s.issue(w, r, u.ID, http.StatusOK)
}

// handleRefresh rotates the refresh token: the presented one is consumed
// whether or not a new pair can be issued.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var in models.RefreshRequest
	if err := decodeJSON(r, &in); err != nil || in.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	userID, err := s.accounts.consumeRefresh(in.RefreshToken)
	if err != nil {
		s.logger.Info(r.Context(), "refresh rejected", "error", err)
		writeDomainError(w, err)
		return
	}
	s.issue(w, r, userID, http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in models.RefreshRequest
	if err := decodeJSON(r, &in); err == nil && in.RefreshToken != "" {
		s.accounts.revoke(in.RefreshToken)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var in models.CreateDocumentRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	doc, err := s.docs.create(userFrom(r.Context()), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.get(userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs := s.docs.search(userFrom(r.Context()), models.SearchQuery{
		Query:    q.Get("q"),
		TagKey:   q.Get("tagKey"),
		TagValue: q.Get("tagValue"),
	})
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleExpiringSoon(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.docs.expiringSoon(userFrom(r.Context())))
}

// readUpload returns the "file" part of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request) (name, mime string, content []byte, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, errors.Join(common.ErrValidation, err)
	}
	defer f.Close()

	content, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, errors.Join(common.ErrValidation, err)
	}

	mime = hdr.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return path.Base(hdr.Filename), mime, content, nil
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	name, mime, content, err := readUpload(w, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	v, err := s.docs.addVersion(userFrom(r.Context()), chi.URLParam(r, "id"), name, mime, content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.UploadedFile{Path: v.FilePath, Mime: mime, Size: int64(len(content))})
}

func (s *Server) handleAddVersion(w http.ResponseWriter, r *http.Request) {
	name, mime, content, err := readUpload(w, r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	v, err := s.docs.addVersion(userFrom(r.Context()), chi.URLParam(r, "id"), name, mime, content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.docs.versions(userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version number")
		return
	}

	res, err := s.docs.revert(userFrom(r.Context()), chi.URLParam(r, "id"), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	mime, content, err := s.docs.file(userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	_, _ = w.Write(content)
}
