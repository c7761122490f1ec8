package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio/api/internal/media"
	"portfolio/api/internal/search"
	"portfolio/api/internal/store"
	"portfolio/api/internal/util"
)

// Inline data URLs for post images travel in JSON bodies.
const maxJSONBody = 16 << 20

type HTTPServer struct {
	service        *Service
	corsOrigin     string
	requestTimeout time.Duration
}

func NewHTTPServer(service *Service, corsOrigin string, requestTimeout time.Duration) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin, requestTimeout: requestTimeout}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/admin/login" {
		var body struct {
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		ok := s.service.AdminLogin(body.Password)
		status := "error"
		if ok {
			status = "success"
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": status, "authenticated": ok})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/chat" {
		var body struct {
			Prompt  string `json:"prompt"`
			Message string `json:"message"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		prompt := body.Prompt
		if strings.TrimSpace(prompt) == "" {
			prompt = body.Message
		}
		reply, err := s.service.Chat(r.Context(), prompt)
		if err != nil {
			status, code, message, details := mapError(r.Context(), err)
			response := map[string]any{"code": code, "error": message}
			if details != nil {
				response["details"] = details
			}
			if status == http.StatusServiceUnavailable {
				response["response"] = "Sorry, the assistant is unavailable right now. Please try again later."
			}
			writeJSON(w, status, response)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"response": reply})
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		return
	}

	switch parts[1] {
	case "posts":
		s.handlePosts(w, r, parts[2:])
	case "profile":
		s.handleProfile(w, r, parts[2:])
	case "journey":
		s.handleJourney(w, r, parts[2:])
	case "documents":
		s.handleDocuments(w, r, parts[2:])
	case "follow":
		s.handleFollow(w, r, parts[2:])
	case "contact":
		s.handleContact(w, r, parts[2:])
	case "admin":
		if len(parts) >= 3 && parts[2] == "blocks" {
			s.handleBlocks(w, r, parts[3:])
			return
		}
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	}
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ready := true
	checks := map[string]any{}
	for name, ping := range map[string]func(context.Context) error{
		"database":   s.service.Ping,
		"moderation": s.service.PingModeration,
	} {
		if err := ping(ctx); err != nil {
			ready = false
			checks[name] = map[string]any{"status": "error", "error": err.Error()}
			continue
		}
		checks[name] = map[string]any{"status": "ok"}
	}

	status, statusCode := "ready", http.StatusOK
	if !ready {
		status, statusCode = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]any{
		"ok":     ready,
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handlePosts(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			posts, err := s.service.ListPosts(r.Context())
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]postResponse, 0, len(posts))
			for _, post := range posts {
				items = append(items, toPostResponse(post))
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var body postBody
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			post, err := s.service.CreatePost(r.Context(), adminSecret(r), PostInput{
				Title:       deref(body.Title),
				Category:    deref(body.Category),
				Description: deref(body.Description),
				ImageURL:    deref(body.image()),
			})
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toPostResponse(post))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if parts[0] == "search" && len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))
		resp, err := s.service.SearchPosts(r.Context(), search.Query{
			Text:     query.Get("q"),
			Category: query.Get("category"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	postID, ok := parseID(w, parts[0])
	if !ok {
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			post, err := s.service.GetPost(r.Context(), postID)
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toPostResponse(post))
		case http.MethodPut, http.MethodPatch:
			var body postBody
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			post, err := s.service.UpdatePost(r.Context(), adminSecret(r), postID, PostUpdate{
				Title:       body.Title,
				Category:    body.Category,
				Description: body.Description,
				ImageURL:    body.image(),
			})
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toPostResponse(post))
		case http.MethodDelete:
			if err := s.service.DeletePost(r.Context(), adminSecret(r), postID); err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "like" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var body struct {
			User string `json:"user"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		likes, err := s.service.LikePost(r.Context(), postID, body.User)
		if err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": postID, "likes": likes})
		return
	}

	if len(parts) == 2 && parts[1] == "comments" {
		switch r.Method {
		case http.MethodGet:
			comments, err := s.service.ListComments(r.Context(), postID)
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]commentResponse, 0, len(comments))
			for _, comment := range comments {
				items = append(items, toCommentResponse(comment))
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var body struct {
				Author  string `json:"author"`
				Text    string `json:"text"`
				Content string `json:"content"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			text := body.Text
			if strings.TrimSpace(text) == "" {
				text = body.Content
			}
			comment, err := s.service.AddComment(r.Context(), postID, body.Author, text)
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toCommentResponse(comment))
		default:
			methodNotAllowed(w)
		}
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

func (s *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) != 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		profile, err := s.service.GetProfile(r.Context())
		if err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	case http.MethodPut, http.MethodPost:
		var body struct {
			Name     string `json:"name"`
			Bio      string `json:"bio"`
			SubBio   string `json:"subBio"`
			ImageURL string `json:"imageUrl"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		profile, err := s.service.SaveProfile(r.Context(), adminSecret(r), ProfileInput{
			Name:     body.Name,
			Bio:      body.Bio,
			SubBio:   body.SubBio,
			ImageURL: body.ImageURL,
		})
		if err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(profile))
	default:
		methodNotAllowed(w)
	}
}

func (s *HTTPServer) handleJourney(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			entries, err := s.service.ListJourney(r.Context())
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]journeyResponse, 0, len(entries))
			for _, entry := range entries {
				items = append(items, toJourneyResponse(entry))
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var body struct {
				Year        string `json:"year"`
				Title       string `json:"title"`
				Description string `json:"description"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			entry, err := s.service.CreateJourney(r.Context(), adminSecret(r), JourneyInput{
				Year:        body.Year,
				Title:       body.Title,
				Description: body.Description,
			})
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toJourneyResponse(entry))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 1 && r.Method == http.MethodDelete {
		entryID, ok := parseID(w, parts[0])
		if !ok {
			return
		}
		if err := s.service.DeleteJourney(r.Context(), adminSecret(r), entryID); err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

func (s *HTTPServer) handleDocuments(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			docs, err := s.service.ListDocuments(r.Context())
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]documentResponse, 0, len(docs))
			for _, doc := range docs {
				items = append(items, toDocumentResponse(doc))
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			s.handleDocumentUpload(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 1 && r.Method == http.MethodDelete {
		documentID, ok := parseID(w, parts[0])
		if !ok {
			return
		}
		if err := s.service.DeleteDocument(r.Context(), adminSecret(r), documentID); err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

func (s *HTTPServer) handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	// Authorize before reading the upload body.
	secret := adminSecret(r)
	if !s.service.AdminLogin(secret) {
		writeMappedError(w, r, UnauthorizedError())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMappedError(w, r, ValidationError("upload is too large", map[string]any{"maxBytes": media.MaxUploadBytes}))
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "expected multipart form", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMappedError(w, r, ValidationError("file is required", map[string]string{"file": "required"}))
		return
	}
	defer file.Close()

	doc, err := s.service.UploadDocument(r.Context(), secret, DocumentUpload{
		Title:       r.FormValue("title"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (s *HTTPServer) handleFollow(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodPost:
			var body struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			follow, err := s.service.SubmitFollow(r.Context(), body.Name, body.Email)
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toFollowResponse(follow))
		case http.MethodGet:
			follows, err := s.service.ListFollows(r.Context(), adminSecret(r))
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]followResponse, 0, len(follows))
			for _, follow := range follows {
				items = append(items, toFollowResponse(follow))
			}
			writeJSON(w, http.StatusOK, items)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 1 && r.Method == http.MethodDelete {
		followID, ok := parseID(w, parts[0])
		if !ok {
			return
		}
		if err := s.service.DeleteFollow(r.Context(), adminSecret(r), followID); err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

func (s *HTTPServer) handleContact(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodPost:
			var body struct {
				Name    string `json:"name"`
				Email   string `json:"email"`
				Message string `json:"message"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			msg, err := s.service.SubmitContact(r.Context(), body.Name, body.Email, body.Message)
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, toContactResponse(msg))
		case http.MethodGet:
			msgs, err := s.service.ListContacts(r.Context(), adminSecret(r))
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]contactResponse, 0, len(msgs))
			for _, msg := range msgs {
				items = append(items, toContactResponse(msg))
			}
			writeJSON(w, http.StatusOK, items)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 1 && r.Method == http.MethodDelete {
		contactID, ok := parseID(w, parts[0])
		if !ok {
			return
		}
		if err := s.service.DeleteContact(r.Context(), adminSecret(r), contactID); err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

func (s *HTTPServer) handleBlocks(w http.ResponseWriter, r *http.Request, parts []string) {
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			entries, err := s.service.ListBlocked(r.Context(), adminSecret(r))
			if err != nil {
				writeMappedError(w, r, err)
				return
			}
			items := make([]blockResponse, 0, len(entries))
			for _, entry := range entries {
				items = append(items, blockResponse{Name: entry.Name, BlockedAt: entry.BlockedAt})
			}
			writeJSON(w, http.StatusOK, items)
		case http.MethodPost:
			var body struct {
				Name string `json:"name"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			if err := s.service.BlockVisitor(r.Context(), adminSecret(r), body.Name); err != nil {
				writeMappedError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": strings.TrimSpace(body.Name), "blocked": true})
		default:
			methodNotAllowed(w)
		}
		return
	}

	// Names may contain slashes, so the name is taken from the escaped path.
	if r.Method == http.MethodDelete {
		name, ok := blockedNameFromPath(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_PATH", "Invalid visitor name", nil)
			return
		}
		if err := s.service.UnblockVisitor(r.Context(), adminSecret(r), name); err != nil {
			writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": strings.TrimSpace(name), "blocked": false})
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := util.RequestID(r.Header.Get("X-Request-ID"))
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		if s.requestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
			defer cancel()
		}
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by the middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Admin-Key, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := mapError(r.Context(), err)
	writeError(w, status, code, message, details)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) || errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// adminSecret reads the shared secret from the Admin-Key header, falling back
// to a bearer token.
func adminSecret(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("Admin-Key")); key != "" {
		return key
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func blockedNameFromPath(r *http.Request) (string, bool) {
	escaped := strings.TrimPrefix(r.URL.EscapedPath(), "/api/admin/blocks/")
	name, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return name, true
}

func parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return 0, false
	}
	return id, true
}

func mapError(ctx context.Context, err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "TRANSIENT_ERROR", "Request timed out", nil
	}
	log.Printf("app: request %s: unexpected error: %v", RequestIDFromContext(ctx), err)
	return http.StatusServiceUnavailable, "TRANSIENT_ERROR", "Temporary failure, please retry", nil
}
