package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	domain "authsvc/backend/internal/domain/auth"
	authusecase "authsvc/backend/internal/usecase/auth"
	userusecase "authsvc/backend/internal/usecase/user"
)

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/api/public/ping", http.HandlerFunc(s.handlePublicPing))
	s.router.Handle("/api/auth/register", http.HandlerFunc(s.handleRegister))
	s.router.Handle("/api/auth/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle("/api/auth/refresh", http.HandlerFunc(s.handleRefresh))

	// Protected routes with the role each one requires.
	protected := []struct {
		path    string
		role    domain.Role
		handler http.HandlerFunc
	}{
		{"/api/users/profile", domain.RoleUser, s.handleProfile},
		{"/api/users/admin", domain.RoleAdmin, s.handleAdminUsers},
	}
	for _, route := range protected {
		s.router.Handle(route.path, s.requireRole(route.role, route.handler))
	}
}

type userInfo struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type authenticationResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int64     `json:"expiresIn"`
	UserInfo     *userInfo `json:"userInfo,omitempty"`
}

func newAuthenticationResponse(result *authusecase.Result) authenticationResponse {
	resp := authenticationResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    result.TokenType,
		ExpiresIn:    result.ExpiresIn,
	}
	if result.User != nil {
		resp.UserInfo = &userInfo{
			Username: result.User.Username,
			Email:    result.User.Email,
			Roles:    result.User.RoleNames(),
		}
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePublicPing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, http.MethodPost)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}

	result, err := s.authService.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthenticationResponse(result))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, http.MethodPost)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}

	result, err := s.authService.Login(r.Context(), domain.Credentials{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		// Unknown user and wrong password produce the same response.
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthenticationResponse(result))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, http.MethodPost)
		return
	}

	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		var payload struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, r, http.StatusBadRequest, "Bad Request", "refresh token required")
			} else {
				writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
			}
			return
		}
		token = strings.TrimSpace(payload.RefreshToken)
	}

	if token == "" {
		writeError(w, r, http.StatusBadRequest, "Bad Request", "refresh token required")
		return
	}

	result, err := s.authService.Refresh(r.Context(), token)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthenticationResponse(result))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := s.userService.Profile(r.Context(), user.Username)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userInfo{
			Username: profile.Username,
			Email:    profile.Email,
			Roles:    profile.RoleNames(),
		})
	case http.MethodPut, http.MethodPatch:
		var payload struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, r, http.StatusBadRequest, "Bad Request", "email is required")
			} else {
				writeError(w, r, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
			}
			return
		}

		updated, err := s.userService.UpdateEmail(r.Context(), user.ID, payload.Email)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userInfo{
			Username: updated.Username,
			Email:    updated.Email,
			Roles:    updated.RoleNames(),
		})
	default:
		writeMethodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch)
	}
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	users, err := s.userService.List(r.Context(), userusecase.Filter{
		Role: r.URL.Query().Get("role"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	items := make([]userInfo, 0, len(users))
	for _, u := range users {
		items = append(items, userInfo{
			Username: u.Username,
			Email:    u.Email,
			Roles:    u.RoleNames(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": items})
}
