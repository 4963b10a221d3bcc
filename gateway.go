package soulauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const stateCookieName = "oauthstate"

// FederatedProvider is one configured OAuth provider. Implementations
// live in the oauth2 package; the Gateway only needs the redirect URL
// for the consent screen and a way to turn the callback code into a
// normalized profile.
type FederatedProvider interface {
	Kind() Provider
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}

// Gateway is the request-handling layer: registration, local login,
// the federated start/callback pairs, and the cross-window handoff.
// Providers are injected explicitly; there is no process-wide strategy
// registry.
type Gateway struct {
	Logger *zap.Logger

	users          UserStore
	hasher         *Hasher
	issuer         *Issuer
	resolver       *Resolver
	providers      map[Provider]FederatedProvider
	states         *StateCodec
	frontendOrigin string
}

// NewGateway wires the gateway from its collaborators. frontendOrigin
// is the exact origin the handoff messages are addressed to.
func NewGateway(users UserStore, issuer *Issuer, stateSecret []byte, frontendOrigin string, providers ...FederatedProvider) *Gateway {
	g := &Gateway{
		users:          users,
		hasher:         NewHasher(),
		issuer:         issuer,
		resolver:       &Resolver{Users: users},
		providers:      make(map[Provider]FederatedProvider),
		states:         &StateCodec{Secret: stateSecret},
		frontendOrigin: frontendOrigin,
	}
	for _, p := range providers {
		g.providers[p.Kind()] = p
	}
	return g
}

func (g *Gateway) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// Handler builds the route table.
func (g *Gateway) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", g.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/register", g.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", g.handleLogin).Methods(http.MethodPost)

	authed := &Middleware{VerifyToken: g.issuer.Verify}
	r.Handle("/api/me", authed.RequireUser(http.HandlerFunc(g.handleMe))).Methods(http.MethodGet)

	r.HandleFunc("/auth/failure", g.handleAuthFailure).Methods(http.MethodGet)
	for kind, p := range g.providers {
		r.HandleFunc("/auth/"+string(kind), g.handleAuthStart(p)).Methods(http.MethodGet)
		r.HandleFunc("/auth/"+string(kind)+"/callback", g.handleAuthCallback(p)).Methods(http.MethodGet)
	}
	return r
}

func (g *Gateway) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Soul auth server is running")
}

// -----------------------------------------------------------------------------
// Local flows
// -----------------------------------------------------------------------------

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister always creates a fresh user with a password hash. It
// deliberately does not link into an existing federated-only account
// with the same email; the unique index turns that case into a plain
// duplicate-email failure.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, NewAuthError(ErrCodeMissingField, "Please enter all fields", ""))
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		g.writeError(w, NewAuthError(ErrCodeMissingField, "Please enter all fields", missingField(&req)))
		return
	}

	hash, err := g.hasher.Hash(req.Password)
	if err != nil {
		g.writeError(w, InternalError(err))
		return
	}
	user := &User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := g.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			g.writeError(w, NewAuthError(ErrCodeEmailExists, "Email already exists", "email"))
		} else {
			g.writeError(w, InternalError(err))
		}
		return
	}

	g.logger().Info("user registered", zap.String("user_id", user.ID))
	g.writeJSON(w, http.StatusCreated, map[string]any{"message": "Registered successfully"})
}

func missingField(req *registerRequest) string {
	switch {
	case req.Name == "":
		return "name"
	case req.Email == "":
		return "email"
	default:
		return "password"
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		g.writeError(w, NewAuthError(ErrCodeMissingField, "Please enter all fields", ""))
		return
	}

	user, err := g.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.writeError(w, NewAuthError(ErrCodeInvalidCreds, "User not found", "email"))
		} else {
			g.writeError(w, InternalError(err))
		}
		return
	}
	if !user.HasPassword() {
		// Federated-only account; the mismatch is in the method, not
		// the password.
		g.writeError(w, NewAuthError(ErrCodeWrongMethod,
			"Please login using the method you originally signed up with.", ""))
		return
	}
	if !g.hasher.Verify(req.Password, user.PasswordHash) {
		g.writeError(w, NewAuthError(ErrCodeInvalidCreds, "Invalid password", "password"))
		return
	}

	token, err := g.issuer.Issue(user.ID)
	if err != nil {
		g.writeError(w, InternalError(err))
		return
	}
	g.logger().Info("local login", zap.String("user_id", user.ID))
	g.writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  HandoffUser{Name: user.Name, Email: user.Email},
	})
}

func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := g.users.GetUserByID(r.Context(), UserID(r))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.writeError(w, NewAuthError(ErrCodeInvalidCreds, "User not found", ""))
		} else {
			g.writeError(w, InternalError(err))
		}
		return
	}
	linked := map[string]bool{}
	for _, p := range Providers() {
		linked[string(p)] = user.ProviderID(p) != ""
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"user":        HandoffUser{Name: user.Name, Email: user.Email},
		"providers":   linked,
		"hasPassword": user.HasPassword(),
	})
}

// -----------------------------------------------------------------------------
// Federated flows
// -----------------------------------------------------------------------------

func (g *Gateway) handleAuthStart(p FederatedProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := g.states.Issue()
		if err != nil {
			g.writeError(w, InternalError(err))
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/auth",
			MaxAge:   int(DefaultStateMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
	}
}

// handleAuthCallback finishes the handshake. Every failure lands on
// the shared failure handler so the popup always closes deterministically
// instead of stranding the user on an error page.
func (g *Gateway) handleAuthCallback(p FederatedProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearState := &http.Cookie{Name: stateCookieName, Path: "/auth", MaxAge: -1}

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			g.logger().Warn("provider denied callback",
				zap.String("provider", string(p.Kind())), zap.String("error", errParam))
			http.SetCookie(w, clearState)
			g.redirectToFailure(w, r, "denied")
			return
		}

		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value != r.URL.Query().Get("state") || g.states.Verify(cookie.Value) != nil {
			http.SetCookie(w, clearState)
			g.redirectToFailure(w, r, "state")
			return
		}
		http.SetCookie(w, clearState)

		code := r.URL.Query().Get("code")
		if code == "" {
			g.redirectToFailure(w, r, "state")
			return
		}

		profile, err := p.FetchProfile(r.Context(), code)
		if err != nil {
			g.logger().Warn("profile fetch failed",
				zap.String("provider", string(p.Kind())), zap.Error(err))
			g.redirectToFailure(w, r, "denied")
			return
		}

		user, err := g.resolver.Resolve(r.Context(), p.Kind(), profile)
		if err != nil {
			g.logger().Warn("identity resolution failed",
				zap.String("provider", string(p.Kind())), zap.Error(err))
			g.redirectToFailure(w, r, failureCode(err))
			return
		}

		token, err := g.issuer.Issue(user.ID)
		if err != nil {
			g.logger().Error("token issuance failed", zap.Error(err))
			g.redirectToFailure(w, r, "denied")
			return
		}

		g.logger().Info("federated login",
			zap.String("provider", string(p.Kind())), zap.String("user_id", user.ID))
		if err := RenderHandoff(w, g.frontendOrigin, SuccessHandoff(token, user)); err != nil {
			g.logger().Error("handoff render failed", zap.Error(err))
		}
	}
}

func (g *Gateway) redirectToFailure(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/auth/failure?code="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}

// failureCode reduces resolution errors to the coarse codes the
// failure page knows. Internal detail never reaches the popup.
func failureCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingEmail):
		return "missing_email"
	case errors.Is(err, ErrProviderConflict):
		return "conflict"
	default:
		return "denied"
	}
}

var failureMessages = map[string]string{
	"missing_email": "Your provider did not share an email address. Please grant email access and try again.",
	"conflict":      "This account is already linked to a different identity on that provider.",
}

func (g *Gateway) handleAuthFailure(w http.ResponseWriter, r *http.Request) {
	message, ok := failureMessages[r.URL.Query().Get("code")]
	if !ok {
		message = "Authentication failed. Please try again."
	}
	if err := RenderHandoff(w, g.frontendOrigin, FailureHandoff(message)); err != nil {
		g.logger().Error("handoff render failed", zap.Error(err))
	}
}

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger().Error("response encode failed", zap.Error(err))
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, err *AuthError) {
	if err.HTTPStatus >= http.StatusInternalServerError {
		g.logger().Error("request failed", zap.Error(err))
	}
	g.writeJSON(w, err.HTTPStatus, err)
}
