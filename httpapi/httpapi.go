// Package httpapi is the HTTP front end over the compilation/parse engine:
// submit a grammar, get back generated Go source for its nonterminals, run
// a parse against a token list, and read back a logged session.
//
// Grounded on the teacher's server/server.go (route table as a doc comment
// above the type, one handler method per route) and server/api/api.go
// (a chi.Router, JSON request/response helpers, a Secret for JWT signing).
// Auth follows server/token.go's bearer-JWT AuthHandler shape, simplified
// to a single static API identity instead of a user database, since this
// engine has no concept of accounts — only of who is allowed to submit
// grammars.
package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/holloway-dev/pathgram/internal/cache"
	"github.com/holloway-dev/pathgram/internal/config"
	"github.com/holloway-dev/pathgram/internal/driver"
	"github.com/holloway-dev/pathgram/internal/emitter"
	"github.com/holloway-dev/pathgram/internal/lexer"
	"github.com/holloway-dev/pathgram/internal/metagrammar"
	"github.com/holloway-dev/pathgram/internal/ruletree"
	"github.com/holloway-dev/pathgram/internal/sessionlog"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

// API holds the dependencies every handler needs, mirroring the teacher's
// server/api.API struct.
type API struct {
	// JWTSecret signs the bearer tokens AuthMiddleware issues and verifies.
	JWTSecret []byte

	// APISecretHash is the bcrypt hash of the one shared secret allowed to
	// mint a token — there is no user database, just one writer identity.
	APISecretHash []byte

	Sessions *sessionlog.Store

	// CacheDir, if non-empty, is where internal/cache stores the emitted Go
	// source for a grammar compilation keyed by a hash of its request body
	// and active conditions — a client that resubmits the same grammar gets
	// its generated source back without the emitter running again. Left
	// empty, handleCompileGrammar always emits fresh.
	CacheDir string

	// Session carries the operator-configured defaults from an
	// internal/config.Session: conditions to assume when a compileRequest
	// doesn't name any, and the names of productions the grammar author has
	// declared non-left-recursive independently of what a given request's
	// wireProduction claims (config wins — it is the operator's maintained
	// ground truth, a client resubmitting a stale LeftRecursive: true
	// shouldn't make the Driver pay for the fixpoint loop needlessly).
	Session config.Session

	mu       sync.Mutex
	grammars map[string]compiledGrammar
}

type compiledGrammar struct {
	Productions []ruletree.Production
	Conditions  symbol.Conditions
}

// NewAPI constructs an API, hashing rawAPISecret with bcrypt once at
// startup rather than storing it in the clear, per server/config.go's
// handling of MinSecretSize/MaxSecretSize secrets.
func NewAPI(jwtSecret, rawAPISecret string, sessions *sessionlog.Store) (*API, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawAPISecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("httpapi: hash api secret: %w", err)
	}
	return &API{
		JWTSecret:     []byte(jwtSecret),
		APISecretHash: hash,
		Sessions:      sessions,
		grammars:      make(map[string]compiledGrammar),
	}, nil
}

// Router builds the chi.Router exposing:
//
//	POST /v1/token                  - exchange the shared API secret for a bearer JWT
//	POST /v1/grammars               - submit productions (JSON), compile, get back generated Go
//	POST /v1/grammars/{id}/parse    - run the compiled grammar against submitted token kinds
//	GET  /v1/sessions/{id}          - read back a logged driver.SessionRecord
//	POST /v1/meta/validate         - check a grammar-meta-language document is syntactically valid
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/token", a.handleToken)
	r.Post("/v1/meta/validate", a.handleValidateMeta)

	r.Group(func(r chi.Router) {
		r.Use(a.requireBearer)
		r.Post("/v1/grammars", a.handleCompileGrammar)
		r.Post("/v1/grammars/{id}/parse", a.handleParse)
		r.Get("/v1/sessions/{id}", a.handleGetSession)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- auth ---

type tokenRequest struct {
	Secret string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := bcrypt.CompareHashAndPassword(a.APISecretHash, []byte(req.Secret)); err != nil {
		time.Sleep(500 * time.Millisecond)
		writeError(w, http.StatusUnauthorized, "incorrect secret")
		return
	}

	claims := jwt.MapClaims{
		"iss": "pathgram",
		"sub": "api-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := tok.SignedString(a.JWTSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not sign token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: signed})
}

func (a *API) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
			writeError(w, http.StatusUnauthorized, "authorization header not in Bearer format")
			return
		}
		raw := authHeader[len(prefix):]

		_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return a.JWTSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("pathgram"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// --- grammar compilation ---

// wireNode is the JSON shape of an internal/ruletree.Node. Only terminal
// leaf symbols are expressible this way (no cross-production nonterminal
// references) — a grammar that needs those is authored in the
// meta-language text and compiled through internal/metagrammar plus a
// hand-assembled []ruletree.Production instead, since ruletree.Node.Sym
// needs a concrete symbol.Symbol at construction time rather than a name
// resolved later. See DESIGN.md.
type wireNode struct {
	Kind     string     `json:"kind"`
	Symbol   string     `json:"symbol,omitempty"`
	Cond     string     `json:"cond,omitempty"`
	Label    string     `json:"label,omitempty"`
	Children []wireNode `json:"children,omitempty"`
}

type wireProduction struct {
	Name          string   `json:"name"`
	Template      wireNode `json:"template"`
	Ambiguous     bool     `json:"ambiguous"`
	LeftRecursive bool     `json:"left_recursive"`
	IsStart       bool     `json:"is_start"`
}

type compileRequest struct {
	Conditions  []string         `json:"conditions"`
	Productions []wireProduction `json:"productions"`
}

type compileResponse struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
}

// conditionCaser folds condition names to a canonical case before they're
// used as map keys anywhere in the engine, so a grammar submitted with
// "Lexical" as an active condition still satisfies a Guard written against
// "lexical". Unicode-aware folding (rather than strings.ToLower) matters
// here because condition names are free-form client input, not restricted
// to ASCII identifiers the way token-kind names are.
var conditionCaser = cases.Fold()

func foldCondition(name string) symbol.Condition {
	return symbol.Condition(conditionCaser.String(name))
}

func toNode(n wireNode) ruletree.Node {
	children := make([]ruletree.Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = toNode(c)
	}

	switch n.Kind {
	case "symbol":
		return ruletree.Symbol(symbol.Terminal(symbol.Kind(n.Symbol)))
	case "optional":
		return ruletree.Optional(children...)
	case "iteration":
		return ruletree.Iteration(children...)
	case "selection":
		return ruletree.Selection(n.Label, children...)
	case "guard":
		var body ruletree.Node
		if len(children) > 0 {
			body = children[0]
		}
		return ruletree.Guard(foldCondition(n.Cond), body)
	default:
		return ruletree.Group(children...)
	}
}

func (a *API) handleCompileGrammar(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var req compileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.Productions) == 0 {
		writeError(w, http.StatusBadRequest, "at least one production is required")
		return
	}

	if len(req.Conditions) == 0 {
		req.Conditions = a.Session.Conditions
	}
	foldedConditions := make([]string, len(req.Conditions))
	for i, c := range req.Conditions {
		foldedConditions[i] = string(foldCondition(c))
	}
	conds := symbol.NewConditions(foldedConditions...)

	nonLeftRecursive := map[string]bool{}
	for _, name := range a.Session.NonLeftRecursive {
		nonLeftRecursive[name] = true
	}

	productions := make([]ruletree.Production, len(req.Productions))
	for i, wp := range req.Productions {
		leftRecursive := wp.LeftRecursive
		if nonLeftRecursive[wp.Name] {
			leftRecursive = false
		}
		productions[i] = ruletree.Production{
			Name:          wp.Name,
			Template:      toNode(wp.Template),
			Ambiguous:     wp.Ambiguous || a.Session.Ambiguous,
			LeftRecursive: leftRecursive,
			IsStart:       wp.IsStart,
		}
	}

	cacheKey := cache.Key(string(body), foldedConditions)
	source, hit, err := a.loadCachedSource(cacheKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read compilation cache")
		return
	}
	if !hit {
		source = emitter.EmitFile("generated", productions, conds)
		if err := a.storeCachedSource(cacheKey, string(body), source); err != nil {
			writeError(w, http.StatusInternalServerError, "could not write compilation cache")
			return
		}
	}

	h := sha256.Sum256([]byte(source))
	id := hex.EncodeToString(h[:])[:16]

	a.mu.Lock()
	a.grammars[id] = compiledGrammar{Productions: productions, Conditions: conds}
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, compileResponse{ID: id, Source: source})
}

// loadCachedSource checks internal/cache for a prior compilation of the same
// request body and condition set. A zero-value CacheDir disables caching
// outright rather than treating "." as a cache directory.
func (a *API) loadCachedSource(key string) (string, bool, error) {
	if a.CacheDir == "" {
		return "", false, nil
	}
	return cache.Load(a.CacheDir, key)
}

func (a *API) storeCachedSource(key, body, source string) error {
	if a.CacheDir == "" {
		return nil
	}
	return cache.Store(a.CacheDir, key, body, source)
}

// --- parsing ---

type parseRequest struct {
	Tokens []string `json:"tokens"`
}

type parseResponse struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

func (a *API) handleParse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	g, ok := a.grammars[id]
	a.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown grammar id")
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	def := lexer.NewDefinition()
	if err := def.Skip(`\s+`); err != nil {
		writeError(w, http.StatusInternalServerError, "could not register token separator")
		return
	}
	for _, kind := range req.Tokens {
		if err := def.Add(symbol.Kind(kind), regexpQuote(kind)); err != nil {
			writeError(w, http.StatusInternalServerError, "could not register token kind")
			return
		}
	}
	stream, err := def.Lex(joinTokens(req.Tokens), g.Conditions)
	if err != nil {
		writeJSON(w, http.StatusOK, parseResponse{Accepted: false, Error: err.Error()})
		return
	}

	var top symbol.Nonterminal
	nts := make([]symbol.Nonterminal, 0, len(g.Productions))
	for _, p := range g.Productions {
		nt := ruletree.AsNonterminal(p)
		nts = append(nts, nt)
		if p.IsStart {
			top = nt
		}
	}
	if top == nil {
		writeError(w, http.StatusUnprocessableEntity, "grammar has no start production")
		return
	}

	d := driver.New(stream, g.Conditions, a.Sessions)
	d.Register(nts...)

	_, parseErr := d.Parse(top)
	if parseErr != nil {
		writeJSON(w, http.StatusOK, parseResponse{Accepted: false, Error: parseErr.Error()})
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Accepted: true})
}

func joinTokens(tokens []string) string {
	s := ""
	for i, t := range tokens {
		if i > 0 {
			s += " "
		}
		s += t
	}
	return s
}

// regexpQuote builds a pattern matching the literal token-kind name, so a
// client can submit the parse body as a plain space-separated sequence of
// its own token-kind names without needing a real lexical grammar.
func regexpQuote(kind string) string {
	out := ""
	for _, r := range kind {
		switch r {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			out += "\\" + string(r)
		default:
			out += string(r)
		}
	}
	return out
}

// --- sessions ---

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id is not a valid UUID")
		return
	}

	rec, err := a.Sessions.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// --- meta-grammar validation ---

type validateRequest struct {
	Source string `json:"source"`
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (a *API) handleValidateMeta(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	_, err := metagrammar.Parse(req.Source, a.Sessions)
	if err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}
