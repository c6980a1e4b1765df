package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"speed/pkg/auth"
	"speed/pkg/domain"
	"speed/pkg/events"
	"speed/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	SessionStrategy string // "redis" (default) or "jwt"
	SessionTTL      time.Duration
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	Store           store.Store
	Sessions        store.SessionStore
	Events          events.Publisher
}

// App is the core application service wiring storage, sessions, and events.
type App struct {
	store    store.Store
	sessions store.SessionStore
	events   events.Publisher
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch strings.ToLower(strings.TrimSpace(cfg.SessionStrategy)) {
		case "jwt":
			jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
			sessionStore = jwtStore
		default:
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, fmt.Errorf("redisAddr is required for redis session strategy")
			}
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		events:   cfg.Events,
	}, nil
}

// ArticleInput is a client-supplied article submission. Any status the client
// sends is discarded: submissions always enter the moderation queue.
type ArticleInput struct {
	Title       string
	Authors     string
	Journal     string
	Volume      int
	Pages       string
	PubYear     int
	DOI         string
	SubmittedAt time.Time
}

// SubmitArticle stores a new submission with status forced to pending_moderation.
func (a *App) SubmitArticle(in ArticleInput) (domain.Article, error) {
	if strings.TrimSpace(in.Title) == "" || in.PubYear == 0 {
		return domain.Article{}, ErrMissingArticleFields
	}
	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	article := domain.Article{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Authors:     in.Authors,
		Journal:     in.Journal,
		Volume:      in.Volume,
		Pages:       in.Pages,
		PubYear:     in.PubYear,
		DOI:         strings.TrimSpace(in.DOI),
		Status:      domain.StatusPendingModeration,
		SubmittedAt: submittedAt,
		Ratings:     []float64{},
	}
	created, err := a.store.CreateArticle(article)
	if err != nil {
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	a.publish(events.Event{Type: "article.submitted", ArticleID: created.ID, Status: string(created.Status)})
	return created, nil
}

// ListArticles returns every article.
func (a *App) ListArticles() ([]domain.Article, error) {
	return a.store.ListArticles()
}

// GetArticle returns one article by ID.
func (a *App) GetArticle(id string) (domain.Article, error) {
	article, ok, err := a.store.GetArticle(id)
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article: %w", err)
	}
	if !ok {
		return domain.Article{}, ErrArticleNotFound
	}
	return article, nil
}

// ListArticlesByStatus filters articles by exact status.
func (a *App) ListArticlesByStatus(status string) ([]domain.Article, error) {
	parsed, ok := domain.ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	return a.store.ListArticlesByStatus(parsed)
}

// ListArticlesByStatusOrdered filters by status and sorts by submission time.
func (a *App) ListArticlesByStatusOrdered(status, sortOrder string) ([]domain.Article, error) {
	parsed, ok := domain.ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	order, ok := domain.ParseSortOrder(sortOrder)
	if !ok {
		return nil, ErrInvalidSort
	}
	return a.store.ListArticlesByStatusOrdered(parsed, order)
}

// FindDuplicates looks for already-reviewed articles a candidate submission
// may duplicate, by fuzzy title match and optional exact DOI.
func (a *App) FindDuplicates(title, doi string) ([]domain.Article, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}
	return a.store.FindDuplicateArticles(TitlePattern(title), strings.TrimSpace(doi))
}

// ArticleUpdateRequest is a partial update; string enums are validated here
// before being handed to the store.
type ArticleUpdateRequest struct {
	Title      *string
	Authors    *string
	Journal    *string
	Volume     *int
	Pages      *string
	PubYear    *int
	DOI        *string
	Status     *string
	SeMethodID *string
	Claim      *string
	Evidence   *string
}

// UpdateArticle merges the supplied fields into the article. Status changes
// are validated against the workflow; a transition to approved additionally
// requires an SE method, a claim belonging to it, and an evidence category,
// all stored atomically with the status in a single update.
func (a *App) UpdateArticle(id string, req ArticleUpdateRequest) (domain.Article, error) {
	current, ok, err := a.store.GetArticle(id)
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article: %w", err)
	}
	if !ok {
		return domain.Article{}, ErrArticleNotFound
	}

	upd := store.ArticleUpdate{
		Title:      req.Title,
		Authors:    req.Authors,
		Journal:    req.Journal,
		Volume:     req.Volume,
		Pages:      req.Pages,
		PubYear:    req.PubYear,
		DOI:        req.DOI,
		SeMethodID: req.SeMethodID,
		Claim:      req.Claim,
	}
	if req.Evidence != nil {
		evidence, ok := domain.ParseEvidence(*req.Evidence)
		if !ok {
			return domain.Article{}, ErrInvalidEvidence
		}
		upd.Evidence = &evidence
	}

	statusChanged := false
	if req.Status != nil {
		status, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return domain.Article{}, ErrInvalidStatus
		}
		if !CanTransition(current.Status, status) {
			return domain.Article{}, ErrIllegalTransition
		}
		statusChanged = status != current.Status
		upd.Status = &status

		if status == domain.StatusApproved {
			if err := a.validateAnalysis(upd); err != nil {
				return domain.Article{}, err
			}
		}
	}

	updated, ok, err := a.store.UpdateArticle(id, upd)
	if err != nil {
		return domain.Article{}, fmt.Errorf("update article: %w", err)
	}
	if !ok {
		return domain.Article{}, ErrArticleNotFound
	}
	if statusChanged {
		a.publish(events.Event{Type: "article.status_changed", ArticleID: updated.ID, Status: string(updated.Status)})
	}
	return updated, nil
}

// validateAnalysis checks the method/claim/evidence triple attached to an approval.
func (a *App) validateAnalysis(upd store.ArticleUpdate) error {
	if upd.SeMethodID == nil || *upd.SeMethodID == "" ||
		upd.Claim == nil || *upd.Claim == "" ||
		upd.Evidence == nil {
		return ErrMissingAnalysis
	}
	method, ok, err := a.store.GetSeMethod(*upd.SeMethodID)
	if err != nil {
		return fmt.Errorf("get se method: %w", err)
	}
	if !ok {
		return ErrMethodNotFound
	}
	if _, ok := method.ClaimByName(*upd.Claim); !ok {
		return ErrUnknownClaim
	}
	return nil
}

// DeleteArticle hard-deletes an article (admin duplicate cleanup).
func (a *App) DeleteArticle(id string) error {
	ok, err := a.store.DeleteArticle(id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if !ok {
		return ErrArticleNotFound
	}
	return nil
}

// RateArticle appends a rating in [0,5]. Out-of-range values are rejected
// rather than silently dropped.
func (a *App) RateArticle(id string, rating float64) (domain.Article, error) {
	if rating < 0 || rating > 5 {
		return domain.Article{}, ErrInvalidRating
	}
	article, ok, err := a.store.AppendRating(id, rating)
	if err != nil {
		return domain.Article{}, fmt.Errorf("append rating: %w", err)
	}
	if !ok {
		return domain.Article{}, ErrArticleNotFound
	}
	a.publish(events.Event{Type: "article.rated", ArticleID: article.ID, Rating: rating})
	return article, nil
}

// CreateSeMethod creates a method, optionally seeded with claims.
func (a *App) CreateSeMethod(name string, claimNames []string) (domain.SeMethod, error) {
	if strings.TrimSpace(name) == "" {
		return domain.SeMethod{}, ErrMissingMethodName
	}
	claims := make([]domain.Claim, 0, len(claimNames))
	for _, n := range claimNames {
		if strings.TrimSpace(n) == "" {
			return domain.SeMethod{}, ErrMissingClaimName
		}
		claims = append(claims, domain.Claim{ID: uuid.NewString(), Name: n})
	}
	return a.store.CreateSeMethod(domain.SeMethod{
		ID:     uuid.NewString(),
		Name:   name,
		Claims: claims,
	})
}

// ListSeMethods returns the full controlled vocabulary.
func (a *App) ListSeMethods() ([]domain.SeMethod, error) {
	return a.store.ListSeMethods()
}

// GetSeMethod returns one method by ID.
func (a *App) GetSeMethod(id string) (domain.SeMethod, error) {
	method, ok, err := a.store.GetSeMethod(id)
	if err != nil {
		return domain.SeMethod{}, fmt.Errorf("get se method: %w", err)
	}
	if !ok {
		return domain.SeMethod{}, ErrMethodNotFound
	}
	return method, nil
}

// RenameSeMethod updates a method's name.
func (a *App) RenameSeMethod(id, name string) (domain.SeMethod, error) {
	if strings.TrimSpace(name) == "" {
		return domain.SeMethod{}, ErrMissingMethodName
	}
	method, ok, err := a.store.UpdateSeMethod(id, name)
	if err != nil {
		return domain.SeMethod{}, fmt.Errorf("update se method: %w", err)
	}
	if !ok {
		return domain.SeMethod{}, ErrMethodNotFound
	}
	return method, nil
}

// DeleteSeMethod removes a method from the vocabulary.
func (a *App) DeleteSeMethod(id string) error {
	ok, err := a.store.DeleteSeMethod(id)
	if err != nil {
		return fmt.Errorf("delete se method: %w", err)
	}
	if !ok {
		return ErrMethodNotFound
	}
	return nil
}

// AddClaim appends a claim with a generated stable ID.
func (a *App) AddClaim(methodID, name string) (domain.SeMethod, error) {
	if strings.TrimSpace(name) == "" {
		return domain.SeMethod{}, ErrMissingClaimName
	}
	method, err := a.GetSeMethod(methodID)
	if err != nil {
		return domain.SeMethod{}, err
	}
	claims := append(method.Claims, domain.Claim{ID: uuid.NewString(), Name: name})
	return a.saveClaims(methodID, claims)
}

// GetClaims returns the ordered claims list of a method.
func (a *App) GetClaims(methodID string) ([]domain.Claim, error) {
	method, err := a.GetSeMethod(methodID)
	if err != nil {
		return nil, err
	}
	return method.Claims, nil
}

// GetClaim returns the claim at a zero-based index.
func (a *App) GetClaim(methodID string, index int) (domain.Claim, error) {
	method, err := a.GetSeMethod(methodID)
	if err != nil {
		return domain.Claim{}, err
	}
	if index < 0 || index >= len(method.Claims) {
		return domain.Claim{}, ErrClaimNotFound
	}
	return method.Claims[index], nil
}

// UpdateClaim renames the claim at index, keeping its stable ID.
func (a *App) UpdateClaim(methodID string, index int, name string) (domain.SeMethod, error) {
	if strings.TrimSpace(name) == "" {
		return domain.SeMethod{}, ErrMissingClaimName
	}
	method, err := a.GetSeMethod(methodID)
	if err != nil {
		return domain.SeMethod{}, err
	}
	if index < 0 || index >= len(method.Claims) {
		return domain.SeMethod{}, ErrClaimNotFound
	}
	method.Claims[index].Name = name
	return a.saveClaims(methodID, method.Claims)
}

// DeleteClaim removes the claim at index; later claims shift down one slot.
func (a *App) DeleteClaim(methodID string, index int) (domain.SeMethod, error) {
	method, err := a.GetSeMethod(methodID)
	if err != nil {
		return domain.SeMethod{}, err
	}
	if index < 0 || index >= len(method.Claims) {
		return domain.SeMethod{}, ErrClaimNotFound
	}
	claims := append(method.Claims[:index:index], method.Claims[index+1:]...)
	return a.saveClaims(methodID, claims)
}

func (a *App) saveClaims(methodID string, claims []domain.Claim) (domain.SeMethod, error) {
	method, ok, err := a.store.SaveSeMethodClaims(methodID, claims)
	if err != nil {
		return domain.SeMethod{}, fmt.Errorf("save claims: %w", err)
	}
	if !ok {
		return domain.SeMethod{}, ErrMethodNotFound
	}
	return method, nil
}

// SignUp registers a new user. Uniqueness is enforced on both username and
// email; the source system checked inconsistently.
func (a *App) SignUp(username, email, password, role string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return domain.User{}, ErrMissingSignupFields
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, err
	}
	if taken, err := a.store.HasUsername(username); err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	} else if taken {
		return domain.User{}, ErrUserExists
	}
	if taken, err := a.store.HasUserEmail(email); err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	} else if taken {
		return domain.User{}, ErrUserExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(role) == "" {
		role = "user"
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.CreateUser(user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials against the stored hash and issues a session token.
// The identity may be a username or an email address.
func (a *App) Login(identity, password string) (domain.User, string, error) {
	identity = strings.TrimSpace(identity)
	user, ok, err := a.store.GetUserByUsername(identity)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		user, ok, err = a.store.GetUserByEmail(strings.ToLower(identity))
		if err != nil {
			return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
		}
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("new session: %w", err)
	}
	return user, token, nil
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UserByToken resolves a session token to its user.
func (a *App) UserByToken(token string) (domain.User, error) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("resolve token: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUnauthorized
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUnauthorized
	}
	return user, nil
}

// LookupUser finds a user by username, or by email when the key contains '@'.
func (a *App) LookupUser(key string) (domain.User, error) {
	key = strings.TrimSpace(key)
	var (
		user domain.User
		ok   bool
		err  error
	)
	if strings.Contains(key, "@") {
		user, ok, err = a.store.GetUserByEmail(strings.ToLower(key))
	} else {
		user, ok, err = a.store.GetUserByUsername(key)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// publish emits an event when a publisher is configured. Failures are logged
// and never fail the request.
func (a *App) publish(ev events.Event) {
	if a.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.events.Publish(ctx, ev); err != nil {
		slog.Warn("publish event failed", "type", ev.Type, "article_id", ev.ArticleID, "error", err)
	}
}
