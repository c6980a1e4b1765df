package store

import "speed/pkg/domain"

// ArticleUpdate carries a partial article update. Nil fields are left untouched.
// Status transitions are validated by the application layer before reaching a Store.
type ArticleUpdate struct {
	Title      *string
	Authors    *string
	Journal    *string
	Volume     *int
	Pages      *string
	PubYear    *int
	DOI        *string
	Status     *domain.ArticleStatus
	SeMethodID *string
	Claim      *string
	Evidence   *domain.Evidence
}

// Store defines persistence operations for articles, SE methods, and users.
type Store interface {
	// articles
	CreateArticle(a domain.Article) (domain.Article, error)
	ListArticles() ([]domain.Article, error)
	GetArticle(id string) (domain.Article, bool, error)
	UpdateArticle(id string, upd ArticleUpdate) (domain.Article, bool, error)
	DeleteArticle(id string) (bool, error)
	ListArticlesByStatus(status domain.ArticleStatus) ([]domain.Article, error)
	ListArticlesByStatusOrdered(status domain.ArticleStatus, order domain.SortOrder) ([]domain.Article, error)
	// FindDuplicateArticles matches titlePattern (a case-insensitive regular
	// expression) against titles of articles in the pending_analysis, approved,
	// or rejected state. A non-empty doi adds an exact-match filter.
	FindDuplicateArticles(titlePattern, doi string) ([]domain.Article, error)
	AppendRating(id string, rating float64) (domain.Article, bool, error)

	// se methods
	CreateSeMethod(m domain.SeMethod) (domain.SeMethod, error)
	ListSeMethods() ([]domain.SeMethod, error)
	GetSeMethod(id string) (domain.SeMethod, bool, error)
	UpdateSeMethod(id, name string) (domain.SeMethod, bool, error)
	DeleteSeMethod(id string) (bool, error)
	// SaveSeMethodClaims replaces the full claims list of a method.
	SaveSeMethodClaims(id string, claims []domain.Claim) (domain.SeMethod, bool, error)

	// users
	CreateUser(u domain.User) error
	GetUserByID(id string) (domain.User, bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	HasUsername(username string) (bool, error)
	HasUserEmail(email string) (bool, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
