package store

import (
	"regexp"
	"sync"

	"speed/pkg/domain"
)

// MemoryStore keeps everything in-process, for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
	order    []string // article insertion order
	methods  map[string]domain.SeMethod
	morder   []string
	users    map[string]domain.User // key: user ID
	username map[string]string      // username -> user ID
	email    map[string]string      // email -> user ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: make(map[string]domain.Article),
		methods:  make(map[string]domain.SeMethod),
		users:    make(map[string]domain.User),
		username: make(map[string]string),
		email:    make(map[string]string),
	}
}

// CreateArticle stores an article and tracks insertion order.
func (m *MemoryStore) CreateArticle(a domain.Article) (domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.articles[a.ID]; !exists {
		m.order = append(m.order, a.ID)
	}
	m.articles[a.ID] = cloneArticle(a)
	return cloneArticle(a), nil
}

// ListArticles returns articles in insertion order.
func (m *MemoryStore) ListArticles() ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(domain.Article) bool { return true }), nil
}

// GetArticle retrieves an article by ID.
func (m *MemoryStore) GetArticle(id string) (domain.Article, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	return cloneArticle(a), ok, nil
}

// UpdateArticle merges non-nil fields into the stored record.
func (m *MemoryStore) UpdateArticle(id string, upd ArticleUpdate) (domain.Article, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, false, nil
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Authors != nil {
		a.Authors = *upd.Authors
	}
	if upd.Journal != nil {
		a.Journal = *upd.Journal
	}
	if upd.Volume != nil {
		a.Volume = *upd.Volume
	}
	if upd.Pages != nil {
		a.Pages = *upd.Pages
	}
	if upd.PubYear != nil {
		a.PubYear = *upd.PubYear
	}
	if upd.DOI != nil {
		a.DOI = *upd.DOI
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.SeMethodID != nil {
		a.SeMethodID = *upd.SeMethodID
	}
	if upd.Claim != nil {
		a.Claim = *upd.Claim
	}
	if upd.Evidence != nil {
		a.Evidence = *upd.Evidence
	}
	m.articles[id] = a
	return cloneArticle(a), true, nil
}

// DeleteArticle removes an article.
func (m *MemoryStore) DeleteArticle(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return false, nil
	}
	delete(m.articles, id)
	filtered := m.order[:0]
	for _, item := range m.order {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.order = filtered
	return true, nil
}

// ListArticlesByStatus returns articles with exactly that status.
func (m *MemoryStore) ListArticlesByStatus(status domain.ArticleStatus) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(a domain.Article) bool { return a.Status == status }), nil
}

// ListArticlesByStatusOrdered sorts the status filter result by submission time.
func (m *MemoryStore) ListArticlesByStatusOrdered(status domain.ArticleStatus, order domain.SortOrder) ([]domain.Article, error) {
	res, err := m.ListArticlesByStatus(status)
	if err != nil {
		return nil, err
	}
	// insertion sort keeps equal timestamps in insertion order
	for i := 1; i < len(res); i++ {
		for j := i; j > 0; j-- {
			earlier := res[j].SubmittedAt.Before(res[j-1].SubmittedAt)
			if order == domain.SortDesc {
				earlier = res[j].SubmittedAt.After(res[j-1].SubmittedAt)
			}
			if !earlier {
				break
			}
			res[j], res[j-1] = res[j-1], res[j]
		}
	}
	return res, nil
}

// FindDuplicateArticles applies the title regex to reviewed articles.
func (m *MemoryStore) FindDuplicateArticles(titlePattern, doi string) ([]domain.Article, error) {
	re, err := regexp.Compile("(?i)" + titlePattern)
	if err != nil {
		return nil, err
	}
	reviewed := map[domain.ArticleStatus]bool{
		domain.StatusPendingAnalysis: true,
		domain.StatusApproved:        true,
		domain.StatusRejected:        true,
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(a domain.Article) bool {
		if !reviewed[a.Status] {
			return false
		}
		if doi != "" && a.DOI != doi {
			return false
		}
		return re.MatchString(a.Title)
	}), nil
}

// AppendRating pushes a rating onto the article's list.
func (m *MemoryStore) AppendRating(id string, rating float64) (domain.Article, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, false, nil
	}
	a.Ratings = append(a.Ratings, rating)
	m.articles[id] = a
	return cloneArticle(a), true, nil
}

// CreateSeMethod stores a method.
func (m *MemoryStore) CreateSeMethod(sm domain.SeMethod) (domain.SeMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.methods[sm.ID]; !exists {
		m.morder = append(m.morder, sm.ID)
	}
	m.methods[sm.ID] = cloneSeMethod(sm)
	return cloneSeMethod(sm), nil
}

// ListSeMethods returns methods in insertion order.
func (m *MemoryStore) ListSeMethods() ([]domain.SeMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.SeMethod, 0, len(m.morder))
	for _, id := range m.morder {
		if sm, ok := m.methods[id]; ok {
			res = append(res, cloneSeMethod(sm))
		}
	}
	return res, nil
}

// GetSeMethod retrieves a method by ID.
func (m *MemoryStore) GetSeMethod(id string) (domain.SeMethod, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sm, ok := m.methods[id]
	return cloneSeMethod(sm), ok, nil
}

// UpdateSeMethod renames a method.
func (m *MemoryStore) UpdateSeMethod(id, name string) (domain.SeMethod, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.methods[id]
	if !ok {
		return domain.SeMethod{}, false, nil
	}
	sm.Name = name
	m.methods[id] = sm
	return cloneSeMethod(sm), true, nil
}

// DeleteSeMethod removes a method.
func (m *MemoryStore) DeleteSeMethod(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[id]; !ok {
		return false, nil
	}
	delete(m.methods, id)
	filtered := m.morder[:0]
	for _, item := range m.morder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.morder = filtered
	return true, nil
}

// SaveSeMethodClaims replaces the claims list of a method.
func (m *MemoryStore) SaveSeMethodClaims(id string, claims []domain.Claim) (domain.SeMethod, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.methods[id]
	if !ok {
		return domain.SeMethod{}, false, nil
	}
	sm.Claims = append([]domain.Claim(nil), claims...)
	m.methods[id] = sm
	return cloneSeMethod(sm), true, nil
}

// CreateUser registers a user.
func (m *MemoryStore) CreateUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.username[u.Username] = u.ID
	m.email[u.Email] = u.ID
	return nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByUsername looks up a user by username.
func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userByIndexLocked(m.username, username)
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userByIndexLocked(m.email, email)
}

// HasUsername checks if a username is taken.
func (m *MemoryStore) HasUsername(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.username[username]
	return ok, nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

func (m *MemoryStore) userByIndexLocked(index map[string]string, key string) (domain.User, bool, error) {
	if id, ok := index[key]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) listLocked(keep func(domain.Article) bool) []domain.Article {
	res := make([]domain.Article, 0, len(m.order))
	for _, id := range m.order {
		if a, ok := m.articles[id]; ok && keep(a) {
			res = append(res, cloneArticle(a))
		}
	}
	return res
}

func cloneArticle(a domain.Article) domain.Article {
	a.Ratings = append([]float64(nil), a.Ratings...)
	if a.Ratings == nil {
		a.Ratings = []float64{}
	}
	return a
}

func cloneSeMethod(m domain.SeMethod) domain.SeMethod {
	m.Claims = append([]domain.Claim(nil), m.Claims...)
	if m.Claims == nil {
		m.Claims = []domain.Claim{}
	}
	return m
}
