package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"speed/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&ArticleModel{}, &SeMethodModel{}, &UserModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateArticle inserts a new article record.
func (s *GormStore) CreateArticle(a domain.Article) (domain.Article, error) {
	model := articleToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Article{}, err
	}
	return articleFromModel(model), nil
}

// ListArticles returns every article, insertion order unspecified.
func (s *GormStore) ListArticles() ([]domain.Article, error) {
	var models []ArticleModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	return articlesFromModels(models), nil
}

// GetArticle retrieves an article by ID.
func (s *GormStore) GetArticle(id string) (domain.Article, bool, error) {
	var model ArticleModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Article{}, false, nil
		}
		return domain.Article{}, false, err
	}
	return articleFromModel(model), true, nil
}

// UpdateArticle merges non-nil fields into the stored record in one update.
func (s *GormStore) UpdateArticle(id string, upd ArticleUpdate) (domain.Article, bool, error) {
	fields := upd.columns()
	var out domain.Article
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model ArticleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true
		if len(fields) > 0 {
			if err := tx.Model(&ArticleModel{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
			if err := tx.First(&model, "id = ?", id).Error; err != nil {
				return err
			}
		}
		out = articleFromModel(model)
		return nil
	})
	if err != nil {
		return domain.Article{}, false, err
	}
	return out, found, nil
}

// DeleteArticle removes an article.
func (s *GormStore) DeleteArticle(id string) (bool, error) {
	res := s.db.Delete(&ArticleModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListArticlesByStatus returns all articles with exactly that status.
func (s *GormStore) ListArticlesByStatus(status domain.ArticleStatus) ([]domain.Article, error) {
	var models []ArticleModel
	if err := s.db.Where("status = ?", string(status)).Find(&models).Error; err != nil {
		return nil, err
	}
	return articlesFromModels(models), nil
}

// ListArticlesByStatusOrdered returns status-filtered articles sorted by submission time.
func (s *GormStore) ListArticlesByStatusOrdered(status domain.ArticleStatus, order domain.SortOrder) ([]domain.Article, error) {
	direction := "ASC"
	if order == domain.SortDesc {
		direction = "DESC"
	}
	var models []ArticleModel
	if err := s.db.Where("status = ?", string(status)).Order("submitted_at " + direction).Find(&models).Error; err != nil {
		return nil, err
	}
	return articlesFromModels(models), nil
}

// FindDuplicateArticles runs the whitespace-tolerant title regex against
// already-reviewed articles. Postgres ~* gives the case-insensitive match.
func (s *GormStore) FindDuplicateArticles(titlePattern, doi string) ([]domain.Article, error) {
	tx := s.db.
		Where("status IN ?", reviewedStatuses()).
		Where("title ~* ?", titlePattern)
	if doi != "" {
		tx = tx.Where("doi = ?", doi)
	}
	var models []ArticleModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	return articlesFromModels(models), nil
}

// AppendRating pushes a rating onto the article's list under a row lock so
// concurrent raters cannot lose each other's update.
func (s *GormStore) AppendRating(id string, rating float64) (domain.Article, bool, error) {
	var out domain.Article
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var model ArticleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true
		var ratings []float64
		_ = json.Unmarshal(model.Ratings, &ratings)
		ratings = append(ratings, rating)
		model.Ratings = mustJSON(ratings)
		if err := tx.Model(&ArticleModel{}).Where("id = ?", id).Update("ratings", model.Ratings).Error; err != nil {
			return err
		}
		out = articleFromModel(model)
		return nil
	})
	if err != nil {
		return domain.Article{}, false, err
	}
	return out, found, nil
}

// CreateSeMethod inserts a method with its claims list.
func (s *GormStore) CreateSeMethod(m domain.SeMethod) (domain.SeMethod, error) {
	model := seMethodToModel(m)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.SeMethod{}, err
	}
	return seMethodFromModel(model), nil
}

// ListSeMethods returns all SE methods.
func (s *GormStore) ListSeMethods() ([]domain.SeMethod, error) {
	var models []SeMethodModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SeMethod, 0, len(models))
	for _, m := range models {
		res = append(res, seMethodFromModel(m))
	}
	return res, nil
}

// GetSeMethod retrieves a method by ID.
func (s *GormStore) GetSeMethod(id string) (domain.SeMethod, bool, error) {
	var model SeMethodModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SeMethod{}, false, nil
		}
		return domain.SeMethod{}, false, err
	}
	return seMethodFromModel(model), true, nil
}

// UpdateSeMethod renames a method.
func (s *GormStore) UpdateSeMethod(id, name string) (domain.SeMethod, bool, error) {
	res := s.db.Model(&SeMethodModel{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return domain.SeMethod{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.SeMethod{}, false, nil
	}
	return s.GetSeMethod(id)
}

// DeleteSeMethod removes a method. Articles referencing it keep their
// dangling reference; there is no cascade.
func (s *GormStore) DeleteSeMethod(id string) (bool, error) {
	res := s.db.Delete(&SeMethodModel{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveSeMethodClaims replaces the claims list of a method.
func (s *GormStore) SaveSeMethodClaims(id string, claims []domain.Claim) (domain.SeMethod, bool, error) {
	res := s.db.Model(&SeMethodModel{}).Where("id = ?", id).Update("claims", mustJSON(claims))
	if res.Error != nil {
		return domain.SeMethod{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.SeMethod{}, false, nil
	}
	return s.GetSeMethod(id)
}

// CreateUser registers a user. Unique indexes back the username/email checks.
func (s *GormStore) CreateUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Create(&model).Error
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	return s.getUser("id = ?", id)
}

// GetUserByUsername looks up a user by username.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	return s.getUser("username = ?", username)
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	return s.getUser("email = ?", email)
}

// HasUsername checks if a username is taken.
func (s *GormStore) HasUsername(username string) (bool, error) {
	return s.countUsers("username = ?", username)
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	return s.countUsers("email = ?", email)
}

func (s *GormStore) getUser(cond string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where(cond, arg).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) countUsers(cond string, arg any) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func articlesFromModels(models []ArticleModel) []domain.Article {
	res := make([]domain.Article, 0, len(models))
	for _, m := range models {
		res = append(res, articleFromModel(m))
	}
	return res
}

func reviewedStatuses() []string {
	return []string{
		string(domain.StatusPendingAnalysis),
		string(domain.StatusApproved),
		string(domain.StatusRejected),
	}
}

// columns converts the partial update into GORM column assignments.
func (u ArticleUpdate) columns() map[string]any {
	fields := map[string]any{}
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Authors != nil {
		fields["authors"] = *u.Authors
	}
	if u.Journal != nil {
		fields["journal"] = *u.Journal
	}
	if u.Volume != nil {
		fields["volume"] = *u.Volume
	}
	if u.Pages != nil {
		fields["pages"] = *u.Pages
	}
	if u.PubYear != nil {
		fields["pub_year"] = *u.PubYear
	}
	if u.DOI != nil {
		fields["doi"] = *u.DOI
	}
	if u.Status != nil {
		fields["status"] = string(*u.Status)
	}
	if u.SeMethodID != nil {
		fields["se_method_id"] = *u.SeMethodID
	}
	if u.Claim != nil {
		fields["claim"] = *u.Claim
	}
	if u.Evidence != nil {
		fields["evidence"] = string(*u.Evidence)
	}
	return fields
}
