package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"speed/pkg/domain"
)

// GORM models used for persistence.
type ArticleModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null;index"`
	Authors     string
	Journal     string
	Volume      int
	Pages       string
	PubYear     int    `gorm:"not null"`
	DOI         string `gorm:"index"`
	Status      string `gorm:"not null;index"`
	SubmittedAt time.Time      `gorm:"not null;index"`
	Ratings     datatypes.JSON `gorm:"type:jsonb"`
	SeMethodID  string
	Claim       string
	Evidence    string
}

type SeMethodModel struct {
	ID     string         `gorm:"primaryKey"`
	Name   string         `gorm:"not null"`
	Claims datatypes.JSON `gorm:"type:jsonb"`
}

type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Role         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func articleToModel(a domain.Article) ArticleModel {
	return ArticleModel{
		ID:          a.ID,
		Title:       a.Title,
		Authors:     a.Authors,
		Journal:     a.Journal,
		Volume:      a.Volume,
		Pages:       a.Pages,
		PubYear:     a.PubYear,
		DOI:         a.DOI,
		Status:      string(a.Status),
		SubmittedAt: a.SubmittedAt,
		Ratings:     mustJSON(a.Ratings),
		SeMethodID:  a.SeMethodID,
		Claim:       a.Claim,
		Evidence:    string(a.Evidence),
	}
}

func articleFromModel(m ArticleModel) domain.Article {
	var ratings []float64
	_ = json.Unmarshal(m.Ratings, &ratings)
	if ratings == nil {
		ratings = []float64{}
	}
	return domain.Article{
		ID:          m.ID,
		Title:       m.Title,
		Authors:     m.Authors,
		Journal:     m.Journal,
		Volume:      m.Volume,
		Pages:       m.Pages,
		PubYear:     m.PubYear,
		DOI:         m.DOI,
		Status:      domain.ArticleStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
		Ratings:     ratings,
		SeMethodID:  m.SeMethodID,
		Claim:       m.Claim,
		Evidence:    domain.Evidence(m.Evidence),
	}
}

func seMethodToModel(m domain.SeMethod) SeMethodModel {
	return SeMethodModel{
		ID:     m.ID,
		Name:   m.Name,
		Claims: mustJSON(m.Claims),
	}
}

func seMethodFromModel(m SeMethodModel) domain.SeMethod {
	var claims []domain.Claim
	_ = json.Unmarshal(m.Claims, &claims)
	if claims == nil {
		claims = []domain.Claim{}
	}
	return domain.SeMethod{
		ID:     m.ID,
		Name:   m.Name,
		Claims: claims,
	}
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		Role:         m.Role,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
