package app

import (
	"errors"
	"testing"
	"time"

	"speed/pkg/domain"
	"speed/pkg/store"
)

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	sessions, err := store.NewJWTSessionStore("test-secret-not-for-production", "speed", "speed-api", time.Hour)
	if err != nil {
		t.Fatalf("new jwt session store: %v", err)
	}
	a, err := New(Config{Store: mem, Sessions: sessions})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, mem
}

func TestSubmitArticleForcesPendingModeration(t *testing.T) {
	a, _ := newTestApp(t)
	article, err := a.SubmitArticle(ArticleInput{Title: "Pair Programming Study", PubYear: 2021})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if article.Status != domain.StatusPendingModeration {
		t.Fatalf("status = %s, want pending_moderation", article.Status)
	}
	if article.ID == "" {
		t.Fatal("expected generated id")
	}
	if article.SubmittedAt.IsZero() {
		t.Fatal("expected submittedAt to default to now")
	}
	if len(article.Ratings) != 0 {
		t.Fatalf("expected empty ratings, got %v", article.Ratings)
	}
}

func TestSubmitArticleRequiresTitleAndYear(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.SubmitArticle(ArticleInput{PubYear: 2021}); !errors.Is(err, ErrMissingArticleFields) {
		t.Fatalf("missing title: got %v", err)
	}
	if _, err := a.SubmitArticle(ArticleInput{Title: "x"}); !errors.Is(err, ErrMissingArticleFields) {
		t.Fatalf("missing year: got %v", err)
	}
}

func TestUpdateArticleRejectsIllegalTransition(t *testing.T) {
	a, _ := newTestApp(t)
	article, err := a.SubmitArticle(ArticleInput{Title: "CI Adoption", PubYear: 2020})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved := string(domain.StatusApproved)
	if _, err := a.UpdateArticle(article.ID, ArticleUpdateRequest{Status: &approved}); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("pending_moderation -> approved should be illegal, got %v", err)
	}
	bogus := "in_review"
	if _, err := a.UpdateArticle(article.ID, ArticleUpdateRequest{Status: &bogus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("invalid status enum: got %v", err)
	}
}

func TestApprovalRequiresAnalysisTriple(t *testing.T) {
	a, _ := newTestApp(t)
	article, err := a.SubmitArticle(ArticleInput{Title: "CI Adoption", PubYear: 2020})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	analysis := string(domain.StatusPendingAnalysis)
	if _, err := a.UpdateArticle(article.ID, ArticleUpdateRequest{Status: &analysis}); err != nil {
		t.Fatalf("moderation pass: %v", err)
	}

	approved := string(domain.StatusApproved)
	if _, err := a.UpdateArticle(article.ID, ArticleUpdateRequest{Status: &approved}); !errors.Is(err, ErrMissingAnalysis) {
		t.Fatalf("approval without triple: got %v", err)
	}

	method, err := a.CreateSeMethod("Empirical Study", []string{"Improves Quality"})
	if err != nil {
		t.Fatalf("create method: %v", err)
	}
	claim := "Improves Quality"
	evidence := string(domain.EvidenceStrongSupport)

	wrongClaim := "Reduces Cost"
	if _, err := a.UpdateArticle(article.ID, ArticleUpdateRequest{
		Status: &approved, SeMethodID: &method.ID, Claim: &wrongClaim, Evidence: &evidence,
	}); !errors.Is(err, ErrUnknownClaim) {
		t.Fatalf("claim not under method: got %v", err)
	}

	updated, err := a.UpdateArticle(article.ID, ArticleUpdateRequest{
		Status: &approved, SeMethodID: &method.ID, Claim: &claim, Evidence: &evidence,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != domain.StatusApproved {
		t.Fatalf("status = %s, want approved", updated.Status)
	}
	if updated.SeMethodID != method.ID || updated.Claim != claim || updated.Evidence != domain.EvidenceStrongSupport {
		t.Fatalf("analysis triple not stored with approval: %+v", updated)
	}
}

func TestRateArticleValidatesRange(t *testing.T) {
	a, _ := newTestApp(t)
	article, err := a.SubmitArticle(ArticleInput{Title: "CI Adoption", PubYear: 2020})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := a.RateArticle(article.ID, 5.5); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating > 5: got %v", err)
	}
	if _, err := a.RateArticle(article.ID, -1); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating < 0: got %v", err)
	}
	rated, err := a.RateArticle(article.ID, 4)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	rated, err = a.RateArticle(article.ID, 5)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if got := rated.AverageRating(); got != 4.5 {
		t.Fatalf("average = %v, want 4.5", got)
	}
	if _, err := a.RateArticle("missing", 3); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("missing article: got %v", err)
	}
}

func TestClaimIndexOperations(t *testing.T) {
	a, _ := newTestApp(t)
	method, err := a.CreateSeMethod("Case Study", nil)
	if err != nil {
		t.Fatalf("create method: %v", err)
	}
	for _, name := range []string{"A", "B", "C"} {
		if _, err := a.AddClaim(method.ID, name); err != nil {
			t.Fatalf("add claim %s: %v", name, err)
		}
	}
	claims, err := a.GetClaims(method.ID)
	if err != nil {
		t.Fatalf("get claims: %v", err)
	}
	if len(claims) != 3 {
		t.Fatalf("claims = %d, want 3", len(claims))
	}
	idC := claims[2].ID

	if _, err := a.DeleteClaim(method.ID, 1); err != nil {
		t.Fatalf("delete claim: %v", err)
	}
	claims, err = a.GetClaims(method.ID)
	if err != nil {
		t.Fatalf("get claims: %v", err)
	}
	if len(claims) != 2 || claims[0].Name != "A" || claims[1].Name != "C" {
		t.Fatalf("claims after delete = %+v, want [A C]", claims)
	}
	claim, err := a.GetClaim(method.ID, 1)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if claim.Name != "C" || claim.ID != idC {
		t.Fatalf("index 1 now = %+v, want C with its original id", claim)
	}
	if _, err := a.GetClaim(method.ID, 2); !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("out of bounds: got %v", err)
	}
	if _, err := a.GetClaim("missing", 0); !errors.Is(err, ErrMethodNotFound) {
		t.Fatalf("missing method: got %v", err)
	}
}

func TestSignUpEnforcesUniqueness(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.SignUp("maria", "maria@example.com", "password123", "moderator"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := a.SignUp("maria", "other@example.com", "password123", ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate username: got %v", err)
	}
	if _, err := a.SignUp("other", "maria@example.com", "password123", ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate email: got %v", err)
	}
	if _, err := a.SignUp("", "a@b.c", "password123", ""); !errors.Is(err, ErrMissingSignupFields) {
		t.Fatalf("missing username: got %v", err)
	}
}

func TestLoginAndSession(t *testing.T) {
	a, _ := newTestApp(t)
	created, err := a.SignUp("maria", "maria@example.com", "password123", "analyst")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := a.Login("maria", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	user, token, err := a.Login("maria", "password123")
	if err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if user.ID != created.ID || token == "" {
		t.Fatalf("unexpected login result: %+v token=%q", user, token)
	}
	if _, _, err := a.Login("maria@example.com", "password123"); err != nil {
		t.Fatalf("login by email: %v", err)
	}
	resolved, err := a.UserByToken(token)
	if err != nil {
		t.Fatalf("user by token: %v", err)
	}
	if resolved.Username != "maria" {
		t.Fatalf("resolved user = %+v", resolved)
	}
	if _, err := a.UserByToken("not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad token: got %v", err)
	}
}
