package zoho

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"KBSync/internal/domain"
	"KBSync/pkg/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestToPlainText(t *testing.T) {
	t.Parallel()

	got := ToPlainText("<p>Hello <b>world</b></p><p>bye</p>")
	want := "Hello  world bye"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestToPlainTextPlainInput(t *testing.T) {
	t.Parallel()

	if got := ToPlainText("no markup here"); got != "no markup here" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func newTestClient(t *testing.T, articlesURL, tokenURL string) *Client {
	t.Helper()
	return NewClient(Config{
		TokenURL:     tokenURL,
		ArticlesURL:  articlesURL,
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURI:  "https://example.com/cb",
		RefreshToken: "rt",
		DepartmentID: "D1",
		CategoryID:   "C1",
	}, retry.DefaultPolicy(), testLogger())
}

func tokenHandler(t *testing.T, hits *int32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("expected grant_type refresh_token, got %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "rt" {
			t.Errorf("expected refresh token rt, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	}
}

func TestListArticlesPaginatesAndFilters(t *testing.T) {
	t.Parallel()

	var tokenHits int32
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenHits))
	defer tokenSrv.Close()

	articles := map[string]domain.SourceArticle{
		"a1": {ID: "a1", Title: "First", Answer: "<p>body one</p>", DepartmentID: "D1"},
		"a2": {ID: "a2", Title: "Second", Answer: "plain", DepartmentID: "D1"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Zoho-oauthtoken tok-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		q := r.URL.Query()
		if q.Get("limit") != "50" || q.Get("status") != "Published" || q.Get("categoryId") != "C1" {
			t.Errorf("unexpected query %v", q)
		}
		from, _ := strconv.Atoi(q.Get("from"))
		var data []map[string]string
		switch from {
		case 1:
			data = []map[string]string{
				{"id": "a1", "departmentId": "D1"},
				{"id": "other", "departmentId": "D2"},
				{"id": "a2", "departmentId": "D1"},
			}
		case 51:
			data = nil
		default:
			t.Errorf("unexpected from offset %d", from)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
	mux.HandleFunc("/articles/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/articles/"):]
		article, ok := articles[id]
		if !ok {
			t.Errorf("detail fetch for filtered article %s", id)
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(article)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/articles", tokenSrv.URL)
	got, err := client.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles returned error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Answer != "body one" {
		t.Fatalf("expected stripped answer, got %q", got[0].Answer)
	}
	if hits := atomic.LoadInt32(&tokenHits); hits != 1 {
		t.Fatalf("expected single token exchange, got %d", hits)
	}
}

func TestListArticlesStopsOn422(t *testing.T) {
	t.Parallel()

	var tokenHits int32
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenHits))
	defer tokenSrv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		from, _ := strconv.Atoi(r.URL.Query().Get("from"))
		if from > 1 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{
			{"id": "a1", "departmentId": "D1"},
		}})
	})
	mux.HandleFunc("/articles/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.SourceArticle{ID: "a1", Title: "Only", DepartmentID: "D1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/articles", tokenSrv.URL)
	got, err := client.ListArticles(context.Background())
	if err != nil {
		t.Fatalf("expected 422 to end pagination, got error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
}

func TestCreateArticleRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var tokenHits int32
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenHits))
	defer tokenSrv.Close()

	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var payload domain.ArticlePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Title != "T" || payload.Permission != "REGISTEREDUSERS" {
			t.Errorf("unexpected payload %+v", payload)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, tokenSrv.URL)
	err := client.CreateArticle(context.Background(), domain.ArticlePayload{
		CategoryID: "C1",
		Title:      "T",
		Answer:     "A",
		Status:     "Published",
		Permission: "REGISTEREDUSERS",
	})
	if err != nil {
		t.Fatalf("CreateArticle returned error: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestTrashArticles(t *testing.T) {
	t.Parallel()

	var tokenHits int32
	tokenSrv := httptest.NewServer(tokenHandler(t, &tokenHits))
	defer tokenSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/articles/moveToTrash" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string][]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body["ids"]) != 2 {
			t.Errorf("expected 2 ids, got %v", body["ids"])
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/articles", tokenSrv.URL)
	if err := client.TrashArticles(context.Background(), []string{"a1", "a2"}); err != nil {
		t.Fatalf("TrashArticles returned error: %v", err)
	}
}
