package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/service"
)

func seedPost(t *testing.T, server *testServer, owner db.User, input service.PostInput) *db.BlogPost {
	t.Helper()
	post, err := server.api.posts.Create(content.Actor{ID: owner.ID, IsSuperuser: owner.IsSuperuser}, input)
	if err != nil {
		t.Fatalf("seed post %q: %v", input.Title, err)
	}
	return post
}

func TestShowHomeListsOnlyPublicPosts(t *testing.T) {
	server := newTestServer(t, "public-home")
	owner := server.createUser(t, "admin", "secret", true)

	future := time.Now().Add(48 * time.Hour)
	seedPost(t, server, owner, service.PostInput{Title: "Published", Content: "<p>visible</p>"})
	seedPost(t, server, owner, service.PostInput{Title: "Draft", Status: content.StatusDraft})
	seedPost(t, server, owner, service.PostInput{Title: "Scheduled", Content: "<p>later</p>", PublishDate: &future})

	recorder := server.do(t, http.MethodGet, "/", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	name, data := server.html.last()
	if name != "index.html" {
		t.Fatalf("expected index.html, got %s", name)
	}
	posts, _ := data["posts"].([]db.BlogPost)
	if len(posts) != 1 || posts[0].Title != "Published" {
		t.Fatalf("expected only the published post, got %#v", posts)
	}
	if data["siteName"] != service.DefaultSiteName {
		t.Fatalf("expected default site name, got %v", data["siteName"])
	}
}

func TestShowHomePaginatesBySix(t *testing.T) {
	server := newTestServer(t, "public-pages")
	owner := server.createUser(t, "admin", "secret", true)
	for i := 0; i < 8; i++ {
		seedPost(t, server, owner, service.PostInput{Title: "Post", Content: "<p>body</p>"})
	}

	server.do(t, http.MethodGet, "/?page=abc", nil, nil)
	_, data := server.html.last()
	if posts, _ := data["posts"].([]db.BlogPost); len(posts) != PublicPerPage || data["page"] != 1 {
		t.Fatalf("expected first page of %d posts, got %d on page %v", PublicPerPage, len(posts), data["page"])
	}

	server.do(t, http.MethodGet, "/?page=99", nil, nil)
	_, data = server.html.last()
	if posts, _ := data["posts"].([]db.BlogPost); len(posts) != 2 || data["page"] != 2 {
		t.Fatalf("expected last page with 2 posts, got %d on page %v", len(posts), data["page"])
	}
}

func TestShowCategoryIncludesSubCategoryPosts(t *testing.T) {
	server := newTestServer(t, "public-category")
	owner := server.createUser(t, "admin", "secret", true)

	parent, err := server.api.categories.Create(service.CategoryInput{Title: "News"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	child, err := server.api.categories.Create(service.CategoryInput{Title: "Local", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("create sub category: %v", err)
	}
	seedPost(t, server, owner, service.PostInput{Title: "In child", Content: "<p>x</p>", CategoryIDs: []uint{child.ID}})
	seedPost(t, server, owner, service.PostInput{Title: "Uncategorised", Content: "<p>y</p>"})

	recorder := server.do(t, http.MethodGet, "/category/news", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	_, data := server.html.last()
	if posts, _ := data["posts"].([]db.BlogPost); len(posts) != 1 || posts[0].Title != "In child" {
		t.Fatalf("expected child category post, got %#v", posts)
	}

	// 子分类不能通过顶级分类路由访问
	recorder = server.do(t, http.MethodGet, "/category/local", nil, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for sub category on top-level route, got %d", recorder.Code)
	}
	recorder = server.do(t, http.MethodGet, "/sub-category/local", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestShowSearchMatchesContent(t *testing.T) {
	server := newTestServer(t, "public-search")
	owner := server.createUser(t, "admin", "secret", true)
	seedPost(t, server, owner, service.PostInput{Title: "Gophers", Content: "<p>All about Golang</p>"})
	seedPost(t, server, owner, service.PostInput{Title: "Cats", Content: "<p>Meow</p>"})

	server.do(t, http.MethodGet, "/search?q=golang", nil, nil)
	name, data := server.html.last()
	if name != "blog.html" {
		t.Fatalf("expected blog.html, got %s", name)
	}
	if posts, _ := data["posts"].([]db.BlogPost); len(posts) != 1 || posts[0].Title != "Gophers" {
		t.Fatalf("unexpected search result: %#v", posts)
	}
}

func TestShowPostDetail(t *testing.T) {
	server := newTestServer(t, "public-post")
	owner := server.createUser(t, "admin", "secret", true)
	seedPost(t, server, owner, service.PostInput{Title: "Readable", Content: "<p>hi</p><script>alert(1)</script>"})
	seedPost(t, server, owner, service.PostInput{Title: "Hidden", Status: content.StatusDraft})

	recorder := server.do(t, http.MethodGet, "/post/readable", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	_, data := server.html.last()
	if rendered := data["content"]; rendered == nil {
		t.Fatal("expected rendered content")
	}

	recorder = server.do(t, http.MethodGet, "/post/hidden", nil, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for draft post, got %d", recorder.Code)
	}
}

func TestShowPageRedirectsLinkPages(t *testing.T) {
	server := newTestServer(t, "public-page")
	if _, err := server.api.pages.CreateLink(service.PageInput{Title: "Docs", Link: "https://example.com/docs"}); err != nil {
		t.Fatalf("create link page: %v", err)
	}
	if _, err := server.api.pages.CreateRichText(service.PageInput{Title: "About", Content: "<p>About us</p>"}); err != nil {
		t.Fatalf("create rich text page: %v", err)
	}

	recorder := server.do(t, http.MethodGet, "/page/docs", nil, nil)
	if recorder.Code != http.StatusFound || recorder.Header().Get("Location") != "https://example.com/docs" {
		t.Fatalf("expected redirect to link, got %d %q", recorder.Code, recorder.Header().Get("Location"))
	}

	recorder = server.do(t, http.MethodGet, "/page/about", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	name, data := server.html.last()
	if name != "page.html" || data["content"] == nil {
		t.Fatalf("expected page.html with content, got %s %#v", name, data)
	}
}

func TestSubmitContactFlashesResult(t *testing.T) {
	server := newTestServer(t, "public-contact")

	recorder := server.postForm(t, "/submit-contact", "name=Ann&email=ann@example.com&subject=Hi&message=Hello", nil)
	if recorder.Code != http.StatusFound || recorder.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", recorder.Code, recorder.Header().Get("Location"))
	}

	var count int64
	server.db.Model(&db.ContactMessage{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected stored message, got %d", count)
	}

	server.do(t, http.MethodGet, "/", nil, recorder.Result().Cookies())
	_, data := server.html.last()
	flashes, _ := data["flashes"].([]flashMessage)
	if len(flashes) != 1 || flashes[0].Message != flashMessageSent || flashes[0].Level != flashSuccess {
		t.Fatalf("unexpected flashes: %#v", flashes)
	}

	recorder = server.postForm(t, "/submit-contact", "email=not-an-email", nil)
	server.do(t, http.MethodGet, "/", nil, recorder.Result().Cookies())
	_, data = server.html.last()
	flashes, _ = data["flashes"].([]flashMessage)
	if len(flashes) != 1 || flashes[0].Message != flashMessageError {
		t.Fatalf("expected error flash, got %#v", flashes)
	}
}

func TestSubmitNewsletterSendsWelcomeMail(t *testing.T) {
	server := newTestServer(t, "public-newsletter")

	recorder := server.postForm(t, "/submit-news", "email=Reader@Example.com", nil)
	if recorder.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", recorder.Code)
	}
	if len(server.sender.sent) != 1 {
		t.Fatalf("expected one welcome mail, got %d", len(server.sender.sent))
	}
	sent := server.sender.sent[0]
	if sent.Subject != service.DefaultNewsletterSubject || sent.To[0] != "reader@example.com" {
		t.Fatalf("unexpected welcome mail: %#v", sent)
	}

	server.do(t, http.MethodGet, "/", nil, recorder.Result().Cookies())
	_, data := server.html.last()
	if flashes, _ := data["flashes"].([]flashMessage); len(flashes) != 1 || flashes[0].Message != flashWelcome {
		t.Fatalf("unexpected flashes: %#v", flashes)
	}

	recorder = server.postForm(t, "/submit-news", "email=", nil)
	server.do(t, http.MethodGet, "/", nil, recorder.Result().Cookies())
	_, data = server.html.last()
	if flashes, _ := data["flashes"].([]flashMessage); len(flashes) != 1 || flashes[0].Message != flashTryAgain {
		t.Fatalf("expected try again flash, got %#v", flashes)
	}
}

func TestNavigationListsMenuPages(t *testing.T) {
	server := newTestServer(t, "public-nav")
	inMenus := true
	if _, err := server.api.pages.CreateRichText(service.PageInput{Title: "Menu", Content: "<p>x</p>", InMenus: &inMenus}); err != nil {
		t.Fatalf("create page: %v", err)
	}
	if _, err := server.api.pages.CreateRichText(service.PageInput{Title: "Hidden", Content: "<p>y</p>"}); err != nil {
		t.Fatalf("create page: %v", err)
	}

	server.do(t, http.MethodGet, "/", nil, nil)
	_, data := server.html.last()
	menu, _ := data["menuPages"].([]db.Page)
	if len(menu) != 1 || menu[0].Title != "Menu" {
		t.Fatalf("unexpected menu pages: %#v", menu)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, "public-healthz")
	recorder := server.do(t, http.MethodGet, "/healthz", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
}
