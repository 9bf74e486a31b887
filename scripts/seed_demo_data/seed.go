package main

import (
	"fmt"
	"time"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/service"
	"gorm.io/gorm"
)

type seedSummary struct {
	Categories int
	Posts      int
	Pages      int
}

type demoPost struct {
	title      string
	category   string
	keywords   []string
	content    string
	format     string
	status     string
	daysAgo    int
	expireDays int
}

var demoCategories = map[string][]string{
	"Engineering": {"Backend", "Frontend"},
	"Company":     {"Announcements"},
	"Life":        nil,
}

var demoPosts = []demoPost{
	{
		title:    "Designing a small CMS in Go",
		category: "Backend",
		keywords: []string{"go", "cms"},
		content:  "<p>We rebuilt our site on a tiny Go service. This post covers the data model.</p><p>Pages, posts and categories share one displayable base.</p>",
		daysAgo:  12,
	},
	{
		title:    "Slugs, explained",
		category: "Backend",
		keywords: []string{"go", "urls"},
		content:  "Every title becomes a **slug**. Collisions get a numeric suffix.\n\nThat is all there is to it.",
		format:   content.FormatMarkdown,
		daysAgo:  9,
	},
	{
		title:    "Styling the blog index",
		category: "Frontend",
		keywords: []string{"css"},
		content:  "<p>Six posts per page, a sidebar of categories and a search box.</p>",
		daysAgo:  7,
	},
	{
		title:    "We are hiring",
		category: "Announcements",
		keywords: []string{"jobs"},
		content:  "<p>Join the team building this site.</p>",
		daysAgo:  3,
	},
	{
		title:      "Summer sale",
		category:   "Company",
		content:    "<p>This announcement already expired.</p>",
		daysAgo:    40,
		expireDays: 30,
	},
	{
		title:    "Weekend hiking notes",
		category: "Life",
		content:  "<p>Notes from the trail.</p>",
		daysAgo:  1,
	},
	{
		title:    "Unfinished thoughts",
		category: "Life",
		status:   content.StatusDraft,
		daysAgo:  0,
	},
}

// seed 写入演示用户、分类、文章与页面，已有数据时跳过对应部分。
func seed(gdb *gorm.DB) (seedSummary, error) {
	var summary seedSummary

	admin, err := ensureDemoUser(gdb, "admin", "admin123", true)
	if err != nil {
		return summary, err
	}
	if _, err := ensureDemoUser(gdb, "editor", "editor123", false); err != nil {
		return summary, err
	}

	categories, err := createDemoCategories(gdb)
	if err != nil {
		return summary, err
	}
	summary.Categories = len(categories)

	if summary.Posts, err = createDemoPosts(gdb, admin, categories); err != nil {
		return summary, err
	}
	if summary.Pages, err = createDemoPages(gdb); err != nil {
		return summary, err
	}
	return summary, nil
}

func ensureDemoUser(gdb *gorm.DB, username, password string, superuser bool) (db.User, error) {
	var user db.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err == nil {
		return user, nil
	}
	hashed, err := db.HashPassword(password)
	if err != nil {
		return user, err
	}
	user = db.User{Username: username, Password: hashed, IsSuperuser: superuser}
	if err := gdb.Create(&user).Error; err != nil {
		return user, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}

func createDemoCategories(gdb *gorm.DB) (map[string]uint, error) {
	svc := service.NewCategoryService(gdb)
	ids := make(map[string]uint)

	existing, err := svc.List(service.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	for _, category := range existing {
		ids[category.Title] = category.ID
	}

	for parent, children := range demoCategories {
		parentID, ok := ids[parent]
		if !ok {
			created, err := svc.Create(service.CategoryInput{Title: parent})
			if err != nil {
				return nil, fmt.Errorf("create category %s: %w", parent, err)
			}
			parentID = created.ID
			ids[parent] = parentID
		}
		for _, child := range children {
			if _, ok := ids[child]; ok {
				continue
			}
			created, err := svc.Create(service.CategoryInput{Title: child, ParentID: &parentID})
			if err != nil {
				return nil, fmt.Errorf("create category %s: %w", child, err)
			}
			ids[child] = created.ID
		}
	}
	return ids, nil
}

func createDemoPosts(gdb *gorm.DB, owner db.User, categories map[string]uint) (int, error) {
	var count int64
	gdb.Model(&db.BlogPost{}).Count(&count)
	if count > 0 {
		return int(count), nil
	}

	svc := service.NewPostService(gdb, content.NewOwnershipPolicy(nil))
	actor := content.Actor{ID: owner.ID, IsSuperuser: owner.IsSuperuser}
	now := time.Now()

	var previous uint
	for _, item := range demoPosts {
		publish := now.AddDate(0, 0, -item.daysAgo)
		input := service.PostInput{
			Title:       item.title,
			Content:     item.content,
			Format:      item.format,
			Status:      item.status,
			PublishDate: &publish,
			Keywords:    item.keywords,
		}
		if id, ok := categories[item.category]; ok {
			input.CategoryIDs = []uint{id}
		}
		if item.expireDays > 0 {
			expiry := publish.AddDate(0, 0, item.expireDays)
			input.ExpiryDate = &expiry
		}
		if previous != 0 {
			input.RelatedPostIDs = []uint{previous}
		}

		post, err := svc.Create(actor, input)
		if err != nil {
			return 0, fmt.Errorf("create post %q: %w", item.title, err)
		}
		previous = post.ID
	}
	return len(demoPosts), nil
}

func createDemoPages(gdb *gorm.DB) (int, error) {
	var count int64
	gdb.Model(&db.Page{}).Count(&count)
	if count > 0 {
		return int(count), nil
	}

	svc := service.NewPageService(gdb)
	inMenus := true
	order := 1
	if _, err := svc.CreateRichText(service.PageInput{
		Title:     "About",
		Content:   "## About us\n\nA small team writing about software and the outdoors.",
		Format:    content.FormatMarkdown,
		InMenus:   &inMenus,
		SortOrder: &order,
	}); err != nil {
		return 0, fmt.Errorf("create about page: %w", err)
	}

	order = 2
	if _, err := svc.CreateLink(service.PageInput{
		Title:     "Source code",
		Link:      "https://example.com/sitepress",
		InMenus:   &inMenus,
		SortOrder: &order,
	}); err != nil {
		return 0, fmt.Errorf("create link page: %w", err)
	}
	return 2, nil
}
