package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
)

func displayablePayload(d content.Displayable) gin.H {
	return gin.H{
		"title":           d.Title,
		"slug":            d.Slug,
		"status":          d.Status,
		"meta_title":      d.MetaTitle,
		"description":     d.Description,
		"gen_description": d.GenDescription,
		"publish_date":    d.PublishDate,
		"expiry_date":     d.ExpiryDate,
		"short_url":       d.ShortURL,
		"created":         d.Created,
		"updated":         d.Updated,
	}
}

func keywordPayloads(keywords []db.Keyword) []gin.H {
	out := make([]gin.H, 0, len(keywords))
	for _, keyword := range keywords {
		out = append(out, keywordPayload(keyword))
	}
	return out
}

func keywordPayload(keyword db.Keyword) gin.H {
	return gin.H{"id": keyword.ID, "title": keyword.Title, "slug": keyword.Slug}
}

func categoryPayload(category db.BlogCategory) gin.H {
	payload := gin.H{
		"id":        category.ID,
		"title":     category.Title,
		"slug":      category.Slug,
		"parent_id": category.ParentID,
		"visible":   category.Visible,
		"url":       category.URL(),
	}
	if len(category.Children) > 0 {
		children := make([]gin.H, 0, len(category.Children))
		for _, child := range category.Children {
			children = append(children, categoryPayload(child))
		}
		payload["children"] = children
	}
	return payload
}

func categoryPayloads(categories []db.BlogCategory) []gin.H {
	out := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		out = append(out, categoryPayload(category))
	}
	return out
}

func imagePayload(img db.FeaturedImage) gin.H {
	return gin.H{
		"id":                img.ID,
		"blog_post_id":      img.BlogPostID,
		"asset_key":         img.AssetKey,
		"description":       img.Description,
		"is_visible":        img.IsVisible,
		"is_featured_image": img.IsFeaturedImage,
		"src":               img.Src,
		"filename":          img.Filename,
		"width":             img.Width,
		"height":            img.Height,
	}
}

func imagePayloads(images []db.FeaturedImage) []gin.H {
	out := make([]gin.H, 0, len(images))
	for _, img := range images {
		out = append(out, imagePayload(img))
	}
	return out
}

func postPayload(post db.BlogPost) gin.H {
	payload := displayablePayload(post.Displayable)
	payload["id"] = post.ID
	payload["user_id"] = post.UserID
	payload["content"] = post.Content
	payload["format"] = post.Format
	payload["allow_comments"] = post.AllowComments
	payload["url"] = post.URL()
	payload["categories"] = categoryPayloads(post.Categories)
	payload["keywords"] = keywordPayloads(post.Keywords)
	payload["featured_images"] = imagePayloads(post.FeaturedImages)

	related := make([]gin.H, 0, len(post.RelatedPosts))
	for _, item := range post.RelatedPosts {
		related = append(related, gin.H{"id": item.ID, "title": item.Title, "slug": item.Slug})
	}
	payload["related_posts"] = related
	return payload
}

func pagePayload(concrete db.ConcretePage) gin.H {
	page := concrete.BasePage()
	payload := displayablePayload(page.Displayable)
	payload["id"] = page.ID
	payload["content_model"] = concrete.ContentModelName()
	payload["in_menus"] = page.InMenus
	payload["sort_order"] = page.SortOrder
	payload["url"] = page.URL()
	payload["keywords"] = keywordPayloads(page.Keywords)

	switch p := concrete.(type) {
	case *db.RichTextPage:
		payload["content"] = p.Content
		payload["format"] = p.Format
	case *db.LinkPage:
		payload["link"] = p.Link
	}
	return payload
}

func messagePayload(message db.ContactMessage) gin.H {
	return gin.H{
		"id":         message.ID,
		"name":       message.Name,
		"subject":    message.Subject,
		"email":      message.Email,
		"message":    message.Message,
		"created_at": message.CreatedAt,
	}
}
