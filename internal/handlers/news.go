package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"spclub/api/internal/ids"
	"spclub/api/internal/middleware"
	"spclub/api/internal/models"
	"spclub/api/internal/repository"
)

type newsResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	Images    []string  `json:"images"`
	Author    string    `json:"author"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNewsResponse(article models.News) newsResponse {
	images := article.Images
	if images == nil {
		images = []string{}
	}
	return newsResponse{
		ID:        article.ID,
		Title:     article.Title,
		Content:   article.Content,
		Language:  string(article.Language),
		Images:    images,
		Author:    article.Author,
		Published: article.Published,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}

func (h HandlerSet) ListPublishedNews(c *gin.Context) {
	articles, err := h.news.ListPublished(c.Request.Context(), models.NewsLanguage(c.Query("language")))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": newsResponses(articles)})
}

func (h HandlerSet) GetNews(c *gin.Context) {
	article, err := h.news.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !article.Published {
		writeError(c, h.log, repository.ErrNewsNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": toNewsResponse(article)})
}

func (h HandlerSet) ListAllNews(c *gin.Context) {
	articles, err := h.news.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": newsResponses(articles)})
}

func (h HandlerSet) CreateNews(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "multipart form expected"})
		return
	}

	article := models.News{
		ID:        ids.New(),
		Title:     formValue(form.Value, "title"),
		Content:   formValue(form.Value, "content"),
		Language:  models.NewsLanguage(formValue(form.Value, "language")),
		Author:    claims.Username,
		Published: parseBool(formValue(form.Value, "published"), true),
	}
	if article.Language == "" {
		article.Language = models.NewsLanguageEnglish
	}

	if err := validateNews(article); err != nil {
		writeError(c, h.log, err)
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "at least one image is required"})
		return
	}
	for _, header := range files {
		url, err := h.uploads.SaveNewsImage(c.Request.Context(), header)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		article.Images = append(article.Images, url)
	}

	if err := h.news.Create(c.Request.Context(), article); err != nil {
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Str("news_id", article.ID).Str("author", article.Author).Msg("news article created")
	c.JSON(http.StatusCreated, gin.H{
		"message": "news article created",
		"news":    toNewsResponse(article),
	})
}

func (h HandlerSet) UpdateNews(c *gin.Context) {
	article, err := h.news.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "multipart form expected"})
		return
	}

	if title := formValue(form.Value, "title"); title != "" {
		article.Title = title
	}
	if content := formValue(form.Value, "content"); content != "" {
		article.Content = content
	}
	if language := formValue(form.Value, "language"); language != "" {
		article.Language = models.NewsLanguage(language)
	}
	if published := formValue(form.Value, "published"); published != "" {
		article.Published = parseBool(published, article.Published)
	}

	// Replaces the image set when new files arrive, keeps it otherwise.
	if files := form.File["images"]; len(files) > 0 {
		var images []string
		for _, header := range files {
			url, err := h.uploads.SaveNewsImage(c.Request.Context(), header)
			if err != nil {
				writeError(c, h.log, err)
				return
			}
			images = append(images, url)
		}
		article.Images = images
	}

	if err := validateNews(article); err != nil {
		writeError(c, h.log, err)
		return
	}

	if err := h.news.Update(c.Request.Context(), article); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "news article updated",
		"news":    toNewsResponse(article),
	})
}

func (h HandlerSet) DeleteNews(c *gin.Context) {
	if err := h.news.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "news article deleted"})
}

func validateNews(article models.News) error {
	return validation.ValidateStruct(&article,
		validation.Field(&article.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&article.Content, validation.Required),
		validation.Field(&article.Language, validation.Required,
			validation.In(models.NewsLanguageEnglish, models.NewsLanguageHindi)),
	)
}

func newsResponses(articles []models.News) []newsResponse {
	resp := make([]newsResponse, 0, len(articles))
	for _, article := range articles {
		resp = append(resp, toNewsResponse(article))
	}
	return resp
}
