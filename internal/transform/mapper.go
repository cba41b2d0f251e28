// Package transform holds the pure record transformations of the pipeline:
// mapping raw source articles to vector records and partitioning records by
// enrichment state.
package transform

import (
	"fmt"
	"strings"

	"KBSync/internal/domain"
)

// FromArticle maps one raw source article into the canonical vector-record
// shape. Absent fields default to empty values; a partial article never
// fails. HTML stripping of the answer happens upstream at fetch time, not
// here.
func FromArticle(article domain.SourceArticle) domain.VectorRecord {
	return domain.VectorRecord{
		Namespace:       "",
		ID:              article.ID,
		Title:           article.Title,
		Answer:          article.Answer,
		Link:            article.WebURL,
		Parent:          "",
		Keywords:        nil,
		MetaDescription: article.Summary,
		CombinedText:    "",
		Metadata: domain.Metadata{
			Category:        article.Category.Name,
			SubCategory:     "",
			Tags:            emptyIfNil(article.Tags),
			LastUpdated:     article.ModifiedTime,
			Author:          article.Author.Name,
			Views:           article.ViewCount,
			Like:            article.LikeCount,
			DifficultyLevel: "",
			Version:         article.LatestVersion,
			RelatedLinks:    []string{},
			ZDMetadata:      zdMetadata(article),
		},
	}
}

func zdMetadata(article domain.SourceArticle) domain.ZDMetadata {
	return domain.ZDMetadata{
		ModifiedTime:                article.ModifiedTime,
		DepartmentID:                article.DepartmentID,
		CreatorID:                   article.CreatorID,
		DislikeCount:                article.DislikeCount,
		ModifierID:                  article.ModifierID,
		LikeCount:                   article.LikeCount,
		Locale:                      article.Locale,
		OwnerID:                     article.OwnerID,
		Title:                       article.Title,
		TranslationState:            article.TranslationState,
		IsTrashed:                   article.IsTrashed,
		CreatedTime:                 article.CreatedTime,
		ModifiedBy:                  article.ModifiedBy,
		ID:                          article.ID,
		ViewCount:                   article.ViewCount,
		TranslationSource:           article.TranslationSource,
		Owner:                       article.Owner,
		Summary:                     article.Summary,
		LatestVersionStatus:         article.LatestVersionStatus,
		Author:                      article.Author,
		Permission:                  article.Permission,
		AuthorID:                    article.AuthorID,
		UsageCount:                  article.UsageCount,
		CommentCount:                article.CommentCount,
		RootCategoryID:              article.RootCategoryID,
		SourceLocale:                article.SourceLocale,
		TranslationID:               article.TranslationID,
		CreatedBy:                   article.CreatedBy,
		LatestVersion:               article.LatestVersion,
		WebURL:                      article.WebURL,
		FeedbackCount:               article.FeedbackCount,
		PortalURL:                   article.PortalURL,
		AttachmentCount:             article.AttachmentCount,
		LatestPublishedVersion:      article.LatestPublishedVersion,
		Position:                    article.Position,
		AvailableLocaleTranslations: emptyAnyIfNil(article.AvailableLocaleTranslations),
		Category:                    article.Category,
		Permalink:                   article.Permalink,
		CategoryID:                  article.CategoryID,
		Status:                      article.Status,
		Tags:                        emptyIfNil(article.Tags),
		Attachments:                 emptyAnyIfNil(article.Attachments),
	}
}

// ToArticlePayload builds the knowledge-base write shape from a vector
// record. It returns an error naming the missing fields when any required
// field is empty; callers skip and log the record rather than aborting the
// batch.
func ToArticlePayload(rec domain.VectorRecord) (domain.ArticlePayload, error) {
	zd := rec.Metadata.ZDMetadata

	payload := domain.ArticlePayload{
		CategoryID: zd.CategoryID,
		Title:      rec.Title,
		Answer:     rec.Answer,
		Status:     zd.Status,
		Permission: zd.Permission,
		Tags:       zd.Tags,
	}

	var missing []string
	if strings.TrimSpace(payload.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(payload.Answer) == "" {
		missing = append(missing, "answer")
	}
	if strings.TrimSpace(payload.Status) == "" {
		missing = append(missing, "status")
	}
	if strings.TrimSpace(payload.Permission) == "" {
		missing = append(missing, "permission")
	}
	if strings.TrimSpace(payload.CategoryID) == "" {
		missing = append(missing, "categoryId")
	}
	if len(missing) > 0 {
		return domain.ArticlePayload{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	return payload, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func emptyAnyIfNil(list []any) []any {
	if list == nil {
		return []any{}
	}
	return list
}
