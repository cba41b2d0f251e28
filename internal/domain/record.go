package domain

// Person is the author/owner/creator shape embedded in knowledge-base metadata.
type Person struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	PhotoURL string `json:"photoURL,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Category is the nested category reference carried by a source article.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ZDMetadata mirrors the source-system article fields verbatim. Counts and
// positions arrive as decimal strings from the API and are passed through
// untouched.
type ZDMetadata struct {
	ModifiedTime                string   `json:"modifiedTime"`
	DepartmentID                string   `json:"departmentId"`
	CreatorID                   string   `json:"creatorId"`
	DislikeCount                string   `json:"dislikeCount"`
	ModifierID                  string   `json:"modifierId"`
	LikeCount                   string   `json:"likeCount"`
	Locale                      string   `json:"locale"`
	OwnerID                     string   `json:"ownerId"`
	Title                       string   `json:"title"`
	TranslationState            string   `json:"translationState"`
	IsTrashed                   bool     `json:"isTrashed"`
	CreatedTime                 string   `json:"createdTime"`
	ModifiedBy                  Person   `json:"modifiedBy"`
	ID                          string   `json:"id"`
	ViewCount                   string   `json:"viewCount"`
	TranslationSource           string   `json:"translationSource"`
	Owner                       Person   `json:"owner"`
	Summary                     string   `json:"summary"`
	LatestVersionStatus         string   `json:"latestVersionStatus"`
	Author                      Person   `json:"author"`
	Permission                  string   `json:"permission"`
	AuthorID                    string   `json:"authorId"`
	UsageCount                  string   `json:"usageCount"`
	CommentCount                string   `json:"commentCount"`
	RootCategoryID              string   `json:"rootCategoryId"`
	SourceLocale                string   `json:"sourceLocale"`
	TranslationID               string   `json:"translationId"`
	CreatedBy                   Person   `json:"createdBy"`
	LatestVersion               string   `json:"latestVersion"`
	WebURL                      string   `json:"webUrl"`
	FeedbackCount               string   `json:"feedbackCount"`
	PortalURL                   string   `json:"portalUrl"`
	AttachmentCount             string   `json:"attachmentCount"`
	LatestPublishedVersion      string   `json:"latestPublishedVersion"`
	Position                    string   `json:"position"`
	AvailableLocaleTranslations []any    `json:"availableLocaleTranslations"`
	Category                    Category `json:"category"`
	Permalink                   string   `json:"permalink"`
	CategoryID                  string   `json:"categoryId"`
	Status                      string   `json:"status"`
	Tags                        []string `json:"tags"`
	Attachments                 []any    `json:"attachments"`
}

// Metadata is the curated metadata block of a vector record.
type Metadata struct {
	Category        string     `json:"category"`
	SubCategory     string     `json:"sub_category"`
	Tags            []string   `json:"tags"`
	LastUpdated     string     `json:"last_updated"`
	Author          string     `json:"author"`
	Views           string     `json:"views"`
	Like            string     `json:"like"`
	DifficultyLevel string     `json:"difficulty_level"`
	Version         string     `json:"version"`
	RelatedLinks    []string   `json:"related_links"`
	ZDMetadata      ZDMetadata `json:"zd_metadata"`
}

// VectorRecord is the canonical unit of data flowing through the pipeline:
// one knowledge-base entry in the shape consumed by the retrieval system.
// Title acts as the de-facto natural key during reconciliation; ID is unique
// within one sync batch but may change across re-syncs of the same title.
type VectorRecord struct {
	Namespace       string      `json:"namespace"`
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Answer          string      `json:"answer"`
	Link            string      `json:"link"`
	Parent          string      `json:"parent"`
	Keywords        KeywordList `json:"keywords"`
	MetaDescription string      `json:"meta_description"`
	CombinedText    string      `json:"combined_text"`
	Metadata        Metadata    `json:"metadata"`
}

// SourceArticle is the raw article document returned by the knowledge-base
// detail endpoint. Every field is optional; partial documents decode cleanly.
type SourceArticle struct {
	ID                          string   `json:"id"`
	Title                       string   `json:"title"`
	Answer                      string   `json:"answer"`
	Summary                     string   `json:"summary"`
	WebURL                      string   `json:"webUrl"`
	ModifiedTime                string   `json:"modifiedTime"`
	CreatedTime                 string   `json:"createdTime"`
	DepartmentID                string   `json:"departmentId"`
	CategoryID                  string   `json:"categoryId"`
	RootCategoryID              string   `json:"rootCategoryId"`
	CreatorID                   string   `json:"creatorId"`
	ModifierID                  string   `json:"modifierId"`
	OwnerID                     string   `json:"ownerId"`
	AuthorID                    string   `json:"authorId"`
	Locale                      string   `json:"locale"`
	SourceLocale                string   `json:"sourceLocale"`
	TranslationState            string   `json:"translationState"`
	TranslationSource           string   `json:"translationSource"`
	TranslationID               string   `json:"translationId"`
	IsTrashed                   bool     `json:"isTrashed"`
	LatestVersion               string   `json:"latestVersion"`
	LatestVersionStatus         string   `json:"latestVersionStatus"`
	LatestPublishedVersion      string   `json:"latestPublishedVersion"`
	Permission                  string   `json:"permission"`
	Permalink                   string   `json:"permalink"`
	PortalURL                   string   `json:"portalUrl"`
	Position                    string   `json:"position"`
	Status                      string   `json:"status"`
	ViewCount                   string   `json:"viewCount"`
	LikeCount                   string   `json:"likeCount"`
	DislikeCount                string   `json:"dislikeCount"`
	UsageCount                  string   `json:"usageCount"`
	CommentCount                string   `json:"commentCount"`
	FeedbackCount               string   `json:"feedbackCount"`
	AttachmentCount             string   `json:"attachmentCount"`
	Tags                        []string `json:"tags"`
	AvailableLocaleTranslations []any    `json:"availableLocaleTranslations"`
	Attachments                 []any    `json:"attachments"`
	Category                    Category `json:"category"`
	Author                      Person   `json:"author"`
	Owner                       Person   `json:"owner"`
	CreatedBy                   Person   `json:"createdBy"`
	ModifiedBy                  Person   `json:"modifiedBy"`
}

// ArticlePayload is the write shape accepted by the knowledge-base create
// endpoint. All fields except Tags are required.
type ArticlePayload struct {
	CategoryID string   `json:"categoryId"`
	Title      string   `json:"title"`
	Answer     string   `json:"answer"`
	Status     string   `json:"status"`
	Permission string   `json:"permission"`
	Tags       []string `json:"tags,omitempty"`
}
