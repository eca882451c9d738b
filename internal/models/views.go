package models

// DeletedUserName replaces the first name of soft-deleted authors in views.
const DeletedUserName = "deleted user"

// AdView is an ad as listed in collections.
type AdView struct {
	Author uint    `json:"author"`
	Image  *string `json:"image"`
	PK     uint    `json:"pk"`
	Price  int     `json:"price"`
	Title  string  `json:"title"`
}

// AdsView wraps a list of ads with its size.
type AdsView struct {
	Count   int      `json:"count"`
	Results []AdView `json:"results"`
}

// ExtendedAdView is a single ad with its author's contact details.
type ExtendedAdView struct {
	PK              uint    `json:"pk"`
	AuthorFirstName string  `json:"authorFirstName"`
	AuthorLastName  string  `json:"authorLastName"`
	Description     string  `json:"description"`
	Email           string  `json:"email"`
	Image           *string `json:"image"`
	Phone           string  `json:"phone"`
	Price           int     `json:"price"`
	Title           string  `json:"title"`
}

// CommentView is a comment with its author summary.
type CommentView struct {
	Author          uint    `json:"author"`
	AuthorImage     *string `json:"authorImage"`
	AuthorFirstName string  `json:"authorFirstName"`
	CreatedAt       int64   `json:"createdAt"`
	PK              uint    `json:"pk"`
	Text            string  `json:"text"`
}

// CommentsView wraps a list of comments with its size.
type CommentsView struct {
	Count   int           `json:"count"`
	Results []CommentView `json:"results"`
}

// UserView is the authenticated user's profile.
type UserView struct {
	ID        uint    `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Role      Role    `json:"role"`
	Image     *string `json:"image"`
}

// UpdateUserView echoes the editable profile fields.
type UpdateUserView struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// BusinessMetric summarizes user counts for administrators.
type BusinessMetric struct {
	TotalUsers   int64 `json:"totalUsers"`
	ActiveUsers  int64 `json:"activeUsers"`
	DeletedUsers int64 `json:"deletedUsers"`
}

// ImageURL prefixes a stored relative path with baseURL. Empty paths map to nil.
func ImageURL(baseURL, path string) *string {
	if path == "" {
		return nil
	}
	url := baseURL + path
	return &url
}

// NewAdView renders an ad for listings.
func NewAdView(ad *Ad, baseURL string) AdView {
	return AdView{
		Author: ad.UserID,
		Image:  ImageURL(baseURL, ad.Image),
		PK:     ad.ID,
		Price:  ad.Price,
		Title:  ad.Title,
	}
}

// NewAdsView renders a list of ads.
func NewAdsView(ads []Ad, baseURL string) AdsView {
	results := make([]AdView, 0, len(ads))
	for i := range ads {
		results = append(results, NewAdView(&ads[i], baseURL))
	}
	return AdsView{Count: len(results), Results: results}
}

// NewExtendedAdView renders an ad together with its author.
func NewExtendedAdView(ad *Ad, author *User, baseURL string) ExtendedAdView {
	view := ExtendedAdView{
		PK:          ad.ID,
		Description: ad.Description,
		Image:       ImageURL(baseURL, ad.Image),
		Price:       ad.Price,
		Title:       ad.Title,
	}
	if author == nil || author.IsDeleted() {
		view.AuthorFirstName = DeletedUserName
		return view
	}
	view.AuthorFirstName = author.FirstName
	view.AuthorLastName = author.LastName
	view.Email = author.Username
	view.Phone = author.Phone
	return view
}

// NewCommentView renders a comment. A missing or soft-deleted author shows as DeletedUserName.
func NewCommentView(comment *Comment, author *User, baseURL string) CommentView {
	view := CommentView{
		Author:    comment.UserID,
		CreatedAt: comment.CreatedAt,
		PK:        comment.ID,
		Text:      comment.Text,
	}
	if author == nil || author.IsDeleted() {
		view.AuthorFirstName = DeletedUserName
		return view
	}
	view.AuthorFirstName = author.FirstName
	view.AuthorImage = ImageURL(baseURL, author.Image)
	return view
}

// NewUserView renders a profile with its role.
func NewUserView(user *User, role Role, baseURL string) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      role,
		Image:     ImageURL(baseURL, user.Image),
	}
}
