package api

import (
	"github.com/tonypoem-foundation/site-backend/auth"
	"github.com/tonypoem-foundation/site-backend/counter"
	"github.com/tonypoem-foundation/site-backend/listing"
	"github.com/tonypoem-foundation/site-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	pageHandler       pageHandler
	blogHandler       blogHandler
	programHandler    programHandler
	submissionHandler submissionHandler
	adminHandler      adminHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error    string `json:"error" example:"Internal Server Error"`
	Status   string `json:"status" example:"error"`
	Field    string `json:"field,omitempty" example:"title"`
	Details  string `json:"details,omitempty" example:"Additional error details"`
	Cause    string `json:"cause,omitempty" example:"Underlying error cause"`
	Redirect string `json:"redirect,omitempty" example:"/blog"`
}

// ListingResponse is one page of a filtered listing with its controls.
type ListingResponse[T any] struct {
	Items          []T                `json:"items"`
	Page           int                `json:"page"`
	TotalPages     int                `json:"totalPages"`
	PageSize       int                `json:"pageSize"`
	Total          int                `json:"total"`
	Topics         []string           `json:"topics"`
	Years          []string           `json:"years"`
	SelectedTopic  string             `json:"selectedTopic"`
	SelectedYear   string             `json:"selectedYear"`
	Search         string             `json:"search,omitempty"`
	HasPrev        bool               `json:"hasPrev"`
	HasNext        bool               `json:"hasNext"`
	ShowPagination bool               `json:"showPagination"`
	Empty          bool               `json:"empty"`
	EmptyMessage   string             `json:"emptyMessage,omitempty"`
	Status         listing.LoadStatus `json:"status"`
}

func newListingResponse[T any](v listing.View, convert func(models.Record) T) ListingResponse[T] {
	items := make([]T, 0, len(v.Items))
	for _, rec := range v.Items {
		items = append(items, convert(rec))
	}
	return ListingResponse[T]{
		Items:          items,
		Page:           v.Page,
		TotalPages:     v.TotalPages,
		PageSize:       v.PageSize,
		Total:          v.Total,
		Topics:         v.Topics,
		Years:          v.Years,
		SelectedTopic:  v.SelectedTopic,
		SelectedYear:   v.SelectedYear,
		Search:         v.Search,
		HasPrev:        v.HasPrev,
		HasNext:        v.HasNext,
		ShowPagination: v.ShowPagination,
		Empty:          v.Empty,
		EmptyMessage:   v.EmptyMessage,
		Status:         v.Status,
	}
}

func identity(rec models.Record) models.Record { return rec }

// excerptLength matches the blog cards.
const excerptLength = 200

// BlogCard is a blog post as shown in listings.
type BlogCard struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Topic    string `json:"topic"`
	Date     string `json:"date"`
	Year     string `json:"year"`
	Excerpt  string `json:"excerpt"`
	ImageURL string `json:"imageUrl,omitempty"`
	Slug     string `json:"slug,omitempty"`
}

func newBlogCard(rec models.Record) BlogCard {
	return BlogCard{
		ID:       rec.ID,
		Title:    rec.DisplayTitle(),
		Topic:    rec.TopicOrDefault(),
		Date:     rec.FormattedDate(),
		Year:     rec.YearOrDefault(),
		Excerpt:  rec.Excerpt(excerptLength),
		ImageURL: deref(rec.ImageURL),
		Slug:     deref(rec.Slug),
	}
}

// BlogPostResponse is the detail page of one post.
type BlogPostResponse struct {
	Post          models.Record `json:"post"`
	Title         string        `json:"title"`
	Topic         string        `json:"topic"`
	FormattedDate string        `json:"formattedDate"`
	Related       []BlogCard    `json:"related"`
}

// ProgramCard is a program as shown in listings.
type ProgramCard struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Images      []string `json:"images,omitempty"`
	Slug        string   `json:"slug,omitempty"`
}

func newProgramCard(rec models.Record) ProgramCard {
	return ProgramCard{
		ID:          rec.ID,
		Name:        rec.DisplayTitle(),
		Category:    rec.TopicOrDefault(),
		Description: deref(rec.Description),
		ImageURL:    deref(rec.ImageURL),
		Images:      rec.Images,
		Slug:        deref(rec.Slug),
	}
}

// ProfileCard is a leadership member or testimonial author.
type ProfileCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	Bio        string `json:"bio,omitempty"`
	Review     string `json:"review,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

func newProfileCard(rec models.Record) ProfileCard {
	return ProfileCard{
		ID:         rec.ID,
		Name:       rec.DisplayTitle(),
		Role:       deref(rec.Role),
		Department: deref(rec.Department),
		Bio:        deref(rec.Bio),
		Review:     deref(rec.Review),
		ImageURL:   deref(rec.ImageURL),
	}
}

// HomeResponse feeds the landing page. A section that failed to load is
// empty and its message is listed in Errors.
type HomeResponse struct {
	Stats        []counter.Target  `json:"stats"`
	LatestPosts  []BlogCard        `json:"latestPosts"`
	Testimonials []ProfileCard     `json:"testimonials"`
	Errors       map[string]string `json:"errors,omitempty"`
}

type AboutResponse struct {
	Stats      []counter.Target `json:"stats"`
	Leadership []ProfileCard    `json:"leadership"`
}

// FormResponse describes a public form.
type FormResponse struct {
	Collection string   `json:"collection"`
	Fields     []string `json:"fields"`
	Required   []string `json:"required"`
	Files      []string `json:"files,omitempty"`
}

// CreatedResponse is returned by every create endpoint.
type CreatedResponse struct {
	Status   string        `json:"status"`
	ID       string        `json:"id"`
	Record   models.Record `json:"record"`
	Message  string        `json:"message"`
	Redirect string        `json:"redirect,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expiresAt"`
	Identity  auth.Identity `json:"identity"`
	Redirect  string        `json:"redirect"`
}

// CollectionListing is one collection on the admin dashboard.
type CollectionListing struct {
	Name    string                         `json:"name"`
	Entity  string                         `json:"entity"`
	Listing ListingResponse[models.Record] `json:"listing"`
	Error   string                         `json:"error,omitempty"`
}

type ManageContentResponse struct {
	Admin       auth.Identity       `json:"admin"`
	Collections []CollectionListing `json:"collections"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
