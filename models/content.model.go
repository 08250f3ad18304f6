package models

import "time"

// Singleton ids for the content pages
const (
	AboutUsID   = "about_us"
	ContactUsID = "contact_us"
)

// TeamMember is shown on the about page
type TeamMember struct {
	Name     string `bson:"name" json:"name"`
	Position string `bson:"position" json:"position"`
	Bio      string `bson:"bio" json:"bio"`
}

// AboutUs is the about page content
type AboutUs struct {
	ID          string       `bson:"_id" json:"id"`
	Title       string       `bson:"title" json:"title"`
	Content     string       `bson:"content" json:"content"`
	Mission     string       `bson:"mission" json:"mission"`
	Vision      string       `bson:"vision" json:"vision"`
	TeamMembers []TeamMember `bson:"team_members" json:"team_members"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// SocialLink is a social media profile listed on the contact page
type SocialLink struct {
	Platform string `bson:"platform" json:"platform"`
	URL      string `bson:"url" json:"url"`
}

// ContactUs is the contact page content
type ContactUs struct {
	ID          string       `bson:"_id" json:"id"`
	Title       string       `bson:"title" json:"title"`
	Content     string       `bson:"content" json:"content"`
	Email       string       `bson:"email" json:"email"`
	Phone       string       `bson:"phone" json:"phone"`
	Address     string       `bson:"address" json:"address"`
	MapURL      string       `bson:"map_url" json:"map_url"`
	SocialMedia []SocialLink `bson:"social_media" json:"social_media"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// Contact message statuses
const (
	MessageStatusUnread = "unread"
	MessageStatusRead   = "read"
)

// ContactMessage is submitted through the public contact form
type ContactMessage struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Subject   string    `bson:"subject" json:"subject"`
	Message   string    `bson:"message" json:"message"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
