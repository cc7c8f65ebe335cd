package model

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

const (
	ChannelTypeText  = "text"
	ChannelTypeVoice = "voice"

	// DefaultChannelName is the channel every new server starts with.
	DefaultChannelName = "general"

	// DefaultServerIcon is used when a server is created without an icon.
	DefaultServerIcon = "🌟"
)

// Built-in role ids present on every server.
const (
	RoleOwnerID   = "role_owner"
	RoleDefaultID = "role_default"
)

// Role is a named permission set on a server.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

// Channel belongs to exactly one server.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Server is a community with channels and members. OwnerID never changes after creation.
type Server struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	OwnerID   string    `json:"ownerId"`
	BannerURL *string   `json:"bannerUrl"`
	Roles     []Role    `json:"roles"`
	Channels  []Channel `json:"channels"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultRoles returns the Owner and Member roles a new server is created with.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:    RoleOwnerID,
			Name:  "Owner",
			Color: "text-yellow-400",
			Permissions: []string{
				"manageServer", "manageChannels", "manageRoles",
				"kickMembers", "banMembers", "manageServerSettings",
			},
		},
		{ID: RoleDefaultID, Name: "Member", Color: "text-gray-300", Permissions: []string{}},
	}
}

// HasMember reports whether userID belongs to the server.
func (s *Server) HasMember(userID string) bool {
	return slices.Contains(s.Members, userID)
}

// HasChannel reports whether channelID is one of the server's channels.
func (s *Server) HasChannel(channelID string) bool {
	return slices.ContainsFunc(s.Channels, func(c Channel) bool { return c.ID == channelID })
}

// FindServer returns the index of the server with id, or -1.
func FindServer(servers []Server, id string) int {
	return slices.IndexFunc(servers, func(s Server) bool { return s.ID == id })
}

// FindChannelServer returns the index of the server owning channelID, or -1.
func FindChannelServer(servers []Server, channelID string) int {
	return slices.IndexFunc(servers, func(s Server) bool { return s.HasChannel(channelID) })
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ChannelSlug lowercases name and replaces every whitespace run with a single dash.
func ChannelSlug(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
