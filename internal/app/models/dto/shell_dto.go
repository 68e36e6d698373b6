package dto

import "github.com/yigit/lecturealert/internal/app/shell"

// NavigationResponse is the sidebar for the signed-in user
type NavigationResponse struct {
	User  *UserResponse   `json:"user"`
	Items []shell.NavItem `json:"items"`
}

// PageResponse describes the page the shell renders
type PageResponse struct {
	Path        string              `json:"path"`
	Title       string              `json:"title"`
	Placeholder bool                `json:"placeholder"`
	Message     string              `json:"message,omitempty"`
	Navigation  *NavigationResponse `json:"navigation,omitempty"`
}
