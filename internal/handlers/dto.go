package handlers

import (
	"time"

	"diario/internal/models"
)

// ProfileDTO is the profile as the client sees it, with string timestamps
type ProfileDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"nome"`
	Email                string `json:"email"`
	WaterGoal            int    `json:"water_goal"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DarkModeEnabled      bool   `json:"dark_mode_enabled"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func ToProfileDTO(p models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:                   p.ID,
		Name:                 p.Name,
		Email:                p.Email,
		WaterGoal:            p.WaterGoal,
		NotificationsEnabled: p.NotificationsEnabled,
		DarkModeEnabled:      p.DarkModeEnabled,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}
}

// SessionDTO is returned by sign-up and login.
type SessionDTO struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	Profile   *ProfileDTO `json:"profile"`
}

func toSessionDTO(token string, s models.Session, p *models.Profile) SessionDTO {
	dto := SessionDTO{Token: token, ExpiresAt: s.ExpiresAt.Format(time.RFC3339)}
	if p != nil {
		pd := ToProfileDTO(*p)
		dto.Profile = &pd
	}
	return dto
}
