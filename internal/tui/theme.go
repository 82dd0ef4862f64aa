package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// Theme defines the color palette for the console. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Status colors.
	StatusPending    lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusResolved   lipgloss.Color

	// Message bubbles.
	ClientMessage  lipgloss.Color
	SupportMessage lipgloss.Color
	SystemMessage  lipgloss.Color

	// Delivery markers.
	DeliveryPending lipgloss.Color
	DeliveryFailed  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),

	SelectedBackground: lipgloss.Color("237"),
	SelectedForeground: lipgloss.Color("255"),

	StatusPending:    lipgloss.Color("214"),
	StatusInProgress: lipgloss.Color("39"),
	StatusResolved:   lipgloss.Color("40"),

	ClientMessage:  lipgloss.Color("75"),
	SupportMessage: lipgloss.Color("252"),
	SystemMessage:  lipgloss.Color("243"),

	DeliveryPending: lipgloss.Color("243"),
	DeliveryFailed:  lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("243"),
	ErrorText:        lipgloss.Color("203"),
}

// statusColor maps a ticket status to its theme color.
func (t Theme) statusColor(status domain.TicketStatus) lipgloss.Color {
	switch status {
	case domain.TicketStatusInProgress:
		return t.StatusInProgress
	case domain.TicketStatusResolved:
		return t.StatusResolved
	default:
		return t.StatusPending
	}
}
