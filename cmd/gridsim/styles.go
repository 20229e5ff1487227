package main

import "github.com/charmbracelet/lipgloss"

var (
	legendStyle    = lipgloss.NewStyle().Bold(true)
	loadedStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"})
	estimatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Faint(true)
)
