package cliui

import "charm.land/lipgloss/v2"

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	// StepStyle dims the elapsed time after a step.
	StepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// KeyStyle and ValueStyle render "label value" rows such as key
	// fingerprints and build information.
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)
