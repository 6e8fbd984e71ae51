package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/smartcity/aqi/internal/domain"
)

var (
	PrimaryColor = lipgloss.Color("#008080")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// categoryColors follows the usual AQI colour scale
var categoryColors = map[string]lipgloss.Color{
	"Good":                           "#00E400",
	"Moderate":                       "#FFFF00",
	"Unhealthy for Sensitive Groups": "#FF7E00",
	"Unhealthy":                      "#FF0000",
	"Very Unhealthy":                 "#8F3F97",
	"Hazardous":                      "#7E0023",
}

func categoryStyle(label string) lipgloss.Style {
	color, ok := categoryColors[label]
	if !ok {
		color = SubtleColor
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderPrediction(resp domain.PredictionResponse) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Air Quality Index Prediction"))
	b.WriteString("\n")

	msg := fmt.Sprintf("🌬️ %s", resp.Message)
	b.WriteString(BoxStyle.BorderForeground(categoryColors[resp.Classification.Label]).Render(
		categoryStyle(resp.Classification.Label).Render(msg)))
	b.WriteString("\n\n")

	if resp.City != "" && resp.CityCode != nil {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("City: %s (code %d)", resp.City, *resp.CityCode)))
		b.WriteString("\n")
	}

	b.WriteString(TitleStyle.Render("Input Data:"))
	b.WriteString("\n")
	t := newTable("Feature", "Value")
	for _, row := range resp.Inputs {
		t.Row(row.Feature, formatFloat(row.Value))
	}
	b.WriteString(t.Render())
	return b.String()
}

func renderFeatures(catalog domain.FeatureCatalog) string {
	t := newTable("#", "Feature", "Description")
	i := 0
	if catalog.CityAware {
		t.Row("0", domain.CityFeatureName, "Encoded city (see `aqictl cities`)")
		i = 1
	}
	for _, f := range catalog.Features {
		t.Row(strconv.Itoa(i), f.Name, f.Label)
		i++
	}
	return TitleStyle.Render(fmt.Sprintf("Model inputs (%s variant)", catalog.Variant)) + "\n" + t.Render()
}

func renderCities(cities domain.CityLookup) string {
	t := newTable("Code", "City")
	for _, name := range cities.Names() {
		t.Row(strconv.Itoa(cities[name]), name)
	}
	return t.Render()
}

func renderBands(bands domain.BandTable) string {
	t := newTable("Range", "Category", "")
	for _, band := range bands {
		t.Row(fmt.Sprintf("%d-%d", band.Lower, band.Upper), categoryStyle(band.Label).Render(band.Label), band.Indicator)
	}
	return t.Render()
}
